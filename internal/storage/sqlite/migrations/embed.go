package migrations

import "embed"

// FS contains the embedded SQLite migrations for turn history.
//
//go:embed *.sql
var FS embed.FS
