package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

// Exitf writes a formatted error message to stderr and exits with code 1.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// ExitCode maps a command error to a process exit status: 0 for nil or a
// -help request, 2 for flag errors, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, ErrUsage):
		return 2
	default:
		return 1
	}
}

// ErrUsage marks errors caused by invalid command-line input.
var ErrUsage = errors.New("usage")
