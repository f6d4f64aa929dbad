// Package random produces seeds for the dice and bot sources.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Resolve returns configured when it is non-zero, and a fresh seed otherwise.
// Zero means "pick one for me" on the command line.
func Resolve(configured int64) (int64, error) {
	if configured != 0 {
		return configured, nil
	}
	return NewSeed()
}

// Derive returns a seed for the n-th independent stream of a game, so each
// bot draws from its own sequence while the whole table stays reproducible.
func Derive(seed int64, n int) int64 {
	// splitmix64 finalizer
	z := uint64(seed) + uint64(n+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}
