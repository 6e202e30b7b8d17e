package uexpr

import (
	"io"
	"runtime"
)

// Config holds compilation options.
type Config struct {
	// Package is the package name of the emitted source file
	// (default: "tags").
	Package string

	// Workers is the number of goroutines decoding and normalizing
	// expressions (default: GOMAXPROCS). Function generation and
	// registration are always serialized so output is deterministic.
	Workers int

	// Debug, when set, receives a dump of every normalized tree in
	// input order (the CLI's -d flag writes it to stderr).
	Debug io.Writer
}

// applyDefaults fills in default values for unset Config fields.
func (c *Config) applyDefaults() {
	if c.Package == "" {
		c.Package = "tags"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
}
