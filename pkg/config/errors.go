package config

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDocument is returned when a save or update names a
	// configuration document that does not exist.
	ErrUnknownDocument = errors.New("unknown configuration document")

	// ErrUnknownProvider is returned when an LLM provider lookup misses.
	ErrUnknownProvider = errors.New("unknown LLM provider")
)

// LoadError wraps a failure to load or parse a configuration document.
// Load errors are fatal at startup.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError creates a LoadError for the given file.
func NewLoadError(file string, err error) error {
	return &LoadError{File: file, Err: err}
}
