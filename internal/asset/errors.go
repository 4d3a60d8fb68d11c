package asset

import (
	"errors"
	"fmt"
)

var ErrDuplicateLoader = errors.New("loader already registered")

// ConfigurationError reports a manifest or registration mistake. It is
// returned before any container starts loading.
type ConfigurationError struct {
	Config string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %q: %s", e.Config, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ParseError reports a payload that could not be parsed by a format loader.
type ParseError struct {
	Category string
	Source   string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s for %s: %s", e.Source, e.Category, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
