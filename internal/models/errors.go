// Package models defines the data structures for the redshift sales loader.
package models

import (
	"errors"
)

// Common errors
var (
	ErrNoRecords   = errors.New("event contains no records")
	ErrEmptyBucket = errors.New("bucket name cannot be empty")
	ErrEmptyKey    = errors.New("object key cannot be empty")
)

// ErrorKind classifies why a load failed.
type ErrorKind string

// Error kinds
const (
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindConnection    ErrorKind = "connection"
	ErrorKindExecution     ErrorKind = "execution"
	ErrorKindInput         ErrorKind = "input"
)

// LoadError is a failure of a single load invocation. Error returns the
// underlying message unchanged so warehouse errors reach the caller verbatim.
type LoadError struct {
	Kind ErrorKind
	Err  error
}

// NewLoadError tags err with kind.
func NewLoadError(kind ErrorKind, err error) *LoadError {
	return &LoadError{Kind: kind, Err: err}
}

// ConfigurationError tags err as a configuration failure.
func ConfigurationError(err error) *LoadError { return NewLoadError(ErrorKindConfiguration, err) }

// ConnectionError tags err as a warehouse connection failure.
func ConnectionError(err error) *LoadError { return NewLoadError(ErrorKindConnection, err) }

// ExecutionError tags err as a failure of the load command or its commit.
func ExecutionError(err error) *LoadError { return NewLoadError(ErrorKindExecution, err) }

// InputError tags err as a malformed notification.
func InputError(err error) *LoadError { return NewLoadError(ErrorKindInput, err) }

func (e *LoadError) Error() string {
	if e.Err == nil {
		return string(e.Kind) + " error"
	}
	return e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first LoadError in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Kind
	}
	return ""
}

// AsLoadError returns the LoadError in err's chain, tagging untyped errors
// with fallback.
func AsLoadError(err error, fallback ErrorKind) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	return NewLoadError(fallback, err)
}
