// Package apperr defines the error kinds surfaced at the command boundary.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrEmptyInput = errors.New("input is empty")
	ErrBadInput   = errors.New("invalid input")
	ErrCancelled  = errors.New("cancelled")
	ErrLocalOnly  = errors.New("only available with a local content directory")
)

// ConfigError lists every configuration problem found in one pass.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// ServiceError is a failed call to an upstream HTTP API.
type ServiceError struct {
	Service string
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
	return fmt.Sprintf("%s: request failed with status %d: %s", e.Service, e.Status, e.Message)
}

// ProcessError is an external program that could not start or exited abnormally.
type ProcessError struct {
	Name     string
	ExitCode int
	Err      error
}

func (e *ProcessError) Error() string {
	if e.ExitCode > 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s exited with status %d: %v", e.Name, e.ExitCode, e.Err)
		}
		return fmt.Sprintf("%s exited with status %d", e.Name, e.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
