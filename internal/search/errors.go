package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotInitialized indicates a query was issued before Initialize completed.
var ErrNotInitialized = errors.New("search: index manager not initialized")

// UnsupportedModuleError reports that the SQL engine lacks a virtual-table
// module. It is the typed capability-cascade signal: Initialize converts it
// into a fallback attempt and it never reaches callers.
type UnsupportedModuleError struct {
	Module string
	Cause  error
}

func (e *UnsupportedModuleError) Error() string {
	return fmt.Sprintf("search: module %s unsupported: %v", e.Module, e.Cause)
}

func (e *UnsupportedModuleError) Unwrap() error {
	return e.Cause
}

// classifyProvisionError is the only place that inspects driver error text.
// SQLite reports a missing virtual-table module as "no such module"; that
// class becomes the typed cascade signal, everything else passes through
// untouched so genuine storage faults keep their cause.
func classifyProvisionError(module string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "no such module") {
		return &UnsupportedModuleError{Module: module, Cause: err}
	}
	return err
}
