// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scheduler/builder/executor, following the
// gpu package's errors.New convention (spec.md §7).
var (
	ErrInvalidArgument  = errors.New("graph: invalid argument")
	ErrCapacityExceeded = errors.New("graph: capacity exceeded")
	ErrCyclicGraph      = errors.New("graph: cyclic dependency")
	ErrUnknownResource  = errors.New("graph: unknown resource")
	ErrNotWriter        = errors.New("graph: pass does not write resource")
	ErrEmptyGraph       = errors.New("graph: graph has no passes")
	ErrAliasInUse       = errors.New("graph: alias name already in use")
	ErrMissingViewport  = errors.New("graph: graphics pass missing viewport or scissor")
)

// Error wraps a sentinel with the offending pass name, the detail every
// render-graph error needs to be actionable (spec.md §7).
type Error struct {
	Pass string
	Err  error
}

func (e *Error) Error() string {
	if e.Pass == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("graph: pass %q: %v", e.Pass, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func passErr(pass string, err error) error {
	return &Error{Pass: pass, Err: err}
}
