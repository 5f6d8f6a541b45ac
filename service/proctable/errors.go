package proctable

import "errors"

var (
	// ErrTableFull indicates no free process slot is available.
	ErrTableFull = errors.New("proctable: table full")

	// ErrNotFound indicates the pid is unknown or references a terminated
	// process; terminated processes are unaddressable.
	ErrNotFound = errors.New("proctable: process not found")
)
