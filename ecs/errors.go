package ecs

import (
	"errors"
	"fmt"
)

var (
	// ErrBadHandle is returned when a handle does not resolve to a live record.
	ErrBadHandle = errors.New("handle does not resolve to a live record")
	// ErrPoolExhausted is returned when a pool or table cannot take another slot.
	ErrPoolExhausted = errors.New("pool exhausted")
	// ErrUseAfterFree is returned when a freed slot is dereferenced.
	ErrUseAfterFree = errors.New("use after free")
	// ErrDuplicateAttachment is returned when an entity already holds an engine component of that kind.
	ErrDuplicateAttachment = errors.New("engine component already attached")
	// ErrTagNotFound is returned when no active entity carries the requested tag.
	ErrTagNotFound = errors.New("no active entity with tag")
	// ErrComponentNotFound is returned when an entity has no component of the requested type.
	ErrComponentNotFound = errors.New("component not found")
)

// Error records the operation and handle that failed.
type Error struct {
	Op     string
	Handle uint64
	Err    error
}

func (e *Error) Error() string {
	if e.Handle == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %d: %v", e.Op, e.Handle, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, handle uint64, err error) error {
	return &Error{Op: op, Handle: handle, Err: err}
}
