package data

import (
	"errors"
	"fmt"
	"sync"
)

// Standard errors that Mount implementations and the computer APIs should use.
// The messages are shown to the guest unchanged, so keep them short.
var (
	// File operation errors
	ErrNotExist     = errors.New("No such file")
	ErrExist        = errors.New("File exists")
	ErrIsDirectory  = errors.New("Is a directory")
	ErrNotDirectory = errors.New("Not a directory")
	ErrPermission   = errors.New("Permission denied")
	ErrNoSpace      = errors.New("Out of space")
	ErrIntoItself   = errors.New("Can't move a directory inside itself")

	// Mount table errors
	ErrRootMount  = errors.New("Cannot unmount root mount")
	ErrNotMounted = errors.New("Not mounted")

	// Argument errors
	ErrInvalid       = errors.New("invalid argument")
	ErrInvalidMode   = ArgumentError("invalid mode")
	ErrInvalidWhence = ArgumentError("invalid whence")
	ErrInvalidValue  = ArgumentError("expected number or string")
	ErrOutOfRange    = ArgumentError("Number out of range")

	// I/O errors
	ErrClosed = errors.New("attempt to use a closed file")
)

// ArgumentError is an invalid argument passed by the guest. It matches ErrInvalid.
type ArgumentError string

func (e ArgumentError) Error() string {
	return string(e)
}

func (e ArgumentError) Is(target error) bool {
	return target == ErrInvalid
}

// PathError records the virtual path an operation failed on.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("/%s: %s", e.Path, e.Err.Error())
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// WrapPath decorates err with op and path unless it is nil or already a PathError.
func WrapPath(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}

	return &PathError{Op: op, Path: path, Err: err}
}

// Message returns the guest-visible text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}

	for _, sentinel := range []error{
		ErrNotExist, ErrExist, ErrIsDirectory, ErrNotDirectory, ErrPermission,
		ErrNoSpace, ErrIntoItself, ErrRootMount, ErrNotMounted, ErrClosed,
	} {
		if errors.Is(err, sentinel) {
			var pe *PathError
			if errors.As(err, &pe) && pe.Path != "" {
				return fmt.Sprintf("/%s: %s", pe.Path, sentinel.Error())
			}
			return sentinel.Error()
		}
	}

	return err.Error()
}

// Errors collects multiple errors, e.g. while tearing down resources.
type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = make([]error, 0)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
