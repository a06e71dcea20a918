package computer

import (
	"errors"
	"fmt"

	"github.com/mwantia/craftos/data"
)

var (
	ErrRunning       = errors.New("computer is already running")
	ErrNoBoot        = errors.New("no boot program configured")
	ErrAlreadyExists = errors.New("computer already registered")
	ErrNotRegistered = errors.New("computer not registered")
)

// Categories of a BootError.
const (
	CategoryGuest = "guest" // the boot program returned an error
	CategoryPanic = "panic" // the boot program panicked
	CategoryBoot  = "boot"  // the boot program could not be started
)

// BootError is an uncaught failure of the boot program. It halts the
// computer until it is shut down or rebooted.
type BootError struct {
	Category string
	Err      error
}

func (e *BootError) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, data.Message(e.Err))
}

func (e *BootError) Unwrap() error {
	return e.Err
}
