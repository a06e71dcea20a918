package computer

import (
	"github.com/mwantia/craftos/log"
	"github.com/mwantia/craftos/timer"
)

type ComputerOptions struct {
	Label  string      // Initial computer label.
	Clock  timer.Clock // Source of time for timers and the OS API.
	Logger *log.Logger // Logger for lifecycle transitions.
}

type ComputerOption func(*ComputerOptions) error

func newDefaultComputerOptions() *ComputerOptions {
	return &ComputerOptions{
		Clock:  timer.Real(),
		Logger: log.Nop(),
	}
}

func WithLabel(label string) ComputerOption {
	return func(opts *ComputerOptions) error {
		opts.Label = label
		return nil
	}
}

func WithClock(clock timer.Clock) ComputerOption {
	return func(opts *ComputerOptions) error {
		if clock != nil {
			opts.Clock = clock
		}
		return nil
	}
}

func WithLogger(logger *log.Logger) ComputerOption {
	return func(opts *ComputerOptions) error {
		if logger != nil {
			opts.Logger = logger
		}
		return nil
	}
}
