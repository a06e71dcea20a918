package timer

import "github.com/mwantia/craftos/log"

type SchedulerOptions struct {
	Clock  Clock
	Logger *log.Logger
}

type SchedulerOption func(*SchedulerOptions) error

func newDefaultSchedulerOptions() *SchedulerOptions {
	return &SchedulerOptions{
		Clock:  Real(),
		Logger: log.Nop(),
	}
}

func WithClock(clock Clock) SchedulerOption {
	return func(opts *SchedulerOptions) error {
		if clock != nil {
			opts.Clock = clock
		}
		return nil
	}
}

func WithLogger(logger *log.Logger) SchedulerOption {
	return func(opts *SchedulerOptions) error {
		if logger != nil {
			opts.Logger = logger
		}
		return nil
	}
}
