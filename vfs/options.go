package vfs

import "github.com/mwantia/craftos/log"

type ManagerOptions struct {
	Logger *log.Logger
}

type ManagerOption func(*ManagerOptions) error

func newDefaultManagerOptions() *ManagerOptions {
	return &ManagerOptions{
		Logger: log.Nop(),
	}
}

func WithLogger(logger *log.Logger) ManagerOption {
	return func(opts *ManagerOptions) error {
		if logger != nil {
			opts.Logger = logger
		}
		return nil
	}
}
