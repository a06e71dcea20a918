package mount

import (
	"fmt"
	"slices"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/log"
)

// DefaultCapacity is the emulated size of mounts without a natural capacity.
const DefaultCapacity int64 = 1000000

type MountOptions struct {
	Location []string    // Where the mount is grafted; empty for the root.
	Name     string      // Drive name; backends supply their own default.
	ReadOnly bool        // Whether every mutation is rejected.
	Capacity int64       // Emulated capacity in bytes; 0 means natural or default.
	Logger   *log.Logger // Logger used for debug output.
}

type MountOption func(*MountOptions) error

func newDefaultMountOptions() *MountOptions {
	return &MountOptions{
		Location: []string{},
		ReadOnly: false,
		Capacity: 0,
		Logger:   log.Nop(),
	}
}

// ApplyOptions evaluates opts against the default options.
func ApplyOptions(opts ...MountOption) (*MountOptions, error) {
	options := newDefaultMountOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	return options, nil
}

// WithLocation grafts the mount at the given virtual path.
func WithLocation(path string) MountOption {
	return func(mo *MountOptions) error {
		mo.Location = data.Split(path)
		return nil
	}
}

// WithLocationComponents grafts the mount at pre-split components.
func WithLocationComponents(components []string) MountOption {
	return func(mo *MountOptions) error {
		mo.Location = slices.Clone(components)
		return nil
	}
}

func WithName(name string) MountOption {
	return func(mo *MountOptions) error {
		mo.Name = name
		return nil
	}
}

func WithReadOnly(readOnly bool) MountOption {
	return func(mo *MountOptions) error {
		mo.ReadOnly = readOnly
		return nil
	}
}

func WithCapacity(capacity int64) MountOption {
	return func(mo *MountOptions) error {
		if capacity < 0 {
			return fmt.Errorf("invalid capacity %d", capacity)
		}
		mo.Capacity = capacity
		return nil
	}
}

func WithLogger(logger *log.Logger) MountOption {
	return func(mo *MountOptions) error {
		if logger != nil {
			mo.Logger = logger
		}
		return nil
	}
}
