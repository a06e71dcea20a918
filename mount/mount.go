package mount

import (
	"context"

	"github.com/mwantia/craftos/data"
)

// Mount grafts a backing store onto a location of the virtual path tree.
// All operations take an inner path relative to the mount.
type Mount interface {
	// Location returns the ordered path components the mount is grafted at.
	// The root mount has an empty location.
	Location() []string

	// Name returns the drive name reported to the guest (e.g. "hdd" or "rom").
	Name() string

	// ReadOnly returns true if every mutating operation is rejected.
	ReadOnly() bool

	// List returns the lexicographically sorted entry names of a directory.
	// Fails with ErrNotDirectory if path is not a directory.
	List(ctx context.Context, path string) ([]string, error)

	// Stat returns the attributes of path, or nil without an error if it does not exist.
	Stat(ctx context.Context, path string) (*data.Attributes, error)

	// MakeDir creates path and every missing parent directory.
	MakeDir(ctx context.Context, path string) error

	// Move moves the entry at from to to.
	Move(ctx context.Context, from, to string) error

	// Copy copies the entry at from, recursively for directories, to to.
	Copy(ctx context.Context, from, to string) error

	// Delete removes path, recursively for directories.
	Delete(ctx context.Context, path string) error

	// Open opens the file at path. The concrete handle implements
	// ReadableHandle and/or WritableHandle depending on flags.
	Open(ctx context.Context, path string, flags data.OpenFlags) (Handle, error)

	// Read returns the full content of the file at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the content of the file at path, creating it if missing.
	Write(ctx context.Context, path string, content []byte) error

	// Capacity returns the total size of the mount in bytes.
	Capacity(ctx context.Context) (int64, error)

	// FreeSpace returns the remaining size of the mount in bytes.
	FreeSpace(ctx context.Context) (int64, error)

	// Equal reports whether other is backed by the same store as this mount.
	Equal(other Mount) bool
}

// Closer is implemented by mounts holding resources such as database connections.
type Closer interface {
	Close(ctx context.Context) error
}

// Exists is a shorthand for a Stat that only reports presence.
func Exists(ctx context.Context, m Mount, path string) (bool, error) {
	attr, err := m.Stat(ctx, path)
	if err != nil {
		return false, err
	}
	return attr != nil, nil
}
