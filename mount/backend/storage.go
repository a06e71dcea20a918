package backend

import (
	"context"

	"github.com/mwantia/craftos/data"
)

// ObjectStorage stores whole objects addressed by slash separated keys.
// The empty key is the root directory. Callers validate parents and types,
// so implementations only persist what they are told.
type ObjectStorage interface {
	Backend

	// HeadObject returns the attributes of key or data.ErrNotExist.
	HeadObject(ctx context.Context, key string) (*data.Attributes, error)

	// ListObjects returns the names of the direct children of the directory key.
	ListObjects(ctx context.Context, key string) ([]string, error)

	// ReadObject returns the content of the file key.
	ReadObject(ctx context.Context, key string) ([]byte, error)

	// WriteObject creates or replaces the file key.
	WriteObject(ctx context.Context, key string, content []byte) error

	// CreateDirectory creates the directory key. Its parent exists.
	CreateDirectory(ctx context.Context, key string) error

	// DeleteObject removes key and, for directories, everything below it.
	DeleteObject(ctx context.Context, key string) error

	// Usage returns the number of bytes stored.
	Usage(ctx context.Context) (int64, error)
}

// ChildKey joins a directory key and an entry name.
func ChildKey(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// ParentKey returns the directory key containing key.
func ParentKey(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[:i]
		}
	}
	return ""
}
