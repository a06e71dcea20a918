package ephemeral

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount/backend"
	"github.com/tidwall/btree"
)

type entry struct {
	isDir    bool
	content  []byte
	created  int64
	modified int64
}

// EphemeralBackend keeps every object in process memory.
// Its content is lost once the process exits.
type EphemeralBackend struct {
	mu      sync.RWMutex
	entries *btree.Map[string, *entry]
}

func NewEphemeralBackend() *EphemeralBackend {
	return &EphemeralBackend{
		entries: btree.NewMap[string, *entry](0),
	}
}

// Returns the identifier name defined for this backend
func (*EphemeralBackend) Name() string {
	return "tmp"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (*EphemeralBackend) Open(ctx context.Context) error {
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (eb *EphemeralBackend) Close(ctx context.Context) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.entries.Clear()
	return nil
}

func (eb *EphemeralBackend) HeadObject(ctx context.Context, key string) (*data.Attributes, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	e, ok := eb.entries.Get(key)
	if !ok {
		return nil, data.ErrNotExist
	}

	return &data.Attributes{
		Size:     int64(len(e.content)),
		IsDir:    e.isDir,
		Created:  e.created,
		Modified: e.modified,
	}, nil
}

func (eb *EphemeralBackend) ListObjects(ctx context.Context, key string) ([]string, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	return backend.ChildNames(eb.entries, key), nil
}

func (eb *EphemeralBackend) ReadObject(ctx context.Context, key string) ([]byte, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	e, ok := eb.entries.Get(key)
	if !ok {
		return nil, data.ErrNotExist
	}
	return bytes.Clone(e.content), nil
}

func (eb *EphemeralBackend) WriteObject(ctx context.Context, key string, content []byte) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	now := time.Now().UnixMilli()
	e, ok := eb.entries.Get(key)
	if !ok {
		e = &entry{created: now}
		eb.entries.Set(key, e)
	}

	e.content = bytes.Clone(content)
	e.modified = now
	return nil
}

func (eb *EphemeralBackend) CreateDirectory(ctx context.Context, key string) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if _, ok := eb.entries.Get(key); ok {
		return data.ErrExist
	}

	now := time.Now().UnixMilli()
	eb.entries.Set(key, &entry{isDir: true, created: now, modified: now})
	return nil
}

func (eb *EphemeralBackend) DeleteObject(ctx context.Context, key string) error {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	keys := backend.Subtree(eb.entries, key)
	if len(keys) == 0 {
		return data.ErrNotExist
	}

	for _, k := range keys {
		eb.entries.Delete(k)
	}
	return nil
}

func (eb *EphemeralBackend) Usage(ctx context.Context) (int64, error) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	var used int64
	eb.entries.Scan(func(_ string, e *entry) bool {
		used += int64(len(e.content))
		return true
	})
	return used, nil
}
