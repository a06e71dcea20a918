package computer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mwantia/craftos/data"
	"github.com/mwantia/craftos/mount"
)

// HandleTable tracks the file handles opened by the guest so they can be
// released when the computer stops.
type HandleTable struct {
	mu      sync.Mutex
	next    int
	handles map[int]mount.Handle
}

func NewHandleTable() *HandleTable {
	return &HandleTable{
		handles: make(map[int]mount.Handle),
	}
}

// Add tracks h until it is closed.
func (t *HandleTable) Add(h mount.Handle) int {
	t.mu.Lock()
	t.next++
	id := t.next
	t.handles[id] = h
	t.mu.Unlock()

	mount.OnClose(h, func() {
		t.mu.Lock()
		defer t.mu.Unlock()

		delete(t.handles, id)
	})
	return id
}

func (t *HandleTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.handles)
}

// CloseAll closes every handle still open.
func (t *HandleTable) CloseAll() error {
	t.mu.Lock()
	handles := t.handles
	t.handles = make(map[int]mount.Handle)
	t.mu.Unlock()

	errs := &data.Errors{}
	for id, h := range handles {
		if err := h.Close(); err != nil && !errors.Is(err, data.ErrClosed) {
			errs.Add(fmt.Errorf("failed to close handle %d: %w", id, err))
		}
	}
	return errs.Errors()
}
