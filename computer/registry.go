package computer

import (
	"sort"
	"sync"

	"github.com/mwantia/craftos/event"
)

// Registry keeps the live computers of a process. Computers are added when
// they are created and must be removed explicitly when they are torn down.
type Registry struct {
	mu        sync.RWMutex
	computers map[int]*Computer
}

func NewRegistry() *Registry {
	return &Registry{
		computers: make(map[int]*Computer),
	}
}

func (r *Registry) Register(c *Computer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.computers[c.ID()]; exists {
		return ErrAlreadyExists
	}
	r.computers[c.ID()] = c
	return nil
}

func (r *Registry) Unregister(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.computers[id]; !exists {
		return ErrNotRegistered
	}
	delete(r.computers, id)
	return nil
}

func (r *Registry) Lookup(id int) (*Computer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.computers[id]
	return c, ok
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int, 0, len(r.computers))
	for id := range r.computers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// PostToDisplay delivers an input event to the computer owning the display
// with the given id. It reports whether a computer accepted the event.
func (r *Registry) PostToDisplay(displayID string, e event.Event) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.computers {
		if c.Display() != nil && c.Display().ID() == displayID {
			return c.Push(e)
		}
	}
	return false
}
