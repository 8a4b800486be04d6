package actor

import (
	"fmt"
	"sync"

	"tasklet/internal/api"
)

// Directory maps task identifiers to actor instances. The same taskID always
// resolves to the same actor for the lifetime of the process, which is what
// makes the single-writer invariant hold: every mutation for a task funnels
// through one instance.
type Directory struct {
	agent  api.Completer
	stores StoreProvider

	mu     sync.Mutex
	actors map[string]*Actor
}

// NewDirectory creates a directory that backs new actors with the given
// agent client and storage provider.
func NewDirectory(agent api.Completer, stores StoreProvider) *Directory {
	return &Directory{
		agent:  agent,
		stores: stores,
		actors: make(map[string]*Actor),
	}
}

// Resolve returns the actor owning taskID, creating it on first resolution.
func (d *Directory) Resolve(taskID string) (*Actor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if a, ok := d.actors[taskID]; ok {
		return a, nil
	}

	store, err := d.stores.OpenStore(taskID)
	if err != nil {
		return nil, fmt.Errorf("open store for task %s: %w", taskID, err)
	}

	a, err := New(taskID, store, d.agent)
	if err != nil {
		return nil, err
	}
	d.actors[taskID] = a
	return a, nil
}
