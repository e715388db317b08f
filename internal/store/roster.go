package store

import (
	"sync"

	"github.com/aureuma/skillregistry/internal/model"
)

// RosterStore is the list of identities registered as workers. It is
// persisted with the snapshot but not consulted by role checks, which use
// the role in the caller's bearer token. The migration path seeds this store
// empty on every prior-schema restore.
type RosterStore struct {
	mu      sync.Mutex
	workers map[model.Identity]struct{}
}

func NewRosterStore() *RosterStore {
	return &RosterStore{workers: make(map[model.Identity]struct{})}
}

func (r *RosterStore) Add(id model.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[id] = struct{}{}
}

func (r *RosterStore) Remove(id model.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workers, id)
}

func (r *RosterStore) Contains(id model.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.workers[id]
	return ok
}

func (r *RosterStore) All() []model.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Identity, 0, len(r.workers))
	for id := range r.workers {
		out = append(out, id)
	}
	return out
}

// LoadAll replaces the entire roster, used only by snapshot restore.
func (r *RosterStore) LoadAll(ids []model.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers = make(map[model.Identity]struct{}, len(ids))
	for _, id := range ids {
		r.workers[id] = struct{}{}
	}
}
