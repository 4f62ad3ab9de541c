package effects

import (
	"weak"

	"github.com/google/uuid"
)

// registry maps effects to their live subscription without keeping the
// effects alive: subscriptions live in an arena keyed by registration id,
// and effects are only referenced through weak pointers in the index.
//
// Not safe for concurrent use; the manager guards it.
type registry struct {
	index map[weak.Pointer[Effect]]uuid.UUID
	arena map[uuid.UUID]*subscription
}

func newRegistry() *registry {
	return &registry{
		index: make(map[weak.Pointer[Effect]]uuid.UUID),
		arena: make(map[uuid.UUID]*subscription),
	}
}

func (r *registry) lookup(e *Effect) (*subscription, bool) {
	id, ok := r.index[weak.Make(e)]
	if !ok {
		return nil, false
	}
	s, ok := r.arena[id]
	return s, ok
}

func (r *registry) insert(s *subscription) {
	r.index[s.key] = s.id
	r.arena[s.id] = s
}

// remove drops s and reports whether it was still registered.
func (r *registry) remove(s *subscription) bool {
	if cur, ok := r.arena[s.id]; !ok || cur != s {
		return false
	}
	delete(r.arena, s.id)
	if id, ok := r.index[s.key]; ok && id == s.id {
		delete(r.index, s.key)
	}
	return true
}

// forget drops the index entry of a collected effect. The subscription stays
// in the arena until it ends or is torn down.
func (r *registry) forget(key weak.Pointer[Effect], id uuid.UUID) {
	if cur, ok := r.index[key]; ok && cur == id {
		delete(r.index, key)
	}
}

// drain empties the registry and returns what it held.
func (r *registry) drain() []*subscription {
	subs := make([]*subscription, 0, len(r.arena))
	for _, s := range r.arena {
		subs = append(subs, s)
	}
	clear(r.arena)
	clear(r.index)
	return subs
}

func (r *registry) len() int { return len(r.arena) }

func (r *registry) each(fn func(*subscription)) {
	for _, s := range r.arena {
		fn(s)
	}
}
