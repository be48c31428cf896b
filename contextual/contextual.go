// Package contextual implements the hierarchical context store carried by
// every event-sending handle. A Store owns an explicit context and a list
// of removed keys, and may point at a parent Store whose effective context
// it overrides.
package contextual

import (
	"maps"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/eventsender/value"
)

// Contextual is the context contract exposed by any context-scoped handle.
type Contextual interface {
	// Context returns the effective context: the parent's effective
	// context overlaid with this handle's own values, minus every key
	// removed on this handle.
	Context() value.Struct
	// SetContext replaces this handle's own context wholesale.
	SetContext(ctx value.Struct)
	// UpdateContext upserts a single key in this handle's own context.
	UpdateContext(key string, v value.Value)
	// RemoveContext hides key from this handle's effective context.
	RemoveContext(key string)
	// ClearContext empties this handle's own context. Removed keys stay
	// removed.
	ClearContext()
}

// Store is the Contextual implementation. Its own state is guarded by a
// lock, so reads may race with writes on the same Store; ordering of
// mutations across goroutines is up to the caller.
//
// The parent reference is non-owning. A child never mutates its parent and
// the parent has no knowledge of its children.
type Store struct {
	parent  *Store
	context map[string]value.Value
	removed []string
	mu      sync.RWMutex
}

// NewStore creates a Store with the given parent, which may be nil.
func NewStore(parent *Store) *Store {
	return &Store{
		parent:  parent,
		context: make(map[string]value.Value),
	}
}

// Parent returns the parent Store, or nil for a root.
func (s *Store) Parent() *Store {
	return s.parent
}

// Context computes the effective context on every call; nothing is cached.
//
// Removed keys are applied last, so a key removed on this Store stays
// hidden even if it is later re-added with UpdateContext or SetContext.
// A Null value in the own context shadows the parent's key.
func (s *Store) Context() value.Struct {
	merged := make(map[string]value.Value)
	if s.parent != nil {
		merged = s.parent.Context().AsMap()
	}

	s.mu.RLock()
	maps.Copy(merged, s.context)
	for _, key := range s.removed {
		delete(merged, key)
	}
	s.mu.RUnlock()

	return value.NewStruct(merged)
}

func (s *Store) SetContext(ctx value.Struct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = ctx.AsMap()
}

func (s *Store) UpdateContext(key string, v value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context[key] = v
}

func (s *Store) RemoveContext(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.removed, key) {
		s.removed = append(s.removed, key)
	}
}

func (s *Store) ClearContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.context)
}

// Removed returns the keys removed on this Store, in removal order.
func (s *Store) Removed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.removed)
}

// Child creates a Store whose parent is s and whose own context is ctx.
// Mutations on the child never affect s or its other children.
func (s *Store) Child(ctx value.Struct) *Store {
	child := NewStore(s)
	child.SetContext(ctx)
	return child
}
