package condition

import (
	"fmt"
	"sync"

	"github.com/xraph/permit/id"
)

// Compile-time interface check.
var _ Provider = (*Registry)(nil)

// Registry is an in-memory Provider. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]*Condition
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]*Condition)}
}

// Register adds a condition under its Key. A Nil ID is replaced with a
// fresh one.
func (r *Registry) Register(c Condition) error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCondition)
	}
	if c.Handler == nil {
		return fmt.Errorf("%w: %q has no handler", ErrInvalidCondition, c.Name)
	}
	if c.ID.IsNil() {
		c.ID = id.NewConditionID()
	}

	key := c.Key()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateCondition, key)
	}
	r.byKey[key] = &c
	r.order = append(r.order, key)
	return nil
}

// RegisterMany registers conditions in order and stops at the first error.
func (r *Registry) RegisterMany(cs ...Condition) error {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Get implements Provider. The result is a copy.
func (r *Registry) Get(ref string) *Condition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byKey[ref]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

// Has reports whether ref is registered.
func (r *Registry) Has(ref string) bool { return r.Get(ref) != nil }

// Keys returns the registered keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Values returns copies of the registered conditions in registration order.
func (r *Registry) Values() []*Condition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Condition, 0, len(r.order))
	for _, k := range r.order {
		cp := *r.byKey[k]
		out = append(out, &cp)
	}
	return out
}

// Len returns the number of registered conditions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
