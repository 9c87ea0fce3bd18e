// Package condition resolves condition references attached to permissions
// into handlers and evaluates them against the runtime context.
//
// A handler result is one of:
//
//   - true: no extra restriction is needed
//   - false: the condition does not apply
//   - map[string]any: a query fragment restricting the grant
//
// Any other result is dropped silently, as are references that resolve to
// nothing or to a condition without a handler.
package condition

import (
	"context"
	"errors"

	"github.com/xraph/permit/id"
	"github.com/xraph/permit/permission"
)

var (
	// ErrInvalidCondition is returned when registering a condition without a
	// name or handler.
	ErrInvalidCondition = errors.New("permit: invalid condition")

	// ErrDuplicateCondition is returned when a condition key is already registered.
	ErrDuplicateCondition = errors.New("permit: condition already registered")

	// ErrConditionTimeout is returned when a handler exceeds the configured timeout.
	ErrConditionTimeout = errors.New("permit: condition handler timed out")

	// ErrConditionPanic is returned when a handler panics.
	ErrConditionPanic = errors.New("permit: condition handler panicked")
)

// Handler evaluates a condition.
type Handler func(ctx context.Context, hc HandlerContext) (any, error)

// HandlerContext is the merged context a handler receives: the caller's
// generation options plus a private copy of the permission.
type HandlerContext struct {
	Options    map[string]any
	Permission permission.Permission
}

// Option returns a generation option by key.
func (hc HandlerContext) Option(key string) (any, bool) {
	v, ok := hc.Options[key]
	return v, ok
}

// fork returns a context safe to hand to one concurrent handler.
func (hc HandlerContext) fork() HandlerContext {
	opts := make(map[string]any, len(hc.Options))
	for k, v := range hc.Options {
		opts[k] = v
	}
	return HandlerContext{Options: opts, Permission: hc.Permission.Clone()}
}

// Condition describes a named, registered condition.
type Condition struct {
	ID          id.ConditionID `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name,omitempty"`
	Category    string         `json:"category,omitempty"`
	Plugin      string         `json:"plugin,omitempty"`
	Handler     Handler        `json:"-"`
}

// Key is the reference permissions use: "plugin::<plugin>.<name>" for
// plugin conditions, otherwise the bare name.
func (c *Condition) Key() string {
	if c.Plugin != "" {
		return "plugin::" + c.Plugin + "." + c.Name
	}
	return c.Name
}

// Valid reports whether c can be evaluated.
func (c *Condition) Valid() bool { return c != nil && c.Handler != nil }

// Provider looks conditions up by reference. Get returns nil for unknown
// references.
type Provider interface {
	Get(ref string) *Condition
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ref string) *Condition

// Get implements Provider.
func (f ProviderFunc) Get(ref string) *Condition { return f(ref) }
