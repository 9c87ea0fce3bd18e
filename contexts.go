package permit

import (
	"maps"

	"github.com/xraph/permit/permission"
)

// ValidateContext is the read-only view given to validation handlers.
type ValidateContext struct {
	permission permission.Permission
	options    map[string]any
}

func newValidateContext(p permission.Permission, opts map[string]any) *ValidateContext {
	return &ValidateContext{permission: p.Clone(), options: opts}
}

// Permission returns a copy of the permission under validation.
func (c *ValidateContext) Permission() permission.Permission { return c.permission.Clone() }

// Options returns a copy of the generation options.
func (c *ValidateContext) Options() map[string]any { return maps.Clone(c.options) }

// EvaluateContext is given to format and before-evaluate handlers. Reads
// return snapshots; changes go through the mutator methods.
type EvaluateContext struct {
	permission *permission.Permission
	options    map[string]any
}

// NewEvaluateContext wraps a copy of p. Format handlers may use it to
// replace the permission outright.
func NewEvaluateContext(p permission.Permission, opts map[string]any) *EvaluateContext {
	cp := p.Clone()
	return &EvaluateContext{permission: &cp, options: opts}
}

// Permission returns a snapshot of the permission.
func (c *EvaluateContext) Permission() permission.Permission { return c.permission.Clone() }

// Options returns a copy of the generation options.
func (c *EvaluateContext) Options() map[string]any { return maps.Clone(c.options) }

// AddCondition appends a condition reference unless already present.
func (c *EvaluateContext) AddCondition(ref string) *EvaluateContext {
	c.permission.AddCondition(ref)
	return c
}

// SetProperty sets a property on the permission.
func (c *EvaluateContext) SetProperty(key string, v any) *EvaluateContext {
	c.permission.SetProperty(key, v)
	return c
}

// DeleteProperty removes a property from the permission.
func (c *EvaluateContext) DeleteProperty(key string) *EvaluateContext {
	c.permission.DeleteProperty(key)
	return c
}

// RegisterContext is given to before-register handlers.
type RegisterContext struct {
	permission *permission.Permission
	options    map[string]any
}

// Permission returns a snapshot of the permission about to be registered.
func (c *RegisterContext) Permission() permission.Permission { return c.permission.Clone() }

// Options returns a copy of the generation options.
func (c *RegisterContext) Options() map[string]any { return maps.Clone(c.options) }

// Condition returns a builder composing the permission's compiled condition.
func (c *RegisterContext) Condition() *ConditionBuilder {
	return &ConditionBuilder{p: c.permission}
}

// ConditionBuilder composes the {"$and": [...]} condition tree of the
// permission being registered.
type ConditionBuilder struct {
	p *permission.Permission
}

// And appends obj to the $and clause list.
func (b *ConditionBuilder) And(obj map[string]any) *ConditionBuilder {
	b.p.AndCondition(obj)
	return b
}

// Or appends obj to the first $or clause inside $and, creating one when
// none exists.
func (b *ConditionBuilder) Or(obj map[string]any) *ConditionBuilder {
	b.p.OrCondition(obj)
	return b
}

// Current returns a copy of the condition tree built so far.
func (b *ConditionBuilder) Current() map[string]any {
	return permission.CloneMap(b.p.Condition)
}
