// Package permission defines the Permission entity evaluated by the engine
// and the helpers hook handlers use to mutate it.
package permission

import (
	"errors"
	"fmt"
	"slices"

	"github.com/xraph/permit/id"
)

// ErrInvalidPermission is returned when a permission is malformed.
var ErrInvalidPermission = errors.New("permit: invalid permission")

// FieldsProperty is the property key holding the allowed field list.
const FieldsProperty = "fields"

// Permission is a declared action on a subject, optionally restricted by
// properties and condition references.
type Permission struct {
	// ID identifies the record the permission was loaded from. May be Nil.
	ID id.PermissionID `json:"id"`

	// Action is the operation being authorized. Required.
	Action string `json:"action"`

	// Subject is the resource type. Empty means global.
	Subject string `json:"subject,omitempty"`

	// Properties holds auxiliary constraints such as allowed fields.
	Properties map[string]any `json:"properties,omitempty"`

	// Conditions lists condition references in declaration order.
	Conditions []string `json:"conditions,omitempty"`

	// Condition is the compiled {"$and": [...]} tree attached when
	// conditional evaluation produced a parametrized grant.
	Condition map[string]any `json:"condition,omitempty"`
}

// Option configures a Permission built with New.
type Option func(*Permission)

// WithID sets the record ID.
func WithID(pid id.PermissionID) Option { return func(p *Permission) { p.ID = pid } }

// WithProperties sets the properties map (deep-copied).
func WithProperties(props map[string]any) Option {
	return func(p *Permission) { p.Properties = cloneMap(props) }
}

// WithFields sets the "fields" property.
func WithFields(fields ...string) Option {
	return func(p *Permission) { p.SetProperty(FieldsProperty, slices.Clone(fields)) }
}

// WithConditions appends condition references, skipping duplicates.
func WithConditions(refs ...string) Option {
	return func(p *Permission) {
		for _, ref := range refs {
			p.AddCondition(ref)
		}
	}
}

// New creates a sanitized permission.
func New(action, subject string, opts ...Option) Permission {
	p := Permission{
		Action:     action,
		Subject:    subject,
		Properties: map[string]any{},
		Conditions: []string{},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Sanitize returns a deep copy of p holding only the declared fields, with
// nil properties and conditions normalized to empty values. Any compiled
// Condition is dropped: it is produced by evaluation, never an input.
func Sanitize(p Permission) Permission {
	out := Permission{
		ID:         p.ID,
		Action:     p.Action,
		Subject:    p.Subject,
		Properties: cloneMap(p.Properties),
		Conditions: slices.Clone(p.Conditions),
	}
	if out.Properties == nil {
		out.Properties = map[string]any{}
	}
	if out.Conditions == nil {
		out.Conditions = []string{}
	}
	return out
}

// Validate checks the permission invariants.
func (p Permission) Validate() error {
	if p.Action == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidPermission)
	}
	return nil
}

// Clone returns a deep copy of p.
func (p Permission) Clone() Permission {
	return Permission{
		ID:         p.ID,
		Action:     p.Action,
		Subject:    p.Subject,
		Properties: cloneMap(p.Properties),
		Conditions: slices.Clone(p.Conditions),
		Condition:  cloneMap(p.Condition),
	}
}

// IsGlobal reports whether the permission has no subject.
func (p Permission) IsGlobal() bool { return p.Subject == "" }

// HasConditions reports whether any condition reference is declared.
func (p Permission) HasConditions() bool { return len(p.Conditions) > 0 }

// AddCondition appends ref unless it is already present.
func (p *Permission) AddCondition(ref string) {
	if slices.Contains(p.Conditions, ref) {
		return
	}
	p.Conditions = append(p.Conditions, ref)
}

// Property returns a property value.
func (p Permission) Property(key string) (any, bool) {
	v, ok := p.Properties[key]
	return v, ok
}

// SetProperty sets a property, allocating the map when needed.
func (p *Permission) SetProperty(key string, v any) {
	if p.Properties == nil {
		p.Properties = map[string]any{}
	}
	p.Properties[key] = v
}

// DeleteProperty removes a property.
func (p *Permission) DeleteProperty(key string) {
	delete(p.Properties, key)
}

// Fields returns the "fields" property as a string slice. A missing
// property yields nil, meaning every field.
func (p Permission) Fields() []string {
	raw, ok := p.Properties[FieldsProperty]
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, f := range v {
			if s, ok := f.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
