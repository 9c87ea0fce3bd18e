// Package ability compiles evaluated permissions into a queryable Ability.
//
// Rules follow the usual can/cannot model: a rule grants (or, when
// inverted, denies) an action on a subject type, optionally limited to a
// set of fields and to instances matching Mongo-style conditions. Rules
// added later take precedence over earlier ones.
//
//	b := ability.NewBuilder()
//	_ = b.Allow("read", "article", nil, map[string]any{"createdBy": 42})
//	a, _ := b.BuildAbility()
//	a.Can("read", "article")                                          // true
//	a.Can("read", ability.Object("article", map[string]any{"createdBy": 7})) // false
package ability

import (
	"errors"

	"github.com/xraph/permit/id"
	"github.com/xraph/permit/permission"
)

var (
	// ErrInvalidRule is returned when a rule cannot be compiled.
	ErrInvalidRule = errors.New("permit: invalid ability rule")

	// ErrInvalidCondition is returned when rule conditions use an unknown operator
	// or a malformed logical clause.
	ErrInvalidCondition = errors.New("permit: invalid rule condition")

	// ErrForbidden is returned by Query when no rule permits the action.
	ErrForbidden = errors.New("permit: forbidden")
)

// Checker answers authorization questions. It is what the engine returns;
// the default implementation is *Ability.
type Checker interface {
	Can(action string, subject any) bool
	Cannot(action string, subject any) bool
}

// Builder accumulates registered permissions into a Checker. A new Builder
// is created for every generation run, so implementations need not be safe
// for concurrent use.
type Builder interface {
	Can(p permission.Permission) error
	Build() (Checker, error)
}

// Instance is a subject instance checked against rule conditions.
type Instance interface {
	SubjectType() string
	SubjectAttributes() map[string]any
}

// SubjectObject is the default Instance implementation.
type SubjectObject struct {
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Object builds a SubjectObject.
func Object(subjectType string, attrs map[string]any) SubjectObject {
	return SubjectObject{Type: subjectType, Attributes: attrs}
}

func (s SubjectObject) SubjectType() string               { return s.Type }
func (s SubjectObject) SubjectAttributes() map[string]any { return s.Attributes }

// Ability is an immutable set of compiled rules. It is safe for concurrent use.
type Ability struct {
	id    id.AbilityID
	rules []Rule
}

// Compile-time interface check.
var _ Checker = (*Ability)(nil)

// New compiles rules into an Ability. Rules are validated and copied.
func New(rules []Rule) (*Ability, error) {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		r = r.clone()
		if err := r.compile(); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return &Ability{id: id.NewAbilityID(), rules: out}, nil
}

// ID identifies this compiled ability.
func (a *Ability) ID() id.AbilityID { return a.id }

// Rules returns a copy of the rules in insertion order.
func (a *Ability) Rules() []Rule {
	out := make([]Rule, len(a.rules))
	for i, r := range a.rules {
		out[i] = r.clone()
	}
	return out
}

// Len returns the number of rules.
func (a *Ability) Len() int { return len(a.rules) }

// Can reports whether action is allowed on subject. subject is a subject
// type name, an Instance, or nil for "all".
func (a *Ability) Can(action string, subject any) bool {
	return a.CanField(action, subject, "")
}

// Cannot is the negation of Can.
func (a *Ability) Cannot(action string, subject any) bool {
	return !a.Can(action, subject)
}

// CanField reports whether action is allowed on field of subject.
func (a *Ability) CanField(action string, subject any, field string) bool {
	r := a.RelevantRuleFor(action, subject, field)
	return r != nil && !r.Inverted
}

// RelevantRuleFor returns the highest-priority rule deciding the check,
// or nil when no rule applies.
func (a *Ability) RelevantRuleFor(action string, subject any, field string) *Rule {
	subjectType, attrs, instance := resolveSubject(subject)
	for i := len(a.rules) - 1; i >= 0; i-- {
		r := &a.rules[i]
		if !r.matchesAction(action) || !r.matchesSubjectType(subjectType) || !r.matchesField(field) {
			continue
		}
		if r.matchesConditions(attrs, instance) {
			out := r.clone()
			return &out
		}
	}
	return nil
}

// RulesFor returns rules matching action, subject type and field, highest
// priority first. Conditions are not evaluated.
func (a *Ability) RulesFor(action, subjectType, field string) []Rule {
	var out []Rule
	for _, r := range a.possibleRulesFor(action, subjectType) {
		if r.matchesField(field) {
			out = append(out, r)
		}
	}
	return out
}

func (a *Ability) possibleRulesFor(action, subjectType string) []Rule {
	if subjectType == "" {
		subjectType = SubjectAll
	}
	var out []Rule
	for i := len(a.rules) - 1; i >= 0; i-- {
		r := &a.rules[i]
		if r.matchesAction(action) && r.matchesSubjectType(subjectType) {
			out = append(out, r.clone())
		}
	}
	return out
}

// PermittedFields returns the fields of subject that action may touch.
// Rules without fields cover allFields; field patterns are expanded
// against allFields, or kept literally when allFields is empty.
func (a *Ability) PermittedFields(action string, subject any, allFields []string) []string {
	subjectType, attrs, instance := resolveSubject(subject)
	rules := a.possibleRulesFor(action, subjectType)

	var order []string
	granted := map[string]bool{}
	// Lowest priority first so later denials remove earlier grants.
	for i := len(rules) - 1; i >= 0; i-- {
		r := &rules[i]
		if !r.matchesConditions(attrs, instance) {
			continue
		}
		for _, f := range r.expandFields(allFields) {
			if _, listed := granted[f]; !listed {
				order = append(order, f)
			}
			granted[f] = !r.Inverted
		}
	}

	out := make([]string, 0, len(order))
	for _, f := range order {
		if granted[f] {
			out = append(out, f)
		}
	}
	return out
}

func resolveSubject(subject any) (subjectType string, attrs map[string]any, instance bool) {
	switch s := subject.(type) {
	case nil:
		return SubjectAll, nil, false
	case string:
		if s == "" {
			return SubjectAll, nil, false
		}
		return s, nil, false
	case Instance:
		t := s.SubjectType()
		if t == "" {
			t = SubjectAll
		}
		return t, s.SubjectAttributes(), true
	default:
		return SubjectAll, nil, false
	}
}
