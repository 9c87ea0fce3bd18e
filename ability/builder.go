package ability

import (
	"github.com/xraph/permit/permission"
)

// Compile-time interface check.
var _ Builder = (*RuleBuilder)(nil)

// RuleBuilder is the default Builder. Besides the engine-facing Can it
// exposes Allow and Forbid for building abilities by hand.
type RuleBuilder struct {
	rules []Rule
}

// NewBuilder creates an empty RuleBuilder. It has the signature expected
// of an ability builder factory.
func NewBuilder() Builder { return &RuleBuilder{} }

// NewRuleBuilder creates an empty RuleBuilder with its concrete type.
func NewRuleBuilder() *RuleBuilder { return &RuleBuilder{} }

// Can adds a grant for a registered permission: an empty subject becomes
// "all", properties.fields become rule fields and the compiled condition
// becomes the rule conditions.
func (b *RuleBuilder) Can(p permission.Permission) error {
	subject := p.Subject
	if subject == "" {
		subject = SubjectAll
	}
	return b.Allow(p.Action, subject, p.Fields(), p.Condition)
}

// Allow adds a grant rule.
func (b *RuleBuilder) Allow(action, subject string, fields []string, conditions map[string]any) error {
	return b.add(Rule{Action: action, Subject: subject, Fields: fields, Conditions: conditions})
}

// Forbid adds an inverted rule.
func (b *RuleBuilder) Forbid(action, subject string, fields []string, conditions map[string]any) error {
	return b.add(Rule{Action: action, Subject: subject, Fields: fields, Conditions: conditions, Inverted: true})
}

func (b *RuleBuilder) add(r Rule) error {
	r = r.clone()
	if err := r.compile(); err != nil {
		return err
	}
	b.rules = append(b.rules, r)
	return nil
}

// Build implements Builder.
func (b *RuleBuilder) Build() (Checker, error) {
	a, err := b.BuildAbility()
	if err != nil {
		return nil, err
	}
	return a, nil
}

// BuildAbility returns the accumulated rules as an *Ability.
func (b *RuleBuilder) BuildAbility() (*Ability, error) {
	return New(b.rules)
}
