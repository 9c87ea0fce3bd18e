package ability

import (
	"fmt"
	"slices"

	"github.com/gobwas/glob"
)

// Wildcards understood by rule matching.
const (
	// ActionManage matches every action.
	ActionManage = "manage"

	// SubjectAll matches every subject type.
	SubjectAll = "all"
)

// Rule is one compiled grant (or denial, when Inverted).
type Rule struct {
	Action     string         `json:"action"`
	Subject    string         `json:"subject"`
	Fields     []string       `json:"fields,omitempty"`
	Conditions map[string]any `json:"conditions,omitempty"`
	Inverted   bool           `json:"inverted,omitempty"`
	Reason     string         `json:"reason,omitempty"`

	fieldGlobs []glob.Glob
	// opaque is set when Conditions use operators Match does not know.
	// Such grants never match an instance.
	opaque bool
}

// compile validates r and prepares its field patterns. Field patterns use
// '.' as separator: "*" matches one segment, "**" any number.
func (r *Rule) compile() error {
	if r.Action == "" {
		return fmt.Errorf("%w: rule action is required", ErrInvalidRule)
	}
	if r.Subject == "" {
		r.Subject = SubjectAll
	}
	if hasUnknownOperator(r.Conditions) {
		if r.Inverted {
			return fmt.Errorf("%w: denial uses an unsupported operator", ErrInvalidCondition)
		}
		r.opaque = true
	} else if err := ValidateConditions(r.Conditions); err != nil {
		return err
	}
	r.fieldGlobs = make([]glob.Glob, 0, len(r.Fields))
	for _, f := range r.Fields {
		g, err := glob.Compile(f, '.')
		if err != nil {
			return fmt.Errorf("%w: field pattern %q: %w", ErrInvalidRule, f, err)
		}
		r.fieldGlobs = append(r.fieldGlobs, g)
	}
	return nil
}

func (r *Rule) matchesAction(action string) bool {
	return r.Action == action || r.Action == ActionManage
}

func (r *Rule) matchesSubjectType(subjectType string) bool {
	return r.Subject == subjectType || r.Subject == SubjectAll
}

// matchesField reports whether the rule covers field. A rule without
// fields covers every field; a check without a field matches only
// non-inverted field rules.
func (r *Rule) matchesField(field string) bool {
	if len(r.Fields) == 0 {
		return true
	}
	if field == "" {
		return !r.Inverted
	}
	for _, g := range r.fieldGlobs {
		if g.Match(field) {
			return true
		}
	}
	return false
}

// expandFields lists the entries of allFields the rule covers.
func (r *Rule) expandFields(allFields []string) []string {
	if len(r.Fields) == 0 {
		return allFields
	}
	if len(allFields) == 0 {
		return r.Fields
	}
	var out []string
	for _, f := range allFields {
		for _, g := range r.fieldGlobs {
			if g.Match(f) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// matchesConditions evaluates the rule conditions. When the check targets
// a subject type rather than an instance, conditional grants may apply
// and conditional denials may not. Opaque grants never match an instance.
func (r *Rule) matchesConditions(attrs map[string]any, instance bool) bool {
	if len(r.Conditions) == 0 {
		return true
	}
	if !instance {
		return !r.Inverted
	}
	if r.opaque {
		return false
	}
	return Match(r.Conditions, attrs)
}

// clone returns a copy that shares nothing mutable with r.
func (r Rule) clone() Rule {
	out := r
	out.Fields = slices.Clone(r.Fields)
	out.Conditions = cloneConditions(r.Conditions)
	out.fieldGlobs = slices.Clone(r.fieldGlobs)
	return out
}
