package permission

// Logical operators of a compiled condition tree.
const (
	OpAnd = "$and"
	OpOr  = "$or"
)

// CompileConditions builds {"$and": [{"$or": [results...]}]} from object
// results of condition handlers.
func CompileConditions(results []map[string]any) map[string]any {
	or := make([]any, 0, len(results))
	for _, r := range results {
		or = append(or, cloneMap(r))
	}
	return map[string]any{
		OpAnd: []any{map[string]any{OpOr: or}},
	}
}

// AndCondition appends obj to the top-level $and clause, creating
// {"$and": []} when the permission has no condition yet.
func (p *Permission) AndCondition(obj map[string]any) {
	and := p.ensureAnd()
	p.Condition[OpAnd] = append(and, obj)
}

// OrCondition appends obj to the first {"$or": [...]} clause inside $and,
// or pushes a new {"$or": [obj]} clause when none exists.
func (p *Permission) OrCondition(obj map[string]any) {
	and := p.ensureAnd()
	for _, clause := range and {
		m, ok := clause.(map[string]any)
		if !ok {
			continue
		}
		if or, ok := m[OpOr].([]any); ok {
			m[OpOr] = append(or, obj)
			return
		}
	}
	p.Condition[OpAnd] = append(and, map[string]any{OpOr: []any{obj}})
}

func (p *Permission) ensureAnd() []any {
	if p.Condition == nil {
		p.Condition = map[string]any{}
	}
	switch and := p.Condition[OpAnd].(type) {
	case []any:
		return and
	case []map[string]any:
		out := make([]any, len(and))
		for i, m := range and {
			out[i] = m
		}
		p.Condition[OpAnd] = out
		return out
	default:
		out := []any{}
		p.Condition[OpAnd] = out
		return out
	}
}
