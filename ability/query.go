package ability

import "fmt"

// Query converts the rules for action on subjectType into a single
// Mongo-style query a data layer can use to fetch permitted records.
//
// Grants are OR-ed together and denials are AND-ed in as $nor clauses.
// An unconditional grant stops the scan and drops the $or part, since
// every record is then allowed except those denied by higher-priority
// rules. An unconditional denial stops the scan as well. ErrForbidden is
// returned when nothing is permitted at all.
func (a *Ability) Query(action, subjectType string) (map[string]any, error) {
	query := map[string]any{}
	for _, r := range a.RulesFor(action, subjectType, "") {
		op := opOr
		if r.Inverted {
			op = opAnd
		}
		if len(r.Conditions) == 0 {
			if r.Inverted {
				break
			}
			delete(query, opOr)
			return query, nil
		}
		var clause map[string]any = r.Conditions
		if r.Inverted {
			clause = map[string]any{opNor: []any{r.Conditions}}
		}
		list, _ := query[op].([]any)
		query[op] = append(list, clause)
	}
	if _, ok := query[opOr]; !ok {
		return nil, fmt.Errorf("%w: cannot %s %s", ErrForbidden, action, subjectType)
	}
	return query, nil
}
