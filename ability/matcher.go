package ability

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/permit/permission"
)

// Supported condition operators.
const (
	opAnd       = "$and"
	opOr        = "$or"
	opNor       = "$nor"
	opEq        = "$eq"
	opNe        = "$ne"
	opGt        = "$gt"
	opGte       = "$gte"
	opLt        = "$lt"
	opLte       = "$lte"
	opIn        = "$in"
	opNin       = "$nin"
	opExists    = "$exists"
	opElemMatch = "$elemMatch"
	opRegex     = "$regex"
	opNot       = "$not"
)

var fieldOperators = map[string]bool{
	opEq: true, opNe: true, opGt: true, opGte: true, opLt: true, opLte: true,
	opIn: true, opNin: true, opExists: true, opElemMatch: true, opRegex: true, opNot: true,
}

// Match reports whether attrs satisfies the Mongo-style query. Keys are
// dotted attribute paths or the logical operators $and, $or and $nor.
// A plain value means equality; an array attribute matches when any of
// its elements does.
func Match(query, attrs map[string]any) bool {
	for k, v := range query {
		switch k {
		case opAnd:
			for _, q := range clauses(v) {
				if !Match(q, attrs) {
					return false
				}
			}
		case opOr:
			qs := clauses(v)
			matched := false
			for _, q := range qs {
				if Match(q, attrs) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case opNor:
			for _, q := range clauses(v) {
				if Match(q, attrs) {
					return false
				}
			}
		default:
			actual, present := lookup(attrs, k)
			if !matchValue(actual, present, v) {
				return false
			}
		}
	}
	return true
}

// ValidateConditions checks that every operator in conditions is supported.
func ValidateConditions(conditions map[string]any) error {
	for k, v := range conditions {
		switch k {
		case opAnd, opOr, opNor:
			list, ok := asList(v)
			if !ok {
				return fmt.Errorf("%w: %s expects an array", ErrInvalidCondition, k)
			}
			for _, item := range list {
				q, ok := item.(map[string]any)
				if !ok {
					return fmt.Errorf("%w: %s expects an array of objects", ErrInvalidCondition, k)
				}
				if err := ValidateConditions(q); err != nil {
					return err
				}
			}
		default:
			if strings.HasPrefix(k, "$") {
				return fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, k)
			}
			if err := validateFieldValue(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// hasUnknownOperator reports whether v uses, at any depth, an operator
// Match does not implement.
func hasUnknownOperator(v any) bool {
	switch n := v.(type) {
	case map[string]any:
		for k, child := range n {
			if strings.HasPrefix(k, "$") && !fieldOperators[k] && k != opAnd && k != opOr && k != opNor {
				return true
			}
			if hasUnknownOperator(child) {
				return true
			}
		}
	case []any:
		for _, item := range n {
			if hasUnknownOperator(item) {
				return true
			}
		}
	case []map[string]any:
		for _, item := range n {
			if hasUnknownOperator(item) {
				return true
			}
		}
	}
	return false
}

func validateFieldValue(v any) error {
	ops, ok := operatorObject(v)
	if !ok {
		return nil
	}
	for op, arg := range ops {
		if !fieldOperators[op] {
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, op)
		}
		switch op {
		case opIn, opNin:
			if _, ok := asList(arg); !ok {
				return fmt.Errorf("%w: %s expects an array", ErrInvalidCondition, op)
			}
		case opRegex:
			if _, err := regexp.Compile(fmt.Sprint(arg)); err != nil {
				return fmt.Errorf("%w: invalid regex %q: %w", ErrInvalidCondition, arg, err)
			}
		case opNot:
			if err := validateFieldValue(arg); err != nil {
				return err
			}
		case opElemMatch:
			q, ok := arg.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s expects an object", ErrInvalidCondition, op)
			}
			if _, isOps := operatorObject(q); isOps {
				if err := validateFieldValue(q); err != nil {
					return err
				}
			} else if err := ValidateConditions(q); err != nil {
				return err
			}
		}
	}
	return nil
}

// operatorObject reports whether v is an object whose keys are all operators.
func operatorObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !strings.HasPrefix(k, "$") {
			return nil, false
		}
	}
	return m, true
}

func matchValue(actual any, present bool, expected any) bool {
	ops, ok := operatorObject(expected)
	if !ok {
		return present && equalsOrContains(actual, expected)
	}
	for op, arg := range ops {
		if !matchOperator(op, actual, present, arg) {
			return false
		}
	}
	return true
}

func matchOperator(op string, actual any, present bool, arg any) bool {
	switch op {
	case opEq:
		return present && equalsOrContains(actual, arg)
	case opNe:
		return !present || !equalsOrContains(actual, arg)
	case opGt:
		return present && anyElement(actual, func(v any) bool { c, ok := compare(v, arg); return ok && c > 0 })
	case opGte:
		return present && anyElement(actual, func(v any) bool { c, ok := compare(v, arg); return ok && c >= 0 })
	case opLt:
		return present && anyElement(actual, func(v any) bool { c, ok := compare(v, arg); return ok && c < 0 })
	case opLte:
		return present && anyElement(actual, func(v any) bool { c, ok := compare(v, arg); return ok && c <= 0 })
	case opIn:
		list, _ := asList(arg)
		if !present {
			return containsNil(list)
		}
		for _, item := range list {
			if equalsOrContains(actual, item) {
				return true
			}
		}
		return false
	case opNin:
		return !matchOperator(opIn, actual, present, arg)
	case opExists:
		want, _ := arg.(bool)
		return present == want
	case opRegex:
		re, err := regexp.Compile(fmt.Sprint(arg))
		if err != nil || !present {
			return false
		}
		return anyElement(actual, func(v any) bool {
			s, ok := v.(string)
			return ok && re.MatchString(s)
		})
	case opNot:
		return !matchValue(actual, present, arg)
	case opElemMatch:
		list, ok := asList(actual)
		if !ok {
			return false
		}
		q, _ := arg.(map[string]any)
		_, scalar := operatorObject(q)
		for _, item := range list {
			if scalar {
				if matchValue(item, true, q) {
					return true
				}
				continue
			}
			if m, ok := item.(map[string]any); ok && Match(q, m) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// lookup resolves a dotted path. Arrays met on the way either take a
// numeric index or fan out over their elements.
func lookup(attrs map[string]any, path string) (any, bool) {
	var cur any = attrs
	parts := strings.Split(path, ".")
	for i, part := range parts {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		default:
			list, ok := asList(node)
			if !ok {
				return nil, false
			}
			if idx, err := strconv.Atoi(part); err == nil {
				if idx < 0 || idx >= len(list) {
					return nil, false
				}
				cur = list[idx]
				continue
			}
			rest := strings.Join(parts[i:], ".")
			var found []any
			for _, item := range list {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if v, ok := lookup(m, rest); ok {
					found = append(found, v)
				}
			}
			if len(found) == 0 {
				return nil, false
			}
			return found, true
		}
	}
	return cur, true
}

func equalsOrContains(actual, expected any) bool {
	if equal(actual, expected) {
		return true
	}
	if _, isList := asList(expected); isList {
		return false
	}
	list, ok := asList(actual)
	if !ok {
		return false
	}
	for _, item := range list {
		if equal(item, expected) {
			return true
		}
	}
	return false
}

func anyElement(actual any, fn func(any) bool) bool {
	if list, ok := asList(actual); ok {
		for _, item := range list {
			if fn(item) {
				return true
			}
		}
		return false
	}
	return fn(actual)
}

func equal(a, b any) bool {
	if fa, ok := toFloat64(a); ok {
		if fb, ok := toFloat64(b); ok {
			return fa == fb
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	return reflect.DeepEqual(a, b)
}

// compare orders numbers, strings and times. ok is false for mixed or
// unordered types.
func compare(a, b any) (int, bool) {
	if fa, ok := toFloat64(a); ok {
		fb, ok := toFloat64(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return ta.Compare(tb), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out, true
	default:
		return nil, false
	}
}

func clauses(v any) []map[string]any {
	list, _ := asList(v)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func containsNil(list []any) bool {
	for _, item := range list {
		if item == nil {
			return true
		}
	}
	return false
}

func cloneConditions(c map[string]any) map[string]any {
	return permission.CloneMap(c)
}
