package permit

import (
	"context"
	"log/slog"

	"github.com/xraph/permit/ability"
	"github.com/xraph/permit/condition"
	"github.com/xraph/permit/id"
	"github.com/xraph/permit/permission"
	"github.com/xraph/permit/plugin"
)

// generation is the state of one GenerateAbility run.
type generation struct {
	id         id.GenerationID
	builder    ability.Builder
	options    map[string]any
	registered int
}

// decision is what the condition results imply for a permission.
type decision int

const (
	decideUnconditional decision = iota
	decideSkip
	decideConditional
)

// evaluate drives one permission through the hook pipeline and registers
// it when the outcome calls for it.
func (e *Engine) evaluate(ctx context.Context, run *generation, p permission.Permission) (permission.State, error) {
	valid, defined, err := e.hooks.BeforeFormatValidate.Call(ctx, newValidateContext(p, run.options))
	if err != nil {
		return permission.StatePending, err
	}
	if defined && !valid {
		return permission.StateBailedPreFormat, nil
	}

	seed := NewEvaluateContext(p, run.options)
	ec, err := e.hooks.Format.Call(ctx, seed)
	if err != nil {
		return permission.StatePending, err
	}
	if ec == nil || ec.permission == nil {
		ec = seed
	}

	valid, defined, err = e.hooks.PostFormatValidate.Call(ctx, newValidateContext(*ec.permission, run.options))
	if err != nil {
		return permission.StatePending, err
	}
	if defined && !valid {
		return permission.StateBailedPostFormat, nil
	}

	if err := e.hooks.BeforeEvaluate.Call(ctx, ec); err != nil {
		return permission.StatePending, err
	}

	p = ec.permission.Clone()
	if !p.HasConditions() {
		if err := e.register(ctx, run, p, nil); err != nil {
			return permission.StatePending, err
		}
		return permission.StateRegistered, nil
	}

	results, err := e.resolveConditions(ctx, run, p)
	if err != nil {
		return permission.StatePending, err
	}

	switch d, objects := decide(results); d {
	case decideSkip:
		return permission.StateSkippedAllTrue, nil
	case decideConditional:
		if err := e.register(ctx, run, p, permission.CompileConditions(objects)); err != nil {
			return permission.StatePending, err
		}
	default:
		if err := e.register(ctx, run, p, nil); err != nil {
			return permission.StatePending, err
		}
	}
	return permission.StateRegistered, nil
}

// resolveConditions looks up and runs the handlers of p's conditions and
// returns the usable results.
func (e *Engine) resolveConditions(ctx context.Context, run *generation, p permission.Permission) ([]condition.Evaluated, error) {
	descs := condition.FilterValid(e.resolver.Resolve(p.Conditions))
	if dropped := len(p.Conditions) - len(descs); dropped > 0 {
		e.logger.Debug("unresolved conditions dropped",
			slog.String("generation", run.id.String()),
			slog.String("action", p.Action),
			slog.Int("dropped", dropped),
		)
	}

	evaluated, err := e.resolver.Evaluate(ctx, descs, condition.HandlerContext{
		Options:    run.options,
		Permission: p,
	})
	if err != nil {
		return nil, err
	}
	for _, ev := range evaluated {
		e.plugins.EmitConditionEvaluated(ctx, plugin.ConditionResult{
			Generation: run.id,
			Ref:        ev.Condition.Key(),
			Result:     ev.Result,
			Duration:   ev.Duration,
		})
	}

	results := condition.FilterValidResults(evaluated)
	if dropped := len(evaluated) - len(results); dropped > 0 {
		e.logger.Debug("invalid condition results dropped",
			slog.String("generation", run.id.String()),
			slog.String("action", p.Action),
			slog.Int("dropped", dropped),
		)
	}
	return results, nil
}

// decide applies the registration policy to valid condition results:
//
//   - all results true: nothing is registered
//   - no results, or any false: registered without condition
//   - otherwise: registered with the object results OR-ed together
func decide(results []condition.Evaluated) (decision, []map[string]any) {
	if len(results) == 0 {
		return decideUnconditional, nil
	}

	allTrue := true
	var objects []map[string]any
	for _, r := range results {
		if v, ok := r.Bool(); ok {
			if !v {
				return decideUnconditional, nil
			}
			continue
		}
		allTrue = false
		if obj, ok := r.Object(); ok {
			objects = append(objects, obj)
		}
	}
	if allTrue {
		return decideSkip, nil
	}
	return decideConditional, objects
}
