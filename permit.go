// Package permit compiles declared permissions into a queryable ability.
//
// Each permission (an action on a subject, with optional properties and
// condition references) runs through a pipeline of named hooks: validation,
// formatting, a second validation, a before-evaluate step, condition
// resolution and registration. Conditions are resolved through an injected
// provider and evaluated concurrently; their results decide whether the
// permission is registered as is, with a compiled condition, or not at all.
//
//	reg := condition.NewRegistry()
//	_ = reg.Register(condition.Condition{Name: "is-creator", Handler: isCreator})
//
//	eng, err := permit.NewEngine(permit.WithConditionProvider(reg))
//	ab, err := eng.GenerateAbility(ctx, []permit.Permission{
//	    permission.New("read", "article", permission.WithConditions("is-creator")),
//	}, map[string]any{"user": user})
//	ab.Can("read", ability.Object("article", attrs))
package permit

import (
	"github.com/xraph/permit/ability"
	"github.com/xraph/permit/permission"
)

// Permission is the declared permission evaluated by the engine.
type Permission = permission.Permission

// State is the terminal outcome of evaluating one permission.
type State = permission.State

// Checker answers authorization questions for a generated ability.
type Checker = ability.Checker

// AbilityBuilderFactory creates a fresh builder for each generation run.
type AbilityBuilderFactory func() ability.Builder
