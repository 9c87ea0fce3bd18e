package permit

import (
	"context"
	"fmt"

	"github.com/xraph/permit/hook"
)

// Hook names one of the engine's extension points.
type Hook string

const (
	// HookBeforeFormatValidate runs before formatting. A handler returning a
	// defined false drops the permission.
	HookBeforeFormatValidate Hook = "before-format::validate.permission"

	// HookFormat chains handlers that may rewrite the permission, typically
	// to add default conditions.
	HookFormat Hook = "format.permission"

	// HookPostFormatValidate runs after formatting. A handler returning a
	// defined false drops the permission.
	HookPostFormatValidate Hook = "post-format::validate.permission"

	// HookBeforeEvaluate runs before condition evaluation.
	HookBeforeEvaluate Hook = "before-evaluate.permission"

	// HookBeforeRegister runs before a permission is added to the ability.
	HookBeforeRegister Hook = "before-register.permission"
)

// hookAfterFormatValidate is accepted by ParseHook as a name for the
// post-format validation hook.
const hookAfterFormatValidate = "after-format::validate.permission"

var allHooks = []Hook{
	HookBeforeFormatValidate,
	HookFormat,
	HookPostFormatValidate,
	HookBeforeEvaluate,
	HookBeforeRegister,
}

// AllHooks returns every hook name in pipeline order.
func AllHooks() []Hook {
	out := make([]Hook, len(allHooks))
	copy(out, allHooks)
	return out
}

// ParseHook resolves a hook name, for names that arrive from outside
// type-checked code such as configuration.
func ParseHook(name string) (Hook, error) {
	if name == hookAfterFormatValidate {
		return HookPostFormatValidate, nil
	}
	for _, h := range allHooks {
		if string(h) == name {
			return h, nil
		}
	}
	return "", &InvalidHookError{Name: name, Valid: AllHooks()}
}

// Kind returns the composition strategy of h.
func (h Hook) Kind() hook.Kind {
	switch h {
	case HookFormat:
		return hook.KindWaterfall
	case HookBeforeEvaluate, HookBeforeRegister:
		return hook.KindSeries
	default:
		return hook.KindBail
	}
}

func (h Hook) String() string { return string(h) }

// Handler signatures per hook. Validation handlers report ok=false to
// leave the decision to later handlers.
type (
	ValidateFunc = hook.BailFunc[*ValidateContext, bool]
	FormatFunc   = hook.WaterfallFunc[*EvaluateContext]
	EvaluateFunc = hook.SeriesFunc[*EvaluateContext]
	RegisterFunc = hook.SeriesFunc[*RegisterContext]
)

// Hooks is the live set of hooks owned by an engine.
type Hooks struct {
	BeforeFormatValidate *hook.Bail[*ValidateContext, bool]
	Format               *hook.Waterfall[*EvaluateContext]
	PostFormatValidate   *hook.Bail[*ValidateContext, bool]
	BeforeEvaluate       *hook.Series[*EvaluateContext]
	BeforeRegister       *hook.Series[*RegisterContext]
}

func newHooks() *Hooks {
	return &Hooks{
		BeforeFormatValidate: hook.NewBail[*ValidateContext, bool](),
		Format:               hook.NewWaterfall[*EvaluateContext](),
		PostFormatValidate:   hook.NewBail[*ValidateContext, bool](),
		BeforeEvaluate:       hook.NewSeries[*EvaluateContext](),
		BeforeRegister:       hook.NewSeries[*RegisterContext](),
	}
}

// Get returns the hook registered under name.
func (h *Hooks) Get(name Hook) hook.Hook {
	switch name {
	case HookBeforeFormatValidate:
		return h.BeforeFormatValidate
	case HookFormat:
		return h.Format
	case HookPostFormatValidate:
		return h.PostFormatValidate
	case HookBeforeEvaluate:
		return h.BeforeEvaluate
	case HookBeforeRegister:
		return h.BeforeRegister
	default:
		return nil
	}
}

// Len returns the number of handlers per hook.
func (h *Hooks) Len() map[Hook]int {
	out := make(map[Hook]int, len(allHooks))
	for _, name := range allHooks {
		out[name] = h.Get(name).Len()
	}
	return out
}

// ──────────────────────────────────────────────────
// Registration
// ──────────────────────────────────────────────────

// On registers handler on the hook called name. The handler must have the
// signature of that hook (ValidateFunc, FormatFunc, EvaluateFunc or
// RegisterFunc, or the equivalent plain func type). On an unknown name it
// returns an *InvalidHookError, on a mismatched handler ErrInvalidHookHandler;
// in both cases no hook is changed.
func (e *Engine) On(name string, handler any) (*Engine, error) {
	h, err := ParseHook(name)
	if err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, fmt.Errorf("%w: nil handler for %s", ErrInvalidHookHandler, h)
	}

	switch h {
	case HookBeforeFormatValidate, HookPostFormatValidate:
		fn, ok := asValidateFunc(handler)
		if !ok {
			return nil, handlerMismatch(h, handler)
		}
		if h == HookBeforeFormatValidate {
			return e.OnBeforeFormatValidate(fn), nil
		}
		return e.OnPostFormatValidate(fn), nil
	case HookFormat:
		fn, ok := asFormatFunc(handler)
		if !ok {
			return nil, handlerMismatch(h, handler)
		}
		return e.OnFormat(fn), nil
	case HookBeforeEvaluate:
		fn, ok := asEvaluateFunc(handler)
		if !ok {
			return nil, handlerMismatch(h, handler)
		}
		return e.OnBeforeEvaluate(fn), nil
	default:
		fn, ok := asRegisterFunc(handler)
		if !ok {
			return nil, handlerMismatch(h, handler)
		}
		return e.OnBeforeRegister(fn), nil
	}
}

// OnBeforeFormatValidate registers handlers on HookBeforeFormatValidate.
func (e *Engine) OnBeforeFormatValidate(fns ...ValidateFunc) *Engine {
	e.hooks.BeforeFormatValidate.Register(fns...)
	return e
}

// OnFormat registers handlers on HookFormat. A handler returning a nil
// context passes its input on unchanged.
func (e *Engine) OnFormat(fns ...FormatFunc) *Engine {
	for _, fn := range fns {
		e.hooks.Format.Register(keepOnNil(fn))
	}
	return e
}

// OnPostFormatValidate registers handlers on HookPostFormatValidate.
func (e *Engine) OnPostFormatValidate(fns ...ValidateFunc) *Engine {
	e.hooks.PostFormatValidate.Register(fns...)
	return e
}

// OnBeforeEvaluate registers handlers on HookBeforeEvaluate.
func (e *Engine) OnBeforeEvaluate(fns ...EvaluateFunc) *Engine {
	e.hooks.BeforeEvaluate.Register(fns...)
	return e
}

// OnBeforeRegister registers handlers on HookBeforeRegister.
func (e *Engine) OnBeforeRegister(fns ...RegisterFunc) *Engine {
	e.hooks.BeforeRegister.Register(fns...)
	return e
}

// Hooks exposes the engine's live hooks for inspection.
func (e *Engine) Hooks() *Hooks { return e.hooks }

// keepOnNil passes the input on when a handler returns nothing usable.
func keepOnNil(fn FormatFunc) FormatFunc {
	return func(ctx context.Context, ec *EvaluateContext) (*EvaluateContext, error) {
		next, err := fn(ctx, ec)
		if err != nil {
			return ec, err
		}
		if next == nil || next.permission == nil {
			return ec, nil
		}
		return next, nil
	}
}

func handlerMismatch(h Hook, handler any) error {
	return fmt.Errorf("%w: %s is a %s hook, got %T", ErrInvalidHookHandler, h, h.Kind(), handler)
}

func asValidateFunc(v any) (ValidateFunc, bool) {
	switch fn := v.(type) {
	case ValidateFunc:
		return fn, fn != nil
	case func(context.Context, *ValidateContext) (bool, bool, error):
		return fn, fn != nil
	default:
		return nil, false
	}
}

func asFormatFunc(v any) (FormatFunc, bool) {
	switch fn := v.(type) {
	case FormatFunc:
		return fn, fn != nil
	case func(context.Context, *EvaluateContext) (*EvaluateContext, error):
		return fn, fn != nil
	default:
		return nil, false
	}
}

func asEvaluateFunc(v any) (EvaluateFunc, bool) {
	switch fn := v.(type) {
	case EvaluateFunc:
		return fn, fn != nil
	case func(context.Context, *EvaluateContext) error:
		return fn, fn != nil
	default:
		return nil, false
	}
}

func asRegisterFunc(v any) (RegisterFunc, bool) {
	switch fn := v.(type) {
	case RegisterFunc:
		return fn, fn != nil
	case func(context.Context, *RegisterContext) error:
		return fn, fn != nil
	default:
		return nil, false
	}
}
