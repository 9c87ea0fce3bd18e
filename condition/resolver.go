package condition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Evaluated pairs a condition with its handler result.
type Evaluated struct {
	Condition *Condition
	Result    any
	Duration  time.Duration
}

// Bool returns the result as a boolean, if it is one.
func (e Evaluated) Bool() (value, ok bool) {
	value, ok = e.Result.(bool)
	return value, ok
}

// Object returns the result as a query fragment, if it is one.
func (e Evaluated) Object() (map[string]any, bool) {
	m, ok := e.Result.(map[string]any)
	return m, ok
}

// Resolver turns condition references into evaluated results.
type Resolver struct {
	provider Provider
	timeout  time.Duration
	limit    int
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithTimeout bounds each handler invocation. Zero disables the bound.
func WithTimeout(d time.Duration) ResolverOption { return func(r *Resolver) { r.timeout = d } }

// WithConcurrency caps how many handlers of one permission run at once.
// Zero or negative means no cap.
func WithConcurrency(n int) ResolverOption { return func(r *Resolver) { r.limit = n } }

// NewResolver creates a resolver backed by p.
func NewResolver(p Provider, opts ...ResolverOption) *Resolver {
	r := &Resolver{provider: p}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps each reference through the provider. Unknown references
// yield nil entries at the same index.
func (r *Resolver) Resolve(refs []string) []*Condition {
	out := make([]*Condition, len(refs))
	for i, ref := range refs {
		out[i] = r.provider.Get(ref)
	}
	return out
}

// FilterValid keeps descriptors that have a handler.
func FilterValid(descs []*Condition) []*Condition {
	out := make([]*Condition, 0, len(descs))
	for _, c := range descs {
		if c.Valid() {
			out = append(out, c)
		}
	}
	return out
}

// Evaluate invokes every handler concurrently, each with its own copy of
// hc. Results keep the order of descs. The first handler error cancels
// the remaining handlers and is returned unchanged.
func (r *Resolver) Evaluate(ctx context.Context, descs []*Condition, hc HandlerContext) ([]Evaluated, error) {
	out := make([]Evaluated, len(descs))
	if len(descs) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}
	for i, c := range descs {
		g.Go(func() error {
			start := time.Now()
			res, err := r.call(gctx, c, hc.fork())
			if err != nil {
				return err
			}
			out[i] = Evaluated{Condition: c, Result: res, Duration: time.Since(start)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FilterValidResults keeps boolean and object results.
func FilterValidResults(evaluated []Evaluated) []Evaluated {
	out := make([]Evaluated, 0, len(evaluated))
	for _, e := range evaluated {
		if _, ok := e.Bool(); ok {
			out = append(out, e)
			continue
		}
		if _, ok := e.Object(); ok {
			out = append(out, e)
		}
	}
	return out
}

func (r *Resolver) call(ctx context.Context, c *Condition, hc HandlerContext) (any, error) {
	if r.timeout <= 0 {
		return invoke(ctx, c, hc)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type outcome struct {
		res any
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := invoke(ctx, c, hc)
		done <- outcome{res, err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %q after %s", ErrConditionTimeout, c.Key(), r.timeout)
		}
		return nil, ctx.Err()
	}
}

func invoke(ctx context.Context, c *Condition, hc HandlerContext) (res any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %q: %v", ErrConditionPanic, c.Key(), p)
		}
	}()
	return c.Handler(ctx, hc)
}
