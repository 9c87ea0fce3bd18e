// Package hook provides ordered handler lists with fixed composition
// semantics. Three kinds exist:
//
//   - Bail: handlers run in order until one returns a defined result.
//   - Waterfall: each handler's output is the next handler's input.
//   - Series: every handler runs for its side effects.
//
// Handler errors stop the call and are returned unchanged.
//
// A hook is set up before use; Register is safe to call concurrently with
// Call, but handlers added during a Call are not guaranteed to run in it.
package hook

import (
	"context"
	"sync"
)

// Kind names a hook composition strategy.
type Kind string

const (
	KindBail      Kind = "bail"
	KindWaterfall Kind = "waterfall"
	KindSeries    Kind = "series"
)

// Hook is the surface shared by every hook kind.
type Hook interface {
	Kind() Kind
	Len() int
}

// list is a copy-on-read handler list.
type list[F any] struct {
	mu       sync.RWMutex
	handlers []F
}

func (l *list[F]) add(fns ...F) {
	l.mu.Lock()
	l.handlers = append(l.handlers, fns...)
	l.mu.Unlock()
}

func (l *list[F]) snapshot() []F {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]F, len(l.handlers))
	copy(out, l.handlers)
	return out
}

func (l *list[F]) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.handlers)
}

// ──────────────────────────────────────────────────
// Bail
// ──────────────────────────────────────────────────

// BailFunc is a bail handler. ok reports whether result is defined.
type BailFunc[C, R any] func(ctx context.Context, c C) (result R, ok bool, err error)

// Bail stops at the first handler that returns a defined result.
type Bail[C, R any] struct {
	l list[BailFunc[C, R]]
}

// NewBail creates an empty bail hook.
func NewBail[C, R any]() *Bail[C, R] { return &Bail[C, R]{} }

func (h *Bail[C, R]) Kind() Kind { return KindBail }
func (h *Bail[C, R]) Len() int   { return h.l.len() }

// Register appends handlers in call order.
func (h *Bail[C, R]) Register(fns ...BailFunc[C, R]) { h.l.add(fns...) }

// Call invokes handlers in registration order. The first defined result is
// returned with ok=true; if no handler defines one, ok is false.
func (h *Bail[C, R]) Call(ctx context.Context, c C) (R, bool, error) {
	var zero R
	for _, fn := range h.l.snapshot() {
		res, ok, err := fn(ctx, c)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return res, true, nil
		}
	}
	return zero, false, nil
}

// ──────────────────────────────────────────────────
// Waterfall
// ──────────────────────────────────────────────────

// WaterfallFunc receives the previous handler's output and returns the
// input for the next one.
type WaterfallFunc[T any] func(ctx context.Context, v T) (T, error)

// Waterfall chains handler outputs into inputs.
type Waterfall[T any] struct {
	l list[WaterfallFunc[T]]
}

// NewWaterfall creates an empty waterfall hook.
func NewWaterfall[T any]() *Waterfall[T] { return &Waterfall[T]{} }

func (h *Waterfall[T]) Kind() Kind { return KindWaterfall }
func (h *Waterfall[T]) Len() int   { return h.l.len() }

// Register appends handlers in call order.
func (h *Waterfall[T]) Register(fns ...WaterfallFunc[T]) { h.l.add(fns...) }

// Call seeds the first handler with v and returns the last handler's
// output. With no handlers, v is returned as is.
func (h *Waterfall[T]) Call(ctx context.Context, v T) (T, error) {
	for _, fn := range h.l.snapshot() {
		next, err := fn(ctx, v)
		if err != nil {
			return v, err
		}
		v = next
	}
	return v, nil
}

// ──────────────────────────────────────────────────
// Series
// ──────────────────────────────────────────────────

// SeriesFunc is run for its side effects.
type SeriesFunc[C any] func(ctx context.Context, c C) error

// Series runs every handler in order with the same context value.
type Series[C any] struct {
	l list[SeriesFunc[C]]
}

// NewSeries creates an empty series hook.
func NewSeries[C any]() *Series[C] { return &Series[C]{} }

func (h *Series[C]) Kind() Kind { return KindSeries }
func (h *Series[C]) Len() int   { return h.l.len() }

// Register appends handlers in call order.
func (h *Series[C]) Register(fns ...SeriesFunc[C]) { h.l.add(fns...) }

// Call runs all handlers. It stops only when a handler fails.
func (h *Series[C]) Call(ctx context.Context, c C) error {
	for _, fn := range h.l.snapshot() {
		if err := fn(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Compile-time interface checks.
var (
	_ Hook = (*Bail[struct{}, bool])(nil)
	_ Hook = (*Waterfall[struct{}])(nil)
	_ Hook = (*Series[struct{}])(nil)
)
