package dispatch

import "context"

// Future is the compile-time stand-in for "a future-like return value" from
// spec.md §4.2: a single asynchronous result, blocked on explicitly rather
// than detected via a runtime-loaded reactive library (SPEC_FULL.md's §9
// domain note — reactive-awareness is a compile-time feature here, costing
// nothing for containers that never return one).
type Future interface {
	Await(ctx context.Context) (any, error)
}

// Stream is the multi-valued counterpart: a reactive stream whose items are
// collected into a slice before the result is serialised.
type Stream interface {
	// Next returns the next item, or ok=false when the stream is exhausted.
	Next(ctx context.Context) (item any, ok bool, err error)
}
