// Package dispatch resolves overloads, coerces wire arguments to Go
// parameter types, invokes the underlying Go method or reads/writes the
// underlying field, and unwraps asynchronous results — the dispatcher half
// of the RPC surface's unary handlers.
package dispatch

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jeeves-cluster-organization/exposerpc/registry"
)

// VoidResult is the sentinel yielded for a CALLABLE whose declared return
// type is void/unit.
var VoidResult = map[string]any{"status": "accepted"}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Invoke runs a CALLABLE member's underlying Go method against the given
// dynamic arguments, coercing each to its declared parameter type, then
// unwraps the result per spec.md's asynchronous/reactive rules.
func Invoke(ctx context.Context, m *registry.ExposableMember, args []any) (result any, err error) {
	if len(args) != len(m.Parameters) {
		return nil, &ArityMismatchError{FullKey: m.FullKey(), Want: len(m.Parameters), Got: len(args)}
	}

	method := m.Method()
	mt := method.Type()
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		cv, cerr := Coerce(a, mt.In(i))
		if cerr != nil {
			return nil, fmt.Errorf("dispatch: argument %d for %s: %w", i, m.FullKey(), cerr)
		}
		in[i] = cv
	}

	defer func() {
		if r := recover(); r != nil {
			err = &InvocationFailureError{FullKey: m.FullKey(), Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	out := method.Call(in)

	switch len(out) {
	case 0:
		return VoidResult, nil
	case 1:
		if mt.Out(0) == errorType {
			if !out[0].IsNil() {
				return nil, &InvocationFailureError{FullKey: m.FullKey(), Cause: out[0].Interface().(error)}
			}
			return VoidResult, nil
		}
		return unwrap(ctx, m, out[0].Interface())
	default:
		if mt.Out(1) == errorType && !out[1].IsNil() {
			return nil, &InvocationFailureError{FullKey: m.FullKey(), Cause: out[1].Interface().(error)}
		}
		return unwrap(ctx, m, out[0].Interface())
	}
}

// unwrap implements spec.md §4.2's result handling: a Future blocks until
// resolved, a Stream collects every item, anything else passes through.
func unwrap(ctx context.Context, m *registry.ExposableMember, v any) (any, error) {
	switch r := v.(type) {
	case Future:
		val, err := r.Await(ctx)
		if err != nil {
			return nil, &InvocationFailureError{FullKey: m.FullKey(), Cause: err}
		}
		return val, nil
	case Stream:
		var items []any
		for {
			item, ok, err := r.Next(ctx)
			if err != nil {
				return nil, &InvocationFailureError{FullKey: m.FullKey(), Cause: err}
			}
			if !ok {
				break
			}
			items = append(items, item)
		}
		return items, nil
	default:
		return v, nil
	}
}

// Read fetches a DATUM's current value.
func Read(m *registry.ExposableMember) (any, error) {
	if m.Kind != registry.Datum {
		return nil, &WrongKindForWriteError{FullKey: m.FullKey()}
	}
	return m.FieldValue().Interface(), nil
}

// Write assigns a DATUM's value, returning the value that was previously
// stored. Writes on CALLABLE members, and on immutable DATUMs, are
// rejected before the current value is ever touched.
func Write(m *registry.ExposableMember, newValue any) (previous any, err error) {
	if m.Kind != registry.Datum {
		return nil, &WrongKindForWriteError{FullKey: m.FullKey()}
	}
	if m.Immutable {
		return nil, &ImmutableTargetError{FullKey: m.FullKey()}
	}

	field := m.FieldValue()
	previous = field.Interface()

	// Per DESIGN.md's Open Question 3 resolution, a write value that
	// can't be decoded into the DATUM's declared type falls back to a
	// string coercion rather than failing the call; unlike the invoke
	// path's Coerce calls, a DATUM write has no overload set whose shape
	// compatibility depends on a hard coercion error.
	field.Set(CoerceSilent(newValue, field.Type()))
	return previous, nil
}

// NarrowByArgs implements spec.md §4.2's overload inference: filter an
// ambiguous candidate set by argument-shape compatibility, per Coerce's
// kind table. Exactly one survivor resolves the call; any other count is
// still ambiguous (or has no match at all).
func NarrowByArgs(candidates []*registry.ExposableMember, args []any) (*registry.ExposableMember, error) {
	var matches []*registry.ExposableMember
	for _, c := range candidates {
		if len(c.Parameters) != len(args) {
			continue
		}
		if shapesCompatible(c, args) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return nil, &registry.AmbiguousInvocationError{
			ContainerName: candidates[0].ContainerName,
			MemberName:    candidates[0].MemberName,
			Candidates:    candidates,
		}
	default:
		return nil, &registry.AmbiguousInvocationError{
			ContainerName: candidates[0].ContainerName,
			MemberName:    candidates[0].MemberName,
			Candidates:    matches,
		}
	}
}

func shapesCompatible(c *registry.ExposableMember, args []any) bool {
	mt := c.Method().Type()
	for i, a := range args {
		if _, err := Coerce(a, mt.In(i)); err != nil {
			return false
		}
	}
	return true
}
