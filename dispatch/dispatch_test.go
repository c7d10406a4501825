package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/jeeves-cluster-organization/exposerpc/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type build struct {
	Version string
}

func (b *build) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{WireName: "version", GoMember: "Version", Kind: registry.Datum, Immutable: true},
	}
}

type greeter struct{}

func (g *greeter) Hi() string { return "hello" }
func (g *greeter) Echo(x int) int { return x }
func (g *greeter) Boom() (string, error) { return "", errors.New("fail") }

func (g *greeter) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{WireName: "hi", GoMember: "Hi", Kind: registry.Callable},
		{WireName: "echo", GoMember: "Echo", Kind: registry.Callable},
		{WireName: "boom", GoMember: "Boom", Kind: registry.Callable},
	}
}

type counter struct {
	Count int
	Label string
}

func (c *counter) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{WireName: "count", GoMember: "Count", Kind: registry.Datum},
		{WireName: "label", GoMember: "Label", Kind: registry.Datum},
	}
}

type futureResult struct {
	val any
	err error
}

func (f futureResult) Await(ctx context.Context) (any, error) { return f.val, f.err }

type asyncGreeter struct{}

func (a *asyncGreeter) Ready() Future  { return futureResult{val: "ready"} }
func (a *asyncGreeter) Fail() Future   { return futureResult{err: errors.New("fail")} }

func (a *asyncGreeter) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{WireName: "ready", GoMember: "Ready", Kind: registry.Callable},
		{WireName: "fail", GoMember: "Fail", Kind: registry.Callable},
	}
}

func TestInvokePublicCall(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(&greeter{}))
	m, err := r.Resolve("greeter", "hi", nil)
	require.NoError(t, err)

	result, err := Invoke(context.Background(), m, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestInvokeArityMismatch(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(&greeter{}))
	m, err := r.Resolve("greeter", "echo", nil)
	require.NoError(t, err)

	_, err = Invoke(context.Background(), m, nil)
	var am *ArityMismatchError
	require.ErrorAs(t, err, &am)
}

func TestInvokeWrapsTargetError(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(&greeter{}))
	m, err := r.Resolve("greeter", "boom", nil)
	require.NoError(t, err)

	_, err = Invoke(context.Background(), m, nil)
	var inv *InvocationFailureError
	require.ErrorAs(t, err, &inv)
}

func TestImmutableWriteRejected(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(&build{Version: "1.0.0"}))
	m, err := r.Resolve("build", "version", nil)
	require.NoError(t, err)

	_, err = Write(m, "2.0.0")
	var immut *ImmutableTargetError
	require.ErrorAs(t, err, &immut)

	current, err := Read(m)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", current)
}

type countStream struct {
	items []any
	err   error
	i     int
}

func (s *countStream) Next(ctx context.Context) (any, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	if s.i >= len(s.items) {
		return nil, false, nil
	}
	item := s.items[s.i]
	s.i++
	return item, true, nil
}

type streamGreeter struct{}

func (s *streamGreeter) Counters() Stream    { return &countStream{items: []any{1, 2, 3}} }
func (s *streamGreeter) Broken() Stream      { return &countStream{err: errors.New("stream broke")} }

func (s *streamGreeter) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{WireName: "counters", GoMember: "Counters", Kind: registry.Callable},
		{WireName: "broken", GoMember: "Broken", Kind: registry.Callable},
	}
}

func TestStreamUnwrapCollectsItems(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(&streamGreeter{}))

	m, err := r.Resolve("streamGreeter", "counters", nil)
	require.NoError(t, err)
	result, err := Invoke(context.Background(), m, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, result)
}

func TestStreamUnwrapPropagatesError(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(&streamGreeter{}))

	m, err := r.Resolve("streamGreeter", "broken", nil)
	require.NoError(t, err)
	_, err = Invoke(context.Background(), m, nil)
	var inv *InvocationFailureError
	require.ErrorAs(t, err, &inv)
}

func TestWriteMutableDatumSucceeds(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(&counter{Count: 1}))
	m, err := r.Resolve("counter", "count", nil)
	require.NoError(t, err)

	previous, err := Write(m, float64(5))
	require.NoError(t, err)
	assert.Equal(t, 1, previous)

	current, err := Read(m)
	require.NoError(t, err)
	assert.Equal(t, 5, current)
}

func TestWriteFallsBackToStringOnUncoercibleValue(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(&counter{Label: "a"}))
	m, err := r.Resolve("counter", "label", nil)
	require.NoError(t, err)

	// map[string]any has no string conversion via Coerce; Write's silent
	// fallback renders it with fmt and stores that instead of failing.
	_, err = Write(m, map[string]any{"x": 1})
	require.NoError(t, err)

	current, err := Read(m)
	require.NoError(t, err)
	assert.Equal(t, "map[x:1]", current)
}

func TestFutureUnwrap(t *testing.T) {
	r := registry.New()
	require.NoError(t, r.Register(&asyncGreeter{}))

	ready, err := r.Resolve("asyncGreeter", "ready", nil)
	require.NoError(t, err)
	result, err := Invoke(context.Background(), ready, nil)
	require.NoError(t, err)
	assert.Equal(t, "ready", result)

	fail, err := r.Resolve("asyncGreeter", "fail", nil)
	require.NoError(t, err)
	_, err = Invoke(context.Background(), fail, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail")
}
