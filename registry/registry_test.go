package registry

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct {
	Name string
}

func (g *greeter) Hi() string { return "hello" }

func (g *greeter) Describe() []MemberDescriptor {
	return []MemberDescriptor{
		{WireName: "hi", GoMember: "Hi", Kind: Callable},
		{WireName: "name", GoMember: "Name", Kind: Datum, Immutable: true},
	}
}

type mathbox struct{}

func (m *mathbox) SquareInt(x int) int        { return x * x }
func (m *mathbox) SquareString(x string) string { return x + x }

func (m *mathbox) Describe() []MemberDescriptor {
	return []MemberDescriptor{
		{WireName: "square", GoMember: "SquareInt", Kind: Callable},
		{WireName: "square", GoMember: "SquareString", Kind: Callable},
	}
}

type namer interface {
	GetName() string
}

func (g *greeter) GetName() string { return g.Name }

func TestResolvePublicCall(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&greeter{Name: "x"}))

	m, err := r.Resolve("greeter", "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, Callable, m.Kind)
	assert.Equal(t, "greeter.hi()", m.FullKey())
}

func TestResolveDatumTakesPlainKey(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&greeter{Name: "x"}))

	m, err := r.Resolve("greeter", "name", nil)
	require.NoError(t, err)
	assert.Equal(t, Datum, m.Kind)
}

func TestOverloadAmbiguousThenNarrowed(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&mathbox{}))

	_, err := r.Resolve("mathbox", "square", nil)
	var ambig *AmbiguousInvocationError
	require.ErrorAs(t, err, &ambig)
	assert.Len(t, ambig.Candidates, 2)

	m, err := r.Resolve("mathbox", "square", []string{"int"})
	require.NoError(t, err)
	require.Len(t, m.Parameters, 1)
	assert.Equal(t, "int", m.Parameters[0].TypeName)
}

func TestNotFound(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&greeter{Name: "x"}))

	_, err := r.Resolve("greeter", "nope", nil)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestAliasLookupMatchesCanonical(t *testing.T) {
	r := New()
	ifaceType := reflect.TypeOf((*namer)(nil)).Elem()
	require.NoError(t, r.Register(&greeter{Name: "x"}, ifaceType))

	canonical, err := r.Resolve("greeter", "hi", nil)
	require.NoError(t, err)

	alias, err := r.Resolve("namer", "hi", nil)
	require.NoError(t, err)
	assert.Same(t, canonical, alias)
}

func TestIdempotentScan(t *testing.T) {
	r1 := New()
	require.NoError(t, r1.Register(&greeter{Name: "x"}))
	r2 := New()
	require.NoError(t, r2.Register(&greeter{Name: "x"}))

	assert.Equal(t, len(r1.All()), len(r2.All()))
}

func TestFreezeBlocksRegister(t *testing.T) {
	r := New()
	r.Freeze()
	err := r.Register(&greeter{Name: "x"})
	assert.Error(t, err)
}
