// Package demo holds sample container types exercising every scenario in
// spec.md §8: a public call, overload inference, an immutable DATUM, a
// credential-gated member, a streaming-friendly echo, and an async future
// unwrap. Grounded on coreengine/grpc/testutil.go's factory-function
// convention for building sample servers, generalized here to sample
// domain containers instead of mock gRPC servers.
package demo

import (
	"context"

	"github.com/jeeves-cluster-organization/exposerpc/registry"
)

// Greeter exercises S1: a public CALLABLE with no arguments.
type Greeter struct{}

// Hi returns a fixed greeting.
func (g *Greeter) Hi() string { return "hello" }

func (g *Greeter) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{WireName: "hi", GoMember: "Hi", Kind: registry.Callable, Description: "returns a fixed greeting"},
	}
}

// Math exercises S2: two Go methods sharing one wire name, disambiguated by
// argument shape when no explicit parameter-type hint is given.
type Math struct{}

// SquareInt squares an integer.
func (m *Math) SquareInt(n int) int { return n * n }

// SquareString repeats a string once (its "square").
func (m *Math) SquareString(s string) string { return s + s }

func (m *Math) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{WireName: "square", GoMember: "SquareInt", Kind: registry.Callable, Description: "squares a number"},
		{WireName: "square", GoMember: "SquareString", Kind: registry.Callable, Description: "repeats a string"},
	}
}

// Build exercises S3 (an immutable DATUM) and S5 (a streamable echo
// CALLABLE).
type Build struct {
	Version string
}

// NewBuild creates a Build pinned at version "1.0.0".
func NewBuild() *Build {
	return &Build{Version: "1.0.0"}
}

// Echo returns its argument unchanged, used to drive the bidi-stream
// scenario with a trivially verifiable response sequence.
func (b *Build) Echo(n int) int { return n }

func (b *Build) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{WireName: "version", GoMember: "Version", Kind: registry.Datum, Immutable: true, Description: "release version"},
		{WireName: "echo", GoMember: "Echo", Kind: registry.Callable, Description: "returns its argument unchanged"},
	}
}

// Vault exercises S4: a member secured behind TOKEN_ONLY.
type Vault struct{}

// Secret returns a value only a bearer-token-authenticated caller may read.
func (v *Vault) Secret() string { return "classified" }

func (v *Vault) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{
			WireName:         "secret",
			GoMember:         "Secret",
			Kind:             registry.Callable,
			Secured:          true,
			CredentialFamily: registry.TokenOnly,
			Description:      "requires a bearer token",
		},
	}
}

// Async exercises S6: CALLABLEs whose Go method returns a dispatch.Future
// instead of a direct value.
type Async struct{}

// Ready returns a future that resolves immediately to "ready".
func (a *Async) Ready() *immediateFuture {
	return &immediateFuture{value: "ready"}
}

// Fail returns a future that resolves immediately with an error.
func (a *Async) Fail() *immediateFuture {
	return &immediateFuture{err: errFail}
}

func (a *Async) Describe() []registry.MemberDescriptor {
	return []registry.MemberDescriptor{
		{WireName: "ready", GoMember: "Ready", Kind: registry.Callable, Description: "resolves to \"ready\""},
		{WireName: "fail", GoMember: "Fail", Kind: registry.Callable, Description: "resolves with an error"},
	}
}

type immediateFuture struct {
	value any
	err   error
}

func (f *immediateFuture) Await(ctx context.Context) (any, error) {
	return f.value, f.err
}

var errFail = errFailType{}

type errFailType struct{}

func (errFailType) Error() string { return "fail" }
