package auth

import "context"

// CredentialContext is the per-call credential bag populated by the RPC
// Surface's metadata interceptor and discarded when the call completes.
// Either field may be empty.
type CredentialContext struct {
	Token string
	Key   string
}

type credentialContextKey struct{}

// WithCredentialContext installs a CredentialContext into ctx for the
// duration of one call.
func WithCredentialContext(ctx context.Context, cc CredentialContext) context.Context {
	return context.WithValue(ctx, credentialContextKey{}, cc)
}

// FromContext retrieves the CredentialContext installed by the interceptor;
// the zero value is returned if none was installed.
func FromContext(ctx context.Context) CredentialContext {
	cc, _ := ctx.Value(credentialContextKey{}).(CredentialContext)
	return cc
}
