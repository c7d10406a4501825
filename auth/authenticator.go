// Package auth enforces per-member credential-family gating: public members
// need no credential, everything else needs a token, a key, or either,
// validated against an injected TokenValidator / KeyValidator.
package auth

import (
	"context"

	"github.com/jeeves-cluster-organization/exposerpc/registry"
)

// Authenticator checks a member's declared CredentialFamily against a
// per-call CredentialContext. Check order is public-first, then a global
// disable switch, then family-specific rules — spec.md §4.3, verbatim.
type Authenticator struct {
	tokenValidator  *TokenValidator
	keyValidator    *KeyValidator
	securityEnabled bool
}

// New creates an Authenticator. Either validator may be nil if that
// credential family is not configured at all. A TOKEN_ONLY or KEY_ONLY
// member presented with its credential fails with MisconfiguredAuthError
// when that family has no validator; an EITHER member treats a family with
// no validator as a failed check and falls through to the other one.
func New(tokenValidator *TokenValidator, keyValidator *KeyValidator, securityEnabled bool) *Authenticator {
	return &Authenticator{tokenValidator: tokenValidator, keyValidator: keyValidator, securityEnabled: securityEnabled}
}

// Check authenticates a call against m's declared credential requirements.
func (a *Authenticator) Check(ctx context.Context, m *registry.ExposableMember, cc CredentialContext) error {
	if !m.Secured {
		return nil
	}
	if !a.securityEnabled {
		return nil
	}

	switch m.CredentialFamily {
	case registry.TokenOnly:
		return a.checkTokenOnly(ctx, m, cc)
	case registry.KeyOnly:
		return a.checkKeyOnly(m, cc)
	case registry.Either:
		return a.checkEither(ctx, cc)
	default:
		return nil
	}
}

func (a *Authenticator) checkTokenOnly(ctx context.Context, m *registry.ExposableMember, cc CredentialContext) error {
	if cc.Token == "" {
		if a.keyPassesForWrongFamily(cc) {
			return &WrongFamilyError{Member: m.FullKey(), Family: "TOKEN_ONLY"}
		}
		return &NotAuthenticatedError{Reason: "token required"}
	}
	if a.tokenValidator == nil {
		return &MisconfiguredAuthError{Family: "TOKEN_ONLY"}
	}
	return a.tokenValidator.Validate(ctx, cc.Token)
}

func (a *Authenticator) checkKeyOnly(m *registry.ExposableMember, cc CredentialContext) error {
	if cc.Key == "" {
		if a.tokenPassesForWrongFamily(context.Background(), cc) {
			return &WrongFamilyError{Member: m.FullKey(), Family: "KEY_ONLY"}
		}
		return &NotAuthenticatedError{Reason: "key required"}
	}
	if a.keyValidator == nil {
		return &MisconfiguredAuthError{Family: "KEY_ONLY"}
	}
	return a.keyValidator.Validate(cc.Key)
}

func (a *Authenticator) checkEither(ctx context.Context, cc CredentialContext) error {
	if cc.Token != "" && a.tokenValidator != nil {
		if err := a.tokenValidator.Validate(ctx, cc.Token); err == nil {
			return nil
		}
	}
	if cc.Key != "" && a.keyValidator != nil {
		if err := a.keyValidator.Validate(cc.Key); err == nil {
			return nil
		}
	}
	if cc.Token == "" && cc.Key == "" {
		return &NotAuthenticatedError{Reason: "credential required"}
	}
	return &NotAuthenticatedError{Reason: "invalid credential"}
}

func (a *Authenticator) keyPassesForWrongFamily(cc CredentialContext) bool {
	return cc.Key != "" && a.keyValidator != nil && a.keyValidator.Validate(cc.Key) == nil
}

func (a *Authenticator) tokenPassesForWrongFamily(ctx context.Context, cc CredentialContext) bool {
	return cc.Token != "" && a.tokenValidator != nil && a.tokenValidator.Validate(ctx, cc.Token) == nil
}
