package auth

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jeeves-cluster-organization/exposerpc/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFetcher struct {
	key crypto.PublicKey
}

func (f staticFetcher) FetchKey(ctx context.Context, keyID string) (crypto.PublicKey, error) {
	return f.key, nil
}

func signToken(t *testing.T, priv *ecdsa.PrivateKey, issuer string, aud []string, exp time.Time) string {
	claims := jwt.MapClaims{
		"iss": issuer,
		"aud": aud,
		"exp": exp.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["kid"] = "kid-1"
	signed, err := tok.SignedString(priv)
	require.NoError(t, err)
	return signed
}

func TestKeyOnlyValidation(t *testing.T) {
	kv := NewKeyValidator([]string{"k1", "k2"})
	require.NoError(t, kv.Validate("k1"))
	require.Error(t, kv.Validate("unknown"))
}

func TestKeyRotation(t *testing.T) {
	kv := NewKeyValidator([]string{"old"})
	require.NoError(t, kv.Validate("old"))
	kv.Rotate([]string{"new"})
	require.Error(t, kv.Validate("old"))
	require.NoError(t, kv.Validate("new"))
}

func TestTokenValidatorSuccessAndCache(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tv, err := NewTokenValidator(staticFetcher{key: &priv.PublicKey}, TokenValidatorConfig{
		Issuer:    "issuer-x",
		Audience:  []string{"aud-x"},
		ClockSkew: time.Minute,
		CacheSize: 10,
		CacheTTL:  time.Hour,
	})
	require.NoError(t, err)

	token := signToken(t, priv, "issuer-x", []string{"aud-x"}, time.Now().Add(time.Hour))
	require.NoError(t, tv.Validate(context.Background(), token))
	// second call should hit the cache path
	require.NoError(t, tv.Validate(context.Background(), token))
}

func TestTokenValidatorNotifiesOnExpiry(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tv, err := NewTokenValidator(staticFetcher{key: &priv.PublicKey}, TokenValidatorConfig{
		Issuer:    "issuer-x",
		Audience:  []string{"aud-x"},
		ClockSkew: time.Minute,
		CacheSize: 10,
		CacheTTL:  time.Hour,
	})
	require.NoError(t, err)

	var evicted []string
	tv.OnEvict(func(reason string) { evicted = append(evicted, reason) })

	// exp is in the past relative to ClockSkew's leeway once the cached
	// entry's own TTL (min(CacheTTL, exp)) has elapsed; shrink CacheTTL to 0
	// so the cache entry is born already expired and the next Validate call
	// observes and prunes it.
	tv.cfg.CacheTTL = 0
	token := signToken(t, priv, "issuer-x", []string{"aud-x"}, time.Now().Add(time.Hour))
	require.NoError(t, tv.Validate(context.Background(), token))

	require.NoError(t, tv.Validate(context.Background(), token))
	assert.Equal(t, []string{"expired"}, evicted)
}

func TestTokenValidatorRejectsWrongIssuer(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tv, err := NewTokenValidator(staticFetcher{key: &priv.PublicKey}, TokenValidatorConfig{
		Issuer:   "expected-issuer",
		Audience: []string{"aud-x"},
		CacheSize: 10,
	})
	require.NoError(t, err)

	token := signToken(t, priv, "someone-else", []string{"aud-x"}, time.Now().Add(time.Hour))
	err = tv.Validate(context.Background(), token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issuer")
}

func TestAuthenticatorPublicMemberNeedsNoCredential(t *testing.T) {
	a := New(nil, nil, true)
	m := &registry.ExposableMember{Secured: false}
	require.NoError(t, a.Check(context.Background(), m, CredentialContext{}))
}

func TestAuthenticatorGlobalDisable(t *testing.T) {
	a := New(nil, nil, false)
	m := &registry.ExposableMember{Secured: true, CredentialFamily: registry.TokenOnly}
	require.NoError(t, a.Check(context.Background(), m, CredentialContext{}))
}

func TestAuthenticatorKeyOnlyMisconfigured(t *testing.T) {
	a := New(nil, nil, true)
	m := &registry.ExposableMember{Secured: true, CredentialFamily: registry.KeyOnly}
	err := a.Check(context.Background(), m, CredentialContext{Key: "k"})
	var mis *MisconfiguredAuthError
	require.ErrorAs(t, err, &mis)
}

func TestAuthenticatorWrongFamily(t *testing.T) {
	kv := NewKeyValidator([]string{"valid-key"})
	a := New(nil, kv, true)
	m := &registry.ExposableMember{Secured: true, CredentialFamily: registry.TokenOnly}

	err := a.Check(context.Background(), m, CredentialContext{Key: "valid-key"})
	var wf *WrongFamilyError
	require.ErrorAs(t, err, &wf)
}

func TestAuthenticatorEitherAcceptsKeyAloneAndRejectsNoCredential(t *testing.T) {
	kv := NewKeyValidator([]string{"valid-key"})
	a := New(nil, kv, true)
	m := &registry.ExposableMember{Secured: true, CredentialFamily: registry.Either}

	require.NoError(t, a.Check(context.Background(), m, CredentialContext{Key: "valid-key"}))

	err := a.Check(context.Background(), m, CredentialContext{})
	var na *NotAuthenticatedError
	require.ErrorAs(t, err, &na)
}
