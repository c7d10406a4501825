package auth

import (
	"context"
	"crypto"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jeeves-cluster-organization/exposerpc/observability"
)

// KeySetFetcher is the external collaborator contract for resolving a JWT's
// verification key by key-id (spec.md §1's "remote key-set endpoint" — out
// of scope here, only its contract is specified).
type KeySetFetcher interface {
	FetchKey(ctx context.Context, keyID string) (crypto.PublicKey, error)
}

// TokenValidatorConfig configures bearer-token validation.
type TokenValidatorConfig struct {
	Issuer    string
	Audience  []string
	ClockSkew time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

type cacheEntry struct {
	expiresAt time.Time
}

// TokenValidator validates signed compact-form JWTs against a key-set
// fetcher, memoising validated tokens in a bounded LRU cache. Grounded on
// kernel/rate_limiter.go's bucket-prune-on-insert strategy: pruning expired
// entries happens inline, just before a new entry is inserted, once the
// cache has reached its configured size, rather than on a background timer.
type TokenValidator struct {
	fetcher  KeySetFetcher
	cfg      TokenValidatorConfig
	cache    *lru.Cache[string, cacheEntry]
	capacity int
	onEvict  func(reason string)
}

// OnEvict installs a callback invoked every time Validate prunes a cache
// entry, either because it had expired (reason "expired") or because
// pruneExpiredIfFull swept it while reclaiming space (also "expired" — the
// prune pass only ever removes entries past their TTL). Nil by default; a
// caller wires this to publish eventbus.TokenCacheEvicted.
func (v *TokenValidator) OnEvict(fn func(reason string)) {
	v.onEvict = fn
}

// NewTokenValidator creates a TokenValidator. fetcher must not be nil.
// When no TokenValidator is configured at all, the Authenticator returns
// MisconfiguredAuthError for a TOKEN_ONLY member presented with a token; an
// EITHER member treats the missing validator as a failed token check.
func NewTokenValidator(fetcher KeySetFetcher, cfg TokenValidatorConfig) (*TokenValidator, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1024
	}
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("auth: creating token cache: %w", err)
	}
	return &TokenValidator{fetcher: fetcher, cfg: cfg, cache: cache, capacity: size}, nil
}

var allowedSigningMethods = []string{
	"RS256", "RS384", "RS512",
	"ES256", "ES384", "ES512",
}

// Validate parses and verifies tokenString, consulting the cache first.
func (v *TokenValidator) Validate(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return &NotAuthenticatedError{Reason: "empty token"}
	}

	if entry, ok := v.cache.Get(tokenString); ok {
		if time.Now().Before(entry.expiresAt) {
			return nil
		}
		v.cache.Remove(tokenString)
		v.notifyEvicted("expired")
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}
		return v.fetcher.FetchKey(ctx, kid)
	}, jwt.WithValidMethods(allowedSigningMethods), jwt.WithLeeway(v.cfg.ClockSkew))
	if err != nil {
		return &NotAuthenticatedError{Reason: err.Error()}
	}

	issuer, _ := claims.GetIssuer()
	if v.cfg.Issuer != "" && issuer != v.cfg.Issuer {
		return &NotAuthenticatedError{Reason: "issuer mismatch"}
	}

	audience, _ := claims.GetAudience()
	if len(v.cfg.Audience) > 0 && !audienceIntersects(audience, v.cfg.Audience) {
		return &NotAuthenticatedError{Reason: "audience mismatch"}
	}

	expiresAt := time.Now().Add(v.cfg.CacheTTL)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Time.Before(expiresAt) {
		expiresAt = exp.Time
	}

	v.pruneExpiredIfFull()
	v.cache.Add(tokenString, cacheEntry{expiresAt: expiresAt})
	observability.SetTokenCacheSize(v.cache.Len())
	return nil
}

func audienceIntersects(tokenAud, configured []string) bool {
	set := make(map[string]struct{}, len(configured))
	for _, a := range configured {
		set[a] = struct{}{}
	}
	for _, a := range tokenAud {
		if _, ok := set[a]; ok {
			return true
		}
	}
	return false
}

// pruneExpiredIfFull sweeps expired entries once the cache has reached its
// configured capacity, so a steady trickle of distinct short-lived tokens
// doesn't evict still-valid ones purely on LRU recency.
func (v *TokenValidator) pruneExpiredIfFull() {
	if v.cache.Len() < v.capacity {
		return
	}
	keys := v.cache.Keys()
	now := time.Now()
	for _, k := range keys {
		entry, ok := v.cache.Peek(k)
		if ok && now.After(entry.expiresAt) {
			v.cache.Remove(k)
			v.notifyEvicted("expired")
		}
	}
	observability.SetTokenCacheSize(v.cache.Len())
}

func (v *TokenValidator) notifyEvicted(reason string) {
	if v.onEvict != nil {
		v.onEvict(reason)
	}
}
