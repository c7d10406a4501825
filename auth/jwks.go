package auth

import (
	"context"
	"crypto"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// HTTPKeySetFetcher implements KeySetFetcher against a standard JWKS
// endpoint (RFC 7517), fetching the whole document on an unseen key id and
// caching parsed keys by kid. No library in the example corpus offers a
// JWKS client, so this is hand-rolled against stdlib net/http and
// crypto/rsa; see DESIGN.md.
type HTTPKeySetFetcher struct {
	uri    string
	client *http.Client

	mu   sync.Mutex
	keys map[string]crypto.PublicKey
}

// NewHTTPKeySetFetcher creates a fetcher against the given JWKS endpoint
// URI.
func NewHTTPKeySetFetcher(uri string) *HTTPKeySetFetcher {
	return &HTTPKeySetFetcher{
		uri:    uri,
		client: &http.Client{Timeout: 10 * time.Second},
		keys:   make(map[string]crypto.PublicKey),
	}
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// FetchKey resolves keyID, refetching the key set at most once if keyID is
// unseen (covers rotation: a new signing key appears in the document before
// any token references it).
func (f *HTTPKeySetFetcher) FetchKey(ctx context.Context, keyID string) (crypto.PublicKey, error) {
	f.mu.Lock()
	if key, ok := f.keys[keyID]; ok {
		f.mu.Unlock()
		return key, nil
	}
	f.mu.Unlock()

	if err := f.refresh(ctx); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	key, ok := f.keys[keyID]
	if !ok {
		return nil, fmt.Errorf("auth: key id %q not present in key set", keyID)
	}
	return key, nil
}

func (f *HTTPKeySetFetcher) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.uri, nil)
	if err != nil {
		return fmt.Errorf("auth: building key set request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth: fetching key set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth: key set endpoint returned %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("auth: decoding key set: %w", err)
	}

	parsed := make(map[string]crypto.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" {
			continue
		}
		pub, err := rsaPublicKeyFromJWK(k)
		if err != nil {
			continue
		}
		parsed[k.Kid] = pub
	}

	f.mu.Lock()
	for kid, key := range parsed {
		f.keys[kid] = key
	}
	f.mu.Unlock()
	return nil
}

func rsaPublicKeyFromJWK(k jwk) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}
