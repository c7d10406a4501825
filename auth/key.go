package auth

import "sync"

// KeyValidator performs membership checks against a small,
// operator-configured sequence of shared keys. The sequence permits
// operator-driven rotation without downtime: Rotate swaps the slice under
// lock, in-flight validations against the old or new slice are both
// honored consistently (no torn reads).
type KeyValidator struct {
	mu   sync.RWMutex
	keys []string
}

// NewKeyValidator creates a KeyValidator from an initial key sequence.
func NewKeyValidator(keys []string) *KeyValidator {
	cp := make([]string, len(keys))
	copy(cp, keys)
	return &KeyValidator{keys: cp}
}

// Validate returns nil if key is present anywhere in the configured
// sequence (a small, operator-controlled set — linear search is
// appropriate per spec.md §4.3).
func (v *KeyValidator) Validate(key string) error {
	if key == "" {
		return &NotAuthenticatedError{Reason: "empty key"}
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, k := range v.keys {
		if k == key {
			return nil
		}
	}
	return &NotAuthenticatedError{Reason: "key not recognized"}
}

// Rotate replaces the configured key sequence.
func (v *KeyValidator) Rotate(keys []string) {
	cp := make([]string, len(keys))
	copy(cp, keys)
	v.mu.Lock()
	v.keys = cp
	v.mu.Unlock()
}
