// Package config holds the nested transport/security configuration surface
// of spec.md §6, read at startup and exposed as a process-wide singleton —
// grounded on coreengine/config/core_config.go's global-singleton shape.
package config

import (
	"sync"
	"time"
)

// TransportConfig tunes the gRPC connection lifecycle; zero values mean
// "unlimited", passed straight through to the transport builder.
type TransportConfig struct {
	Enabled                      bool          `json:"enabled"`
	Port                         int           `json:"port"`
	MaxInboundMessageSize        int           `json:"max_inbound_message_size"`
	MaxConcurrentCallsPerConn    int           `json:"max_concurrent_calls_per_connection"`
	KeepaliveTime                time.Duration `json:"keepalive_time"`
	KeepaliveTimeout             time.Duration `json:"keepalive_timeout"`
	PermitKeepaliveWithoutCalls  bool          `json:"permit_keepalive_without_calls"`
	MaxConnectionIdle            time.Duration `json:"max_connection_idle"`
	MaxConnectionAge             time.Duration `json:"max_connection_age"`
	EnableReflection             bool          `json:"enable_reflection"`
}

// TokenFamilyConfig configures TOKEN_ONLY/EITHER bearer-token validation.
type TokenFamilyConfig struct {
	Enabled   bool          `json:"enabled"`
	Issuer    string        `json:"issuer"`
	KeySetURI string        `json:"key_set_uri"`
	Audience  []string      `json:"audience"`
	CacheTTL  time.Duration `json:"token_cache_ttl"`
	ClockSkew time.Duration `json:"clock_skew"`
}

// KeyFamilyConfig configures KEY_ONLY/EITHER shared-key validation.
type KeyFamilyConfig struct {
	Enabled   bool     `json:"enabled"`
	Keys      []string `json:"keys"`
	HeaderName string  `json:"key_header_name"`
}

// SecurityConfig is the global security surface: an operator off-switch
// plus the two credential families.
type SecurityConfig struct {
	Enabled bool              `json:"enabled"`
	Token   TokenFamilyConfig `json:"token"`
	Key     KeyFamilyConfig   `json:"key"`
}

// Config is the full nested configuration surface read at startup.
type Config struct {
	Transport TransportConfig `json:"transport"`
	Security  SecurityConfig  `json:"security"`
}

// DefaultConfig returns a Config with conservative, spec-compliant defaults.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Enabled:                     true,
			Port:                        50051,
			MaxInboundMessageSize:       4 << 20,
			MaxConcurrentCallsPerConn:   0,
			KeepaliveTime:               2 * time.Hour,
			KeepaliveTimeout:            20 * time.Second,
			PermitKeepaliveWithoutCalls: false,
			MaxConnectionIdle:           0,
			MaxConnectionAge:            0,
			EnableReflection:            false,
		},
		Security: SecurityConfig{
			Enabled: true,
			Token: TokenFamilyConfig{
				Enabled:   false,
				CacheTTL:  5 * time.Minute,
				ClockSkew: 30 * time.Second,
			},
			Key: KeyFamilyConfig{
				Enabled:    false,
				HeaderName: "x-api-key",
			},
		},
	}
}

// FromMap builds a Config from a generic map, starting from defaults and
// overriding only the keys present — unknown keys are ignored, matching
// core_config.go's FromMap convention.
func FromMap(m map[string]any) *Config {
	c := DefaultConfig()

	if t, ok := m["transport"].(map[string]any); ok {
		if v, ok := t["enabled"].(bool); ok {
			c.Transport.Enabled = v
		}
		if v, ok := asInt(t["port"]); ok {
			c.Transport.Port = v
		}
		if v, ok := asInt(t["max_inbound_message_size"]); ok {
			c.Transport.MaxInboundMessageSize = v
		}
		if v, ok := asInt(t["max_concurrent_calls_per_connection"]); ok {
			c.Transport.MaxConcurrentCallsPerConn = v
		}
		if v, ok := t["enable_reflection"].(bool); ok {
			c.Transport.EnableReflection = v
		}
	}

	if s, ok := m["security"].(map[string]any); ok {
		if v, ok := s["enabled"].(bool); ok {
			c.Security.Enabled = v
		}
		if tok, ok := s["token"].(map[string]any); ok {
			if v, ok := tok["enabled"].(bool); ok {
				c.Security.Token.Enabled = v
			}
			if v, ok := tok["issuer"].(string); ok {
				c.Security.Token.Issuer = v
			}
			if v, ok := tok["key_set_uri"].(string); ok {
				c.Security.Token.KeySetURI = v
			}
			if v, ok := tok["audience"].([]any); ok {
				c.Security.Token.Audience = toStringSlice(v)
			} else if v, ok := tok["audience"].([]string); ok {
				c.Security.Token.Audience = append([]string(nil), v...)
			}
		}
		if key, ok := s["key"].(map[string]any); ok {
			if v, ok := key["enabled"].(bool); ok {
				c.Security.Key.Enabled = v
			}
			if v, ok := key["keys"].([]any); ok {
				c.Security.Key.Keys = toStringSlice(v)
			} else if v, ok := key["keys"].([]string); ok {
				c.Security.Key.Keys = append([]string(nil), v...)
			}
			if v, ok := key["key_header_name"].(string); ok {
				c.Security.Key.HeaderName = v
			}
		}
	}

	return c
}

// ToMap converts c to a generic map, the inverse of FromMap.
func (c *Config) ToMap() map[string]any {
	return map[string]any{
		"transport": map[string]any{
			"enabled":                             c.Transport.Enabled,
			"port":                                c.Transport.Port,
			"max_inbound_message_size":            c.Transport.MaxInboundMessageSize,
			"max_concurrent_calls_per_connection":  c.Transport.MaxConcurrentCallsPerConn,
			"enable_reflection":                   c.Transport.EnableReflection,
		},
		"security": map[string]any{
			"enabled": c.Security.Enabled,
			"token": map[string]any{
				"enabled":     c.Security.Token.Enabled,
				"issuer":      c.Security.Token.Issuer,
				"key_set_uri": c.Security.Token.KeySetURI,
				"audience":    c.Security.Token.Audience,
			},
			"key": map[string]any{
				"enabled":         c.Security.Key.Enabled,
				"keys":            c.Security.Key.Keys,
				"key_header_name": c.Security.Key.HeaderName,
			},
		},
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func toStringSlice(v []any) []string {
	out := make([]string, 0, len(v))
	for _, e := range v {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

var (
	global   *Config
	globalMu sync.RWMutex
)

// Get returns the process-wide configuration, or DefaultConfig() if Set was
// never called.
func Get() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if global == nil {
		return DefaultConfig()
	}
	return global
}

// Set installs the process-wide configuration, called once during startup.
func Set(c *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = c
}

// Reset clears the process-wide configuration; Get() reverts to defaults.
// Intended for tests.
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = nil
}
