package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlDoc mirrors Config's shape for on-disk parsing; kept separate from
// Config so yaml struct tags don't leak into FromMap/ToMap's json-tagged
// wire shape.
type yamlDoc struct {
	Transport struct {
		Enabled                     bool `yaml:"enabled"`
		Port                        int  `yaml:"port"`
		MaxInboundMessageSize       int  `yaml:"max_inbound_message_size"`
		MaxConcurrentCallsPerConn   int  `yaml:"max_concurrent_calls_per_connection"`
		KeepaliveTimeSeconds        int  `yaml:"keepalive_time_seconds"`
		KeepaliveTimeoutSeconds     int  `yaml:"keepalive_timeout_seconds"`
		PermitKeepaliveWithoutCalls bool `yaml:"permit_keepalive_without_calls"`
		MaxConnectionIdleSeconds    int  `yaml:"max_connection_idle_seconds"`
		MaxConnectionAgeSeconds     int  `yaml:"max_connection_age_seconds"`
		EnableReflection            bool `yaml:"enable_reflection"`
	} `yaml:"transport"`
	Security struct {
		Enabled bool `yaml:"enabled"`
		Token   struct {
			Enabled          bool     `yaml:"enabled"`
			Issuer           string   `yaml:"issuer"`
			KeySetURI        string   `yaml:"key_set_uri"`
			Audience         []string `yaml:"audience"`
			CacheTTLSeconds  int      `yaml:"token_cache_ttl_seconds"`
			ClockSkewSeconds int      `yaml:"clock_skew_seconds"`
		} `yaml:"token"`
		Key struct {
			Enabled    bool     `yaml:"enabled"`
			Keys       []string `yaml:"keys"`
			HeaderName string   `yaml:"key_header_name"`
		} `yaml:"key"`
	} `yaml:"security"`
}

// LoadYAML reads a Config from a YAML file on disk — the on-disk startup
// path a standalone binary needs that the teacher's own config package
// doesn't, since it is populated by an external bootstrap instead.
func LoadYAML(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var doc yamlDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	c := DefaultConfig()
	c.Transport.Enabled = doc.Transport.Enabled
	if doc.Transport.Port != 0 {
		c.Transport.Port = doc.Transport.Port
	}
	if doc.Transport.MaxInboundMessageSize != 0 {
		c.Transport.MaxInboundMessageSize = doc.Transport.MaxInboundMessageSize
	}
	c.Transport.MaxConcurrentCallsPerConn = doc.Transport.MaxConcurrentCallsPerConn
	c.Transport.PermitKeepaliveWithoutCalls = doc.Transport.PermitKeepaliveWithoutCalls
	c.Transport.EnableReflection = doc.Transport.EnableReflection
	if doc.Transport.KeepaliveTimeSeconds != 0 {
		c.Transport.KeepaliveTime = secondsToDuration(doc.Transport.KeepaliveTimeSeconds)
	}
	if doc.Transport.KeepaliveTimeoutSeconds != 0 {
		c.Transport.KeepaliveTimeout = secondsToDuration(doc.Transport.KeepaliveTimeoutSeconds)
	}
	c.Transport.MaxConnectionIdle = secondsToDuration(doc.Transport.MaxConnectionIdleSeconds)
	c.Transport.MaxConnectionAge = secondsToDuration(doc.Transport.MaxConnectionAgeSeconds)

	c.Security.Enabled = doc.Security.Enabled
	c.Security.Token.Enabled = doc.Security.Token.Enabled
	c.Security.Token.Issuer = doc.Security.Token.Issuer
	c.Security.Token.KeySetURI = doc.Security.Token.KeySetURI
	c.Security.Token.Audience = doc.Security.Token.Audience
	if doc.Security.Token.CacheTTLSeconds != 0 {
		c.Security.Token.CacheTTL = secondsToDuration(doc.Security.Token.CacheTTLSeconds)
	}
	if doc.Security.Token.ClockSkewSeconds != 0 {
		c.Security.Token.ClockSkew = secondsToDuration(doc.Security.Token.ClockSkewSeconds)
	}
	c.Security.Key.Enabled = doc.Security.Key.Enabled
	c.Security.Key.Keys = doc.Security.Key.Keys
	if doc.Security.Key.HeaderName != "" {
		c.Security.Key.HeaderName = doc.Security.Key.HeaderName
	}

	return c, nil
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
