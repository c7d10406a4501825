package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 50051, c.Transport.Port)
	assert.True(t, c.Security.Enabled)
	assert.False(t, c.Security.Token.Enabled)
}

func TestFromMapOverridesOnlyPresentKeys(t *testing.T) {
	c := FromMap(map[string]any{
		"transport": map[string]any{
			"port": float64(9090),
		},
		"security": map[string]any{
			"enabled": false,
			"token": map[string]any{
				"enabled": true,
				"issuer":  "https://issuer.example",
			},
		},
	})

	assert.Equal(t, 9090, c.Transport.Port)
	assert.Equal(t, 4<<20, c.Transport.MaxInboundMessageSize) // untouched default
	assert.False(t, c.Security.Enabled)
	assert.True(t, c.Security.Token.Enabled)
	assert.Equal(t, "https://issuer.example", c.Security.Token.Issuer)
}

func TestToMapRoundTrip(t *testing.T) {
	c := DefaultConfig()
	c.Security.Key.Keys = []string{"a", "b"}
	m := c.ToMap()

	c2 := FromMap(m)
	assert.Equal(t, c.Transport.Port, c2.Transport.Port)
	assert.Equal(t, []string{"a", "b"}, c2.Security.Key.Keys)
}

func TestGlobalSingleton(t *testing.T) {
	defer Reset()

	Reset()
	assert.Equal(t, DefaultConfig().Transport.Port, Get().Transport.Port)

	custom := DefaultConfig()
	custom.Transport.Port = 1234
	Set(custom)
	assert.Equal(t, 1234, Get().Transport.Port)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
transport:
  enabled: true
  port: 9000
  keepalive_time_seconds: 30
security:
  enabled: true
  token:
    enabled: true
    issuer: https://issuer.example
    audience: ["exposerpc"]
    token_cache_ttl_seconds: 60
  key:
    enabled: true
    keys: ["k1", "k2"]
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	c, err := LoadYAML(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, c.Transport.Port)
	assert.Equal(t, 30*time.Second, c.Transport.KeepaliveTime)
	assert.True(t, c.Security.Token.Enabled)
	assert.Equal(t, []string{"exposerpc"}, c.Security.Token.Audience)
	assert.Equal(t, 60*time.Second, c.Security.Token.CacheTTL)
	assert.Equal(t, []string{"k1", "k2"}, c.Security.Key.Keys)
}

func TestLoadYAMLMissingFile(t *testing.T) {
	_, err := LoadYAML("/nonexistent/path/config.yaml")
	require.Error(t, err)
}
