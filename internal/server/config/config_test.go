package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pollcmd/internal/server/controller"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "::", cfg.Listen.Host)
	assert.Equal(t, 5353, cfg.Listen.Port)
	assert.Equal(t, 200*time.Millisecond, cfg.Listen.PollWait)
	assert.Equal(t, 2048, cfg.Listen.BufferSize)
	assert.Equal(t, controller.DefaultClientOS, cfg.Client.DefaultOS)
	assert.False(t, cfg.API.Enabled)
	assert.Equal(t, "127.0.0.1:8080", cfg.API.Address)
	assert.True(t, cfg.Console.Color)
	assert.True(t, cfg.Log.Console)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
listen:
  host: 127.0.0.1
  port: 7000
  poll_wait: 50ms
client:
  default_os: linux
api:
  enabled: true
  address: 0.0.0.0:9090
console:
  color: false
`))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Listen.Host)
	assert.Equal(t, 7000, cfg.Listen.Port)
	assert.Equal(t, 50*time.Millisecond, cfg.Listen.PollWait)
	assert.Equal(t, "linux", cfg.Client.DefaultOS)
	assert.True(t, cfg.API.Enabled)
	assert.Equal(t, "0.0.0.0:9090", cfg.API.Address)
	assert.False(t, cfg.Console.Color)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("POLLCMD_LISTEN_PORT", "6001")
	cfg, err := LoadConfig(writeConfig(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, 6001, cfg.Listen.Port)
}

func TestLoadConfigInvalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"bad host", "listen:\n  host: not-an-ip\n"},
		{"port out of range", "listen:\n  port: 70000\n"},
		{"zero poll wait", "listen:\n  poll_wait: 0s\n"},
		{"bad api address", "api:\n  enabled: true\n  address: nowhere\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
