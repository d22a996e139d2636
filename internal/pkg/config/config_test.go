package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api", cfg.RemoteCfg.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.RemoteCfg.Timeout)
	assert.Equal(t, 5*time.Second, cfg.PollCfg.DevicesInterval)
	assert.Equal(t, 4*time.Second, cfg.PollCfg.EventsInterval)
	assert.Equal(t, 10*time.Second, cfg.PollCfg.FetchTimeout)
	assert.Equal(t, "0.0.0.0:8000", cfg.ListenAddr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, FallbackSeed, cfg.FallbackMode)
	assert.Equal(t, "homedash", cfg.MqttCfg.TopicPrefix)
	assert.False(t, cfg.MqttCfg.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://home.example.com/api")
	t.Setenv("DEVICES_POLL_INTERVAL", "1500ms")
	t.Setenv("FALLBACK_MODE", "last_known_good")
	t.Setenv("MQTT_HOST", "tcp://broker:1883")
	t.Setenv("MQTT_TOPIC_PREFIX", "house")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "https://home.example.com/api", cfg.RemoteCfg.BaseURL)
	assert.Equal(t, 1500*time.Millisecond, cfg.PollCfg.DevicesInterval)
	assert.Equal(t, FallbackLastKnownGood, cfg.FallbackMode)
	assert.True(t, cfg.MqttCfg.Enabled())
	assert.Equal(t, "house", cfg.MqttCfg.TopicPrefix)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("EVENTS_POLL_INTERVAL=9s\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("EVENTS_POLL_INTERVAL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9*time.Second, cfg.PollCfg.EventsInterval)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			RemoteCfg:    RemoteConfig{BaseURL: "http://localhost:3000/api", Timeout: time.Second},
			PollCfg:      PollConfig{DevicesInterval: time.Second, EventsInterval: time.Second, FetchTimeout: time.Second},
			FallbackMode: FallbackSeed,
		}
	}
	tests := map[string]struct {
		mutate  func(c *Config)
		wantErr bool
	}{
		"valid": {
			mutate: func(c *Config) {},
		},
		"ftp base url": {
			mutate:  func(c *Config) { c.RemoteCfg.BaseURL = "ftp://nas/api" },
			wantErr: true,
		},
		"unparseable base url": {
			mutate:  func(c *Config) { c.RemoteCfg.BaseURL = "http://[::1" },
			wantErr: true,
		},
		"zero devices interval": {
			mutate:  func(c *Config) { c.PollCfg.DevicesInterval = 0 },
			wantErr: true,
		},
		"negative fetch timeout": {
			mutate:  func(c *Config) { c.PollCfg.FetchTimeout = -time.Second },
			wantErr: true,
		},
		"unknown fallback mode": {
			mutate:  func(c *Config) { c.FallbackMode = "cached" },
			wantErr: true,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
		})
	}
}
