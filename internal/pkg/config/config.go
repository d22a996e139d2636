package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalid = errors.New("invalid config")

type FallbackMode string

const (
	FallbackSeed          FallbackMode = "seed"
	FallbackLastKnownGood FallbackMode = "last_known_good"
)

type Config struct {
	RemoteCfg    RemoteConfig
	PollCfg      PollConfig
	MqttCfg      MqttConfig   `envPrefix:"MQTT_"`
	ListenAddr   string       `env:"LISTEN_ADDR" envDefault:"0.0.0.0:8000"`
	LogLevel     string       `env:"LOG_LEVEL" envDefault:"INFO"`
	FallbackMode FallbackMode `env:"FALLBACK_MODE" envDefault:"seed"`
}

type RemoteConfig struct {
	// BaseURL is the remote dashboard API, the local development backend by default.
	BaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:3000/api"`
	Timeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"15s"`
}

type PollConfig struct {
	DevicesInterval time.Duration `env:"DEVICES_POLL_INTERVAL" envDefault:"5s"`
	EventsInterval  time.Duration `env:"EVENTS_POLL_INTERVAL" envDefault:"4s"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT" envDefault:"10s"`
}

type MqttConfig struct {
	Host        string `env:"HOST"`
	Username    string `env:"USER"`
	Password    string `env:"PASS"`
	TopicPrefix string `env:"TOPIC_PREFIX" envDefault:"homedash"`
}

// Enabled reports whether state should be mirrored to a broker.
func (c MqttConfig) Enabled() bool {
	return c.Host != ""
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.RemoteCfg.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: api base url: %w", ErrInvalid, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: api base url %q must be http or https", ErrInvalid, c.RemoteCfg.BaseURL)
	}
	for name, d := range map[string]time.Duration{
		"devices poll interval": c.PollCfg.DevicesInterval,
		"events poll interval":  c.PollCfg.EventsInterval,
		"fetch timeout":         c.PollCfg.FetchTimeout,
		"http client timeout":   c.RemoteCfg.Timeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, name, d)
		}
	}
	switch c.FallbackMode {
	case FallbackSeed, FallbackLastKnownGood:
	default:
		return fmt.Errorf("%w: unknown fallback mode %q", ErrInvalid, c.FallbackMode)
	}
	return nil
}
