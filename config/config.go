// Package config loads the timer's settings from an optional YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPipe        = "/tmp/focotimer.pipe"
	DefaultNATSSubject = "pomodoro.events.completed"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Duration time.Duration `yaml:"duration"`
	Message  string        `yaml:"message"`
	LogLevel string        `yaml:"log_level"`
	Polybar  PolybarConfig `yaml:"polybar"`
	Notify   NotifyConfig  `yaml:"notify"`
}

type PolybarConfig struct {
	Pipe string `yaml:"pipe"`
}

type NotifyConfig struct {
	Desktop bool       `yaml:"desktop"`
	Log     bool       `yaml:"log"`
	NATS    NATSConfig `yaml:"nats"`
}

// NATSConfig enables the NATS sink when URL is set.
type NATSConfig struct {
	URL           string        `yaml:"url"`
	Subject       string        `yaml:"subject"`
	MaxReconnects int           `yaml:"max_reconnects"`
	ReconnectWait time.Duration `yaml:"reconnect_wait"`
}

func Default() *Config {
	return &Config{
		Duration: 25 * time.Minute,
		Message:  "🎉 Pomodoro Concluído!",
		LogLevel: "info",
		Polybar: PolybarConfig{
			Pipe: DefaultPipe,
		},
		Notify: NotifyConfig{
			Desktop: true,
			Log:     true,
			NATS: NATSConfig{
				Subject:       DefaultNATSSubject,
				MaxReconnects: -1,
				ReconnectWait: 2 * time.Second,
			},
		},
	}
}

// Load reads path on top of the defaults, then applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("POMODORO_DURATION"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("POMODORO_DURATION: %w", err)
		}
		c.Duration = d
	}
	c.Message = getEnv("POMODORO_MESSAGE", c.Message)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Polybar.Pipe = getEnv("FOCOTIMER_PIPE", c.Polybar.Pipe)
	c.Notify.NATS.URL = getEnv("NATS_URL", c.Notify.NATS.URL)
	c.Notify.NATS.Subject = getEnv("NATS_SUBJECT", c.Notify.NATS.Subject)
	return nil
}

func (c *Config) Validate() error {
	if c.Duration < 0 {
		return fmt.Errorf("%w: negative duration %v", ErrInvalid, c.Duration)
	}
	if c.Duration%time.Second != 0 {
		return fmt.Errorf("%w: duration %v is not a whole number of seconds", ErrInvalid, c.Duration)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	if c.Notify.NATS.URL != "" && c.Notify.NATS.Subject == "" {
		return fmt.Errorf("%w: nats subject is required", ErrInvalid)
	}
	return nil
}

// Level is the parsed LogLevel. Validate guarantees it parses.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration accepts Go durations ("25m") and plain seconds ("1500").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
