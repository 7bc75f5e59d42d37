package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Keepalive      string   `yaml:"keepalive" env:"SERVER_KEEPALIVE"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`
	Redis struct {
		Addr         string `yaml:"addr" env:"REDIS_ADDR"`
		Password     string `yaml:"password" env:"REDIS_PASSWORD"`
		DB           int    `yaml:"db" env:"REDIS_DB"`
		JournalLimit int64  `yaml:"journal_limit" env:"REDIS_JOURNAL_LIMIT"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url" env:"POSTGRES_URL"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl" env:"QUIZ_TTL"`
	} `yaml:"quiz"`
	Engine struct {
		Retention        string `yaml:"retention" env:"ENGINE_RETENTION"`
		SweepInterval    string `yaml:"sweep_interval" env:"ENGINE_SWEEP_INTERVAL"`
		AnswerGrace      string `yaml:"answer_grace" env:"ENGINE_ANSWER_GRACE"`
		MaxParticipants  int    `yaml:"max_participants" env:"ENGINE_MAX_PARTICIPANTS"`
		SubscriberBuffer int    `yaml:"subscriber_buffer" env:"ENGINE_SUBSCRIBER_BUFFER"`
		JournalBuffer    int    `yaml:"journal_buffer" env:"ENGINE_JOURNAL_BUFFER"`
	} `yaml:"engine"`
	NATS struct {
		URL           string `yaml:"url" env:"NATS_URL"`
		SubjectPrefix string `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX"`
	} `yaml:"nats"`
	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
	} `yaml:"log"`
}

// Load reads YAML config from path, then applies environment overrides.
// A missing file is not an error; the service then runs on env and defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}

// Int returns v, or fallback when v is not positive.
func Int(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}
