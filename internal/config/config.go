package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duplicate submission policies.
const (
	DuplicateAllow  = "allow"
	DuplicateReject = "reject"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
		Mode string `yaml:"mode"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL             string `yaml:"ttl"`
		DuplicatePolicy string `yaml:"duplicate_policy"`
	} `yaml:"quiz"`
	Trivia struct {
		BaseURL     string `yaml:"base_url"`
		Timeout     string `yaml:"timeout"`
		MinInterval string `yaml:"min_interval"`
	} `yaml:"trivia"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings that would otherwise be silently ignored.
func (c Config) Validate() error {
	switch c.Quiz.DuplicatePolicy {
	case "", DuplicateAllow, DuplicateReject:
	default:
		return fmt.Errorf("quiz.duplicate_policy: unknown policy %q", c.Quiz.DuplicatePolicy)
	}
	return nil
}

// RejectDuplicates reports whether repeated answers to a question should be refused.
func (c Config) RejectDuplicates() bool {
	return c.Quiz.DuplicatePolicy == DuplicateReject
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
