package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Events    EventsConfig    `yaml:"events"`
	Matching  MatchingConfig  `yaml:"matching"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	AdminToken  string `yaml:"admin_token"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type EventsConfig struct {
	URL             string `yaml:"url"`
	MaxReconnects   int    `yaml:"max_reconnects"`
	ReconnectWaitMs int    `yaml:"reconnect_wait_ms"`
}

func (e EventsConfig) ReconnectWait() time.Duration {
	return time.Duration(e.ReconnectWaitMs) * time.Millisecond
}

type MatchingConfig struct {
	Weights             MatchingWeights `yaml:"weights"`
	MaxExecutionTimeMs  int             `yaml:"max_execution_time_ms"`
	MinMatchThreshold   float64         `yaml:"min_match_threshold"`
	MaxCandidatesPerRun int             `yaml:"max_candidates_per_run"`
	DefaultMaxResults   int             `yaml:"default_max_results"`
}

type MatchingWeights struct {
	Budget    float64 `yaml:"budget"`
	Location  float64 `yaml:"location"`
	Amenities float64 `yaml:"amenities"`
	Size      float64 `yaml:"size"`
	Features  float64 `yaml:"features"`
	Utilities float64 `yaml:"utilities"`
}

type TelemetryConfig struct {
	HistoryCapacity int `yaml:"history_capacity"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) MaxExecutionTime() time.Duration {
	return time.Duration(c.Matching.MaxExecutionTimeMs) * time.Millisecond
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Events: EventsConfig{
			URL:             "nats://localhost:4222",
			MaxReconnects:   60,
			ReconnectWaitMs: 2000,
		},
		Matching: MatchingConfig{
			Weights: MatchingWeights{
				Budget:    0.30,
				Location:  0.25,
				Amenities: 0.15,
				Size:      0.10,
				Features:  0.10,
				Utilities: 0.10,
			},
			MaxExecutionTimeMs:  30000,
			MinMatchThreshold:   30,
			MaxCandidatesPerRun: 200,
			DefaultMaxResults:   10,
		},
		Telemetry: TelemetryConfig{
			HistoryCapacity: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("MATCHMAKER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("MATCHMAKER_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("MATCHMAKER_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("MATCHMAKER_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("MATCHMAKER_EVENTS_URL"); v != "" {
		cfg.Events.URL = v
	}
	if v := os.Getenv("MATCHMAKER_MAX_EXECUTION_TIME_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Matching.MaxExecutionTimeMs = n
		}
	}
	if v := os.Getenv("MATCHMAKER_MIN_MATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Matching.MinMatchThreshold = f
		}
	}
	if v := os.Getenv("MATCHMAKER_MAX_CANDIDATES_PER_RUN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Matching.MaxCandidatesPerRun = n
		}
	}
	if v := os.Getenv("MATCHMAKER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
