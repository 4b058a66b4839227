package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/lehigh-university-libraries/yolosplit/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given and the file exists
const DefaultPath = "yolosplit.yaml"

// Config holds the defaults every command starts from
type Config struct {
	Ratios      models.SplitRatios `yaml:"ratios"`
	Seed        int64              `yaml:"seed"`
	Unmatched   string             `yaml:"unmatched"` // warn or silent
	WorkDir     string             `yaml:"workdir"`   // parent for per-run temp dirs; empty = os.TempDir()
	LogLevel    string             `yaml:"log_level"`
	LogFormat   string             `yaml:"log_format"`
	Port        string             `yaml:"port"`
	MaxUploadMB int64              `yaml:"max_upload_mb"`
	JobTTL      time.Duration      `yaml:"job_ttl"` // served jobs older than this are removed; 0 keeps them
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Ratios:      models.DefaultRatios,
		Seed:        42,
		Unmatched:   "warn",
		LogLevel:    "info",
		LogFormat:   "text",
		Port:        "8888",
		MaxUploadMB: 512,
		JobTTL:      24 * time.Hour,
	}
}

// Load reads path on top of the defaults, then applies environment overrides.
// A missing file is an error only when explicit is true.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("YOLOSPLIT_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid YOLOSPLIT_SEED %q: %w", v, err)
		}
		c.Seed = seed
	}
	if v := os.Getenv("YOLOSPLIT_WORKDIR"); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv("YOLOSPLIT_UNMATCHED"); v != "" {
		c.Unmatched = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("YOLOSPLIT_JOB_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid YOLOSPLIT_JOB_TTL %q: %w", v, err)
		}
		c.JobTTL = ttl
	}
	return nil
}
