// Package config loads runtime settings for the quizsrs CLI: a .env
// file (if present), QUIZSRS_* environment variables, and an optional
// YAML policy file for the spaced-repetition intervals. The core
// packages never read configuration themselves; the CLI resolves it
// here and passes plain values in.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"quizsrs/internal/services"
	"quizsrs/internal/utils"
)

// Config is everything the CLI needs at startup.
type Config struct {
	DBPath     string // sqlite database path; empty disables persistence
	PolicyPath string // SRS policy YAML; empty means stock intervals
	Policy     services.SRSPolicy
}

// Load reads .env (when present) and the QUIZSRS_* environment, then
// resolves the SRS policy file if one is configured.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:     utils.SafeEnv("QUIZSRS_DB", ""),
		PolicyPath: utils.SafeEnv("QUIZSRS_SRS_POLICY", ""),
		Policy:     services.DefaultSRSPolicy(),
	}
	if cfg.PolicyPath != "" {
		policy, err := LoadPolicy(cfg.PolicyPath)
		if err != nil {
			return nil, err
		}
		cfg.Policy = policy
	}
	return cfg, nil
}

// policyFile is the on-disk shape: intervals as Go duration strings
// ("30s", "10m"). Absent fields keep their defaults.
type policyFile struct {
	FirstInterval  string `yaml:"first_interval"`
	RepeatInterval string `yaml:"repeat_interval"`
	RetryInterval  string `yaml:"retry_interval"`
}

// LoadPolicy reads an SRS policy YAML file. Fields left empty fall back
// to the stock intervals.
func LoadPolicy(path string) (services.SRSPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return services.SRSPolicy{}, fmt.Errorf("read srs policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes policy YAML.
func ParsePolicy(data []byte) (services.SRSPolicy, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return services.SRSPolicy{}, fmt.Errorf("decode srs policy: %w", err)
	}
	policy := services.DefaultSRSPolicy()
	set := func(dst *time.Duration, raw, field string) error {
		if raw == "" {
			return nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("srs policy %s: %w", field, err)
		}
		if d <= 0 {
			return fmt.Errorf("srs policy %s: %v is not positive", field, d)
		}
		*dst = d
		return nil
	}
	if err := set(&policy.FirstInterval, pf.FirstInterval, "first_interval"); err != nil {
		return services.SRSPolicy{}, err
	}
	if err := set(&policy.RepeatInterval, pf.RepeatInterval, "repeat_interval"); err != nil {
		return services.SRSPolicy{}, err
	}
	if err := set(&policy.RetryInterval, pf.RetryInterval, "retry_interval"); err != nil {
		return services.SRSPolicy{}, err
	}
	return policy, nil
}
