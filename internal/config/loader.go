// Package config loads and validates the service's YAML configuration.
//
// Secret values reference environment variables with ${VAR} placeholders,
// expanded at load time. An unresolved placeholder in a required secret
// field fails validation so a misconfigured deployment refuses to start
// rather than running with a literal "${...}" secret.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads and parses configuration from a YAML file, expands environment
// variable references, applies defaults, and validates the result.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} references with environment values. Unset
// variables are left as-is so validation can point at the exact field.
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

func applyDefaults(cfg *Config) {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "INFO"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Ingest.Path == "" {
		cfg.Ingest.Path = DefaultIngestPath
	}
	if cfg.Auth.MaxSkewMS == 0 {
		cfg.Auth.MaxSkewMS = DefaultMaxSkewMS
	}
	if cfg.Auth.ReplayGuard == nil {
		enabled := true
		cfg.Auth.ReplayGuard = &enabled
	}
}

func validate(cfg *Config) error {
	if cfg.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if err := checkResolved("auth.api_key", cfg.Auth.APIKey); err != nil {
		return err
	}
	if cfg.Auth.SharedSecret == "" {
		return fmt.Errorf("auth.shared_secret is required")
	}
	if err := checkResolved("auth.shared_secret", cfg.Auth.SharedSecret); err != nil {
		return err
	}
	if cfg.Auth.MaxSkewMS < 0 {
		return fmt.Errorf("auth.max_skew_ms must not be negative")
	}
	if !strings.HasPrefix(cfg.Ingest.Path, "/") {
		return fmt.Errorf("ingest.path must start with /")
	}
	if _, err := ParseMaxBodySize(cfg.Ingest.MaxBodySize); err != nil {
		return fmt.Errorf("ingest.max_body_size: %w", err)
	}
	if format := strings.ToLower(cfg.Log.Format); format != "json" && format != "console" {
		return fmt.Errorf("log.format must be json or console, got %q", cfg.Log.Format)
	}
	return nil
}

// checkResolved rejects secret fields whose ${VAR} reference did not resolve.
func checkResolved(field, value string) error {
	if envVarPattern.MatchString(value) {
		matches := envVarPattern.FindStringSubmatch(value)
		if len(matches) > 1 {
			return fmt.Errorf("%s: environment variable ${%s} is not set", field, matches[1])
		}
		return fmt.Errorf("%s: unresolved environment variable", field)
	}
	return nil
}

// ParseMaxBodySize parses size strings like "1MB", "256KB", or "262144" to
// bytes. Returns the default when empty.
func ParseMaxBodySize(size string) (int64, error) {
	if size == "" {
		return 1 << 20, nil
	}

	upper := strings.ToUpper(size)
	multiplier := int64(1)

	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		upper = strings.TrimSuffix(upper, "KB")
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		upper = strings.TrimSuffix(upper, "MB")
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		upper = strings.TrimSuffix(upper, "GB")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(upper), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value: %w", err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("size must be positive")
	}

	result := value * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size too large")
	}
	return result, nil
}
