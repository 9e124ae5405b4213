package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// DefaultPath is where the config file lives unless --config says otherwise
const DefaultPath = "~/.config/investorscout/config.toml"

var validProviders = map[string]bool{"brave": true, "google": true, "duckduckgo": true, "mock": true}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	// Expand path
	expandedPath, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}

	// Read file
	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run 'scout config init' to create): %w", expandedPath, err)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Parse TOML
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return finish(cfg)
}

// LoadOrDefault loads the config file, or the defaults if it does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return finish(Default())
	}
	return nil, err
}

func finish(cfg *Config) (*Config, error) {
	// Expand paths in config
	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}

// expandPaths expands ~ in all path fields
func (c *Config) expandPaths() error {
	var err error

	c.Database.Path, err = ExpandPath(c.Database.Path)
	if err != nil {
		return err
	}

	c.Search.CacheDir, err = ExpandPath(c.Search.CacheDir)
	if err != nil {
		return err
	}

	return nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}

	// Search validation
	if len(c.Search.Providers) == 0 {
		errs = append(errs, errors.New("search.providers must name at least one provider"))
	}
	for _, p := range c.Search.Providers {
		if !validProviders[p] {
			errs = append(errs, fmt.Errorf("search.providers: unknown provider '%s'", p))
		}
	}
	if c.Search.DelayMS < 0 {
		errs = append(errs, errors.New("search.delay_ms must not be negative"))
	}
	if c.Search.TimeoutSeconds < 1 {
		errs = append(errs, errors.New("search.timeout_seconds must be at least 1"))
	}
	if c.Search.Attempts < 1 || c.Search.Attempts > 5 {
		errs = append(errs, errors.New("search.attempts must be between 1 and 5"))
	}

	// Discovery validation
	if c.Discovery.MaxResults < 1 || c.Discovery.MaxResults > 100 {
		errs = append(errs, errors.New("discovery.max_results must be between 1 and 100"))
	}

	// Region validation
	if len(c.Region.Target) == 0 {
		errs = append(errs, errors.New("region.target must list at least one keyword"))
	}
	if len(c.Keywords.Identity) == 0 {
		errs = append(errs, errors.New("keywords.identity must list at least one keyword"))
	}

	// Verification validation
	if c.Verification.Workers < 1 || c.Verification.Workers > 64 {
		errs = append(errs, errors.New("verification.workers must be between 1 and 64"))
	}
	if c.Verification.ResultsPerQuery < 1 {
		errs = append(errs, errors.New("verification.results_per_query must be at least 1"))
	}
	if c.Verification.Cap <= 0 {
		errs = append(errs, errors.New("verification.cap must be positive"))
	}
	if c.Verification.GeoCap < 0 || c.Verification.LinkedInCap < 0 {
		errs = append(errs, errors.New("verification.geo_cap and linkedin_cap must not be negative"))
	}

	// Verdict validation
	if !c.Verdict.Formula.Valid() {
		errs = append(errs, fmt.Errorf("verdict.formula must be 'average' or 'sum', got '%s'", c.Verdict.Formula))
	}
	if c.Verdict.Good > c.Verdict.Great {
		errs = append(errs, errors.New("verdict.good must not exceed verdict.great"))
	}

	// Schedule validation
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedule.cron is invalid: %w", err))
		}
	}

	// Logging validation
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level must be debug, info, warn or error, got '%s'", c.Logging.Level))
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("logging.format must be 'text' or 'json', got '%s'", c.Logging.Format))
	}

	// MCP validation
	if c.MCP.Transport != "stdio" {
		errs = append(errs, fmt.Errorf("mcp.transport must be 'stdio', got '%s'", c.MCP.Transport))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// EnsureDirectories creates necessary directories for database and cache
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Database.Path),
		c.Search.CacheDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Marshal renders the config as TOML
func (c *Config) Marshal() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// WriteDefault writes the default config to path, refusing to overwrite
func WriteDefault(path string) (string, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand config path: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return expanded, fmt.Errorf("config file already exists at %s", expanded)
	}

	data, err := Default().Marshal()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	header := "# investorscout configuration\n# API keys may also come from BRAVE_API_KEY and GOOGLE_API_KEY.\n\n"
	if err := os.WriteFile(expanded, append([]byte(header), data...), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return expanded, nil
}
