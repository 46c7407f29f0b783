// Package config loads the workspace configuration from
// .compaudit/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/storage"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFile = "config.yaml"

	// DocumentEnv overrides the configured document export.
	DocumentEnv = "COMPAUDIT_DOCUMENT"
)

// Config stores workspace defaults. Durations are written as "200ms", "1s".
type Config struct {
	Document        string        `yaml:"document,omitempty"`
	DefaultScope    scan.Scope    `yaml:"default_scope,omitempty"`
	PageDelay       time.Duration `yaml:"page_delay"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	QuickClearDelay time.Duration `yaml:"quick_clear_delay"`
	DeepClearDelay  time.Duration `yaml:"deep_clear_delay"`
	PageTimeout     time.Duration `yaml:"page_timeout"`
	WatchDebounce   time.Duration `yaml:"watch_debounce"`
	LogLevel        string        `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	opts := application.DefaultScanOptions()
	return &Config{
		DefaultScope:    scan.ScopeCurrentPage,
		PageDelay:       opts.PageDelay,
		SettleDelay:     opts.SettleDelay,
		QuickClearDelay: opts.QuickClearDelay,
		DeepClearDelay:  opts.DeepClearDelay,
		PageTimeout:     opts.PageTimeout,
		WatchDebounce:   500 * time.Millisecond,
		LogLevel:        "warn",
	}
}

// Path returns the config file location under root.
func Path(root string) string {
	return filepath.Join(root, storage.AuditDir, ConfigFile)
}

// Load reads the config under root, falling back to Default for a missing
// file and for missing keys. The document env var wins over the file.
func Load(root string) (*Config, error) {
	cfg := Default()

	// #nosec G304 -- Path is under the workspace root
	data, err := os.ReadFile(Path(root))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if doc := strings.TrimSpace(os.Getenv(DocumentEnv)); doc != "" {
		cfg.Document = doc
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	path := Path(root)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) Validate() error {
	switch c.DefaultScope {
	case "", scan.ScopeCurrentPage, scan.ScopeAllPages:
	default:
		return fmt.Errorf("invalid default_scope %q: want %q or %q", c.DefaultScope, scan.ScopeCurrentPage, scan.ScopeAllPages)
	}
	for name, d := range map[string]time.Duration{
		"page_delay":        c.PageDelay,
		"settle_delay":      c.SettleDelay,
		"quick_clear_delay": c.QuickClearDelay,
		"deep_clear_delay":  c.DeepClearDelay,
		"page_timeout":      c.PageTimeout,
		"watch_debounce":    c.WatchDebounce,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// ScanOptions maps the config onto the scan service options.
func (c *Config) ScanOptions() application.ScanOptions {
	return application.ScanOptions{
		PageDelay:       c.PageDelay,
		SettleDelay:     c.SettleDelay,
		QuickClearDelay: c.QuickClearDelay,
		DeepClearDelay:  c.DeepClearDelay,
		PageTimeout:     c.PageTimeout,
	}
}

// DocumentPath resolves the export path against root.
func (c *Config) DocumentPath(root string) string {
	if c.Document == "" || filepath.IsAbs(c.Document) {
		return c.Document
	}
	return filepath.Join(root, c.Document)
}
