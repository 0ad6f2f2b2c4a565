package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChamsBouzaiene/reviewer/internal/tools/filesystem"
	"gopkg.in/yaml.v3"
)

const (
	// ReviewerDir is the directory name for per-project reviewer configuration
	ReviewerDir = ".reviewer"
	// ConfigFile is the name of the project configuration file
	ConfigFile = "config.yaml"
	// RulesFile is the name of the custom rules file
	RulesFile = "rules"
)

// ProjectConfig holds per-project scan settings.
type ProjectConfig struct {
	// Ignore holds gitignore-style patterns, matched relative to the project root.
	Ignore []string `yaml:"ignore"`
	// ExcludeMode is "substring" (default) or "segment".
	ExcludeMode string `yaml:"exclude_mode"`
	// Extensions replaces the default reviewed extensions when non-empty.
	Extensions []string `yaml:"extensions"`
}

// configPath returns the full path to the project config file.
func configPath(repoRoot string) string {
	return filepath.Join(repoRoot, ReviewerDir, ConfigFile)
}

// rulesPath returns the full path to the project rules file.
func rulesPath(repoRoot string) string {
	return filepath.Join(repoRoot, ReviewerDir, RulesFile)
}

// ConfigExists checks if a project configuration file exists.
func ConfigExists(repoRoot string) bool {
	_, err := os.Stat(configPath(repoRoot))
	return !os.IsNotExist(err)
}

// LoadConfig reads the project configuration from disk.
// Returns nil and no error if the config file does not exist.
func LoadConfig(repoRoot string) (*ProjectConfig, error) {
	path := configPath(repoRoot)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse project config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks enumerated fields.
func (c *ProjectConfig) Validate() error {
	switch filesystem.ExcludeMode(c.ExcludeMode) {
	case "", filesystem.ExcludeSubstring, filesystem.ExcludeSegment:
	default:
		return fmt.Errorf("exclude_mode must be %q or %q, got %q", filesystem.ExcludeSubstring, filesystem.ExcludeSegment, c.ExcludeMode)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}

// ScanOptions derives list_files options rooted at repoRoot. A nil config yields
// the defaults.
func (c *ProjectConfig) ScanOptions(repoRoot string) filesystem.ScanOptions {
	opts := filesystem.DefaultScanOptions()
	opts.Root = repoRoot
	if c == nil {
		return opts
	}
	if c.ExcludeMode != "" {
		opts.Mode = filesystem.ExcludeMode(c.ExcludeMode)
	}
	if len(c.Extensions) > 0 {
		opts.Extensions = c.Extensions
	}
	opts.Ignore = filesystem.NewIgnoreMatcher(c.Ignore)
	return opts
}

// LoadRules reads custom review rules from the .reviewer/rules file.
// Returns empty string and no error if the file does not exist.
func LoadRules(repoRoot string) (string, error) {
	path := rulesPath(repoRoot)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rules file: %w", err)
	}

	return string(data), nil
}
