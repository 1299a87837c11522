package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
)

const (
	defaultMaxFileBytes = 5 << 20
	defaultHistoryPath  = "data/declscan-history.db"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse decodes TOML content, applies defaults and env overrides, and
// validates the result.
func Parse(content string) (*Config, error) {
	var cfg Config
	meta, err := toml.Decode(content, &cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if len(cfg.Paths) == 0 {
		cfg.Paths = []string{"."}
	}
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".git", "node_modules", "dist", "build", "coverage"}
	}
	if cfg.Exclude.Files == nil {
		cfg.Exclude.Files = []string{"*.min.js", "*.d.ts"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatText
	}
	if cfg.Performance.MaxFileBytes == 0 {
		cfg.Performance.MaxFileBytes = defaultMaxFileBytes
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = defaultHistoryPath
	}
	if strings.TrimSpace(cfg.History.ProjectKey) == "" {
		cfg.History.ProjectKey = "default"
	}
}

func Validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateOutput(cfg); err != nil {
		return err
	}
	if err := validateExclude(cfg); err != nil {
		return err
	}
	if err := validatePerformance(cfg); err != nil {
		return err
	}
	if err := validateHistory(cfg); err != nil {
		return err
	}
	return validateLanguages(cfg)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Format {
	case FormatText, FormatJSON, FormatYAML, FormatTOML:
		return nil
	}
	return fmt.Errorf("output.format must be one of: text, json, yaml, toml (got %q)", cfg.Output.Format)
}

func validateExclude(cfg *Config) error {
	for _, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs: invalid pattern %q: %w", pattern, err)
		}
	}
	for _, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files: invalid pattern %q: %w", pattern, err)
		}
	}
	return nil
}

func validatePerformance(cfg *Config) error {
	if cfg.Performance.MaxFileBytes < 0 {
		return fmt.Errorf("performance.max_file_bytes must be >= 0, got %d", cfg.Performance.MaxFileBytes)
	}
	if cfg.Performance.MaxFilesPerSecond < 0 {
		return fmt.Errorf("performance.max_files_per_second must be >= 0, got %v", cfg.Performance.MaxFilesPerSecond)
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	if info, err := os.Stat(cfg.History.Path); err == nil && info.IsDir() {
		return fmt.Errorf("history.path %q is a directory", cfg.History.Path)
	}
	return nil
}

func validateLanguages(cfg *Config) error {
	for name, lang := range cfg.Languages {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("languages: empty language name")
		}
		for _, ext := range lang.Extensions {
			if strings.TrimSpace(ext) == "" {
				return fmt.Errorf("languages.%s.extensions must not contain empty values", name)
			}
		}
	}
	return nil
}
