package config

import (
	"time"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

type Config struct {
	Version       int                 `toml:"version"`
	Paths         []string            `toml:"paths"`
	Languages     map[string]Language `toml:"languages"`
	Exclude       Exclude             `toml:"exclude"`
	Watch         Watch               `toml:"watch"`
	Output        Output              `toml:"output"`
	Performance   Performance         `toml:"performance"`
	History       History             `toml:"history"`
	Observability Observability       `toml:"observability"`
}

type Language struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`  // glob patterns matched against directory base names
	Files []string `toml:"files"` // glob patterns matched against file base names
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Output struct {
	Format  string `toml:"format"`
	NoColor bool   `toml:"no_color"`
	// ShowFiles lists per-file results in the text report.
	ShowFiles bool `toml:"show_files"`
}

type Performance struct {
	MaxFileBytes      int64   `toml:"max_file_bytes"`
	MaxFilesPerSecond float64 `toml:"max_files_per_second"` // 0 disables throttling
}

type History struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	ProjectKey string `toml:"project_key"`
}

type Observability struct {
	MetricsAddress string `toml:"metrics_address"`
	OTLPEndpoint   string `toml:"otlp_endpoint"`
}

// DefaultConfig returns a configuration with every default applied, as if
// loaded from an empty file.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
