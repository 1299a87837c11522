package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DECLSCAN_[SECTION]_[KEY] (e.g., DECLSCAN_OUTPUT_FORMAT).
func ApplyEnvOverrides(cfg *Config) {
	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "DECLSCAN_WATCH_DEBOUNCE")

	// Output
	setEnvString(&cfg.Output.Format, "DECLSCAN_OUTPUT_FORMAT")
	setEnvBool(&cfg.Output.NoColor, "DECLSCAN_OUTPUT_NO_COLOR")
	setEnvBool(&cfg.Output.ShowFiles, "DECLSCAN_OUTPUT_SHOW_FILES")
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))

	// Performance
	setEnvInt64(&cfg.Performance.MaxFileBytes, "DECLSCAN_PERFORMANCE_MAX_FILE_BYTES")
	setEnvFloat64(&cfg.Performance.MaxFilesPerSecond, "DECLSCAN_PERFORMANCE_MAX_FILES_PER_SECOND")

	// History
	setEnvBool(&cfg.History.Enabled, "DECLSCAN_HISTORY_ENABLED")
	setEnvString(&cfg.History.Path, "DECLSCAN_HISTORY_PATH")
	setEnvString(&cfg.History.ProjectKey, "DECLSCAN_HISTORY_PROJECT_KEY")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddress, "DECLSCAN_OBSERVABILITY_METRICS_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "DECLSCAN_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt64(target *int64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
