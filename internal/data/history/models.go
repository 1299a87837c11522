package history

import "time"

const SchemaVersion = 1

// Snapshot is the persisted summary of one scan.
type Snapshot struct {
	ScanID               string    `json:"scan_id"`
	ProjectKey           string    `json:"project_key"`
	SchemaVersion        int       `json:"schema_version"`
	Timestamp            time.Time `json:"timestamp"`
	CommitHash           string    `json:"commit_hash,omitempty"`
	CommitTimestamp      time.Time `json:"commit_timestamp,omitempty"`
	FileCount            int       `json:"file_count"`
	ParseFailures        int       `json:"parse_failures"`
	VariableDeclarations int       `json:"variable_declarations"`
	FunctionDeclarations int       `json:"function_declarations"`
	ClassDeclarations    int       `json:"class_declarations"`
	ExportDeclarations   int       `json:"export_declarations"`
}

// Declarations is the sum of the four declaration counts.
func (s Snapshot) Declarations() int {
	return s.VariableDeclarations + s.FunctionDeclarations + s.ClassDeclarations + s.ExportDeclarations
}

type TrendPoint struct {
	Timestamp            time.Time `json:"timestamp" yaml:"timestamp" toml:"timestamp"`
	ScanID               string    `json:"scan_id" yaml:"scan_id" toml:"scan_id"`
	CommitHash           string    `json:"commit_hash,omitempty" yaml:"commit_hash,omitempty" toml:"commit_hash,omitempty"`
	FileCount            int       `json:"file_count" yaml:"file_count" toml:"file_count"`
	ParseFailures        int       `json:"parse_failures" yaml:"parse_failures" toml:"parse_failures"`
	VariableDeclarations int       `json:"variable_declarations" yaml:"variable_declarations" toml:"variable_declarations"`
	FunctionDeclarations int       `json:"function_declarations" yaml:"function_declarations" toml:"function_declarations"`
	ClassDeclarations    int       `json:"class_declarations" yaml:"class_declarations" toml:"class_declarations"`
	ExportDeclarations   int       `json:"export_declarations" yaml:"export_declarations" toml:"export_declarations"`
	DeltaFiles           int       `json:"delta_files" yaml:"delta_files" toml:"delta_files"`
	DeltaVariables       int       `json:"delta_variables" yaml:"delta_variables" toml:"delta_variables"`
	DeltaFunctions       int       `json:"delta_functions" yaml:"delta_functions" toml:"delta_functions"`
	DeltaClasses         int       `json:"delta_classes" yaml:"delta_classes" toml:"delta_classes"`
	DeltaExports         int       `json:"delta_exports" yaml:"delta_exports" toml:"delta_exports"`
	GrowthPct            float64   `json:"growth_pct" yaml:"growth_pct" toml:"growth_pct"`
	AvgDeclarations      float64   `json:"avg_declarations" yaml:"avg_declarations" toml:"avg_declarations"`
	WindowHours          float64   `json:"window_hours" yaml:"window_hours" toml:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version" yaml:"schema_version" toml:"schema_version"`
	ProjectKey    string       `json:"project_key" yaml:"project_key" toml:"project_key"`
	Since         time.Time    `json:"since" yaml:"since" toml:"since"`
	Until         time.Time    `json:"until" yaml:"until" toml:"until"`
	Window        string       `json:"window" yaml:"window" toml:"window"`
	ScanCount     int          `json:"scan_count" yaml:"scan_count" toml:"scan_count"`
	Points        []TrendPoint `json:"points" yaml:"points" toml:"points"`
}
