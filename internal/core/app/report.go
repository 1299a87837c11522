package app

import (
	"declscan/internal/core/errors"
	"declscan/internal/engine/counter"
	"time"
)

// FileResult is the outcome of analysing one file. Result is zero whenever
// Err is set.
type FileResult struct {
	Path     string         `json:"path" yaml:"path" toml:"path"`
	Language string         `json:"language,omitempty" yaml:"language,omitempty" toml:"language,omitempty"`
	Result   counter.Result `json:"result" yaml:"result" toml:"result"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Err      error          `json:"-" yaml:"-" toml:"-"`
}

func (f FileResult) Failed() bool {
	return f.Err != nil
}

func (f FileResult) ParseFailed() bool {
	return errors.IsParseFailure(f.Err)
}

// Report summarises one scan. Totals only include files that parsed.
type Report struct {
	ScanID        string         `json:"scan_id" yaml:"scan_id" toml:"scan_id"`
	Roots         []string       `json:"roots" yaml:"roots" toml:"roots"`
	StartedAt     time.Time      `json:"started_at" yaml:"started_at" toml:"started_at"`
	DurationMS    int64          `json:"duration_ms" yaml:"duration_ms" toml:"duration_ms"`
	FileCount     int            `json:"file_count" yaml:"file_count" toml:"file_count"`
	ParseFailures int            `json:"parse_failures" yaml:"parse_failures" toml:"parse_failures"`
	Errors        int            `json:"errors" yaml:"errors" toml:"errors"`
	Totals        counter.Result `json:"totals" yaml:"totals" toml:"totals"`
	Files         []FileResult   `json:"files" yaml:"files" toml:"files"`
}

func (r Report) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// Failed reports whether any file failed to parse or could not be read.
func (r Report) Failed() bool {
	return r.ParseFailures > 0 || r.Errors > 0
}

func (r *Report) add(file FileResult) {
	r.Files = append(r.Files, file)
	r.FileCount++
	switch {
	case file.ParseFailed():
		r.ParseFailures++
	case file.Failed():
		r.Errors++
	default:
		r.Totals = r.Totals.Add(file.Result)
	}
}

func newFileResult(path string, lang string, result counter.Result, err error) FileResult {
	fr := FileResult{Path: path, Language: lang, Result: result, Err: err}
	if err != nil {
		fr.Result = counter.Result{}
		fr.Error = err.Error()
	}
	return fr
}
