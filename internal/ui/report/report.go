package report

import (
	"bytes"
	"declscan/internal/core/app"
	"declscan/internal/core/config"
	"declscan/internal/data/history"
	"declscan/internal/engine/counter"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

type Options struct {
	NoColor   bool
	ShowFiles bool
}

// Render writes a scan report in the given format.
func Render(w io.Writer, rep app.Report, format string, opts Options) error {
	if format == config.FormatText {
		return renderScanText(w, rep, opts)
	}
	return writeEncoded(w, rep, format)
}

// RenderResult writes the counts for a single source.
func RenderResult(w io.Writer, result counter.Result, format string, opts Options) error {
	if format == config.FormatText {
		return renderResultText(w, result, opts)
	}
	return writeEncoded(w, result, format)
}

// RenderFiles writes per-file results, as produced by a watch batch. Machine
// formats emit one document per call.
func RenderFiles(w io.Writer, files []app.FileResult, format string, opts Options) error {
	if format == config.FormatText {
		return renderFilesText(w, files, opts)
	}
	return writeEncoded(w, struct {
		Files []app.FileResult `json:"files" yaml:"files" toml:"files"`
	}{Files: files}, format)
}

// RenderTrend writes a history trend; the text format is tab-separated.
func RenderTrend(w io.Writer, trend history.TrendReport, format string) error {
	if format == config.FormatText {
		return renderTrendTSV(w, trend)
	}
	return writeEncoded(w, trend, format)
}

func writeEncoded(w io.Writer, v any, format string) error {
	data, err := Encode(v, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Encode marshals v as json, yaml or toml.
func Encode(v any, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case config.FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case config.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case config.FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}
