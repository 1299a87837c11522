package report

import (
	"declscan/internal/core/app"
	"declscan/internal/data/history"
	"declscan/internal/engine/counter"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	count   lipgloss.Style
	failure lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")),
		label:   r.NewStyle().Width(24),
		count:   r.NewStyle().Bold(true).Align(lipgloss.Right).Width(6),
		failure: r.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
		success: r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#64748B")),
	}
}

var kindLabels = map[string]string{
	"variable": "Variable declarations",
	"function": "Function declarations",
	"class":    "Class declarations",
	"export":   "Export declarations",
}

func countLines(s styles, result counter.Result) []string {
	lines := make([]string, 0, 4)
	for _, kc := range result.ByKind() {
		lines = append(lines, s.label.Render(kindLabels[kc.Kind])+s.count.Render(fmt.Sprint(kc.Count)))
	}
	return lines
}

func renderResultText(w io.Writer, result counter.Result, opts Options) error {
	s := newStyles(w, opts.NoColor)
	_, err := fmt.Fprintln(w, strings.Join(countLines(s, result), "\n"))
	return err
}

func renderScanText(w io.Writer, rep app.Report, opts Options) error {
	s := newStyles(w, opts.NoColor)
	var b strings.Builder

	b.WriteString(s.title.Render("Declaration scan"))
	b.WriteString("  ")
	b.WriteString(s.muted.Render(fmt.Sprintf("%s  %d files in %s", rep.ScanID, rep.FileCount, rep.Duration().Round(time.Millisecond))))
	b.WriteString("\n")
	for _, line := range countLines(s, rep.Totals) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	if rep.Failed() {
		b.WriteString(s.failure.Render(fmt.Sprintf("%d parse failures, %d errors", rep.ParseFailures, rep.Errors)))
	} else {
		b.WriteString(s.success.Render("all files parsed"))
	}
	b.WriteString("\n")

	if opts.ShowFiles {
		b.WriteString("\n")
		writeFileLines(&b, s, rep.Files)
	} else {
		for _, f := range rep.Files {
			if f.Failed() {
				writeFileLine(&b, s, f)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderFilesText(w io.Writer, files []app.FileResult, opts Options) error {
	s := newStyles(w, opts.NoColor)
	var b strings.Builder
	writeFileLines(&b, s, files)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeFileLines(b *strings.Builder, s styles, files []app.FileResult) {
	for _, f := range files {
		writeFileLine(b, s, f)
	}
}

func writeFileLine(b *strings.Builder, s styles, f app.FileResult) {
	if f.Failed() {
		b.WriteString(s.failure.Render("FAIL"))
		fmt.Fprintf(b, " %s: %s\n", f.Path, f.Error)
		return
	}
	r := f.Result
	fmt.Fprintf(b, "%s %s  var=%d fn=%d class=%d export=%d\n",
		s.success.Render("ok  "), f.Path,
		r.VariableDeclarations, r.FunctionDeclarations, r.ClassDeclarations, r.ExportDeclarations)
}

func renderTrendTSV(w io.Writer, trend history.TrendReport) error {
	var b strings.Builder
	b.WriteString("Timestamp\tScanID\tCommit\tFiles\tParseFailures\tVariables\tFunctions\tClasses\tExports\tDeltaFiles\tDeltaVariables\tDeltaFunctions\tDeltaClasses\tDeltaExports\tGrowthPct\tAvgDeclarations\tWindowHours\n")
	for _, p := range trend.Points {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\n",
			p.Timestamp.Format(time.RFC3339),
			p.ScanID,
			p.CommitHash,
			p.FileCount,
			p.ParseFailures,
			p.VariableDeclarations,
			p.FunctionDeclarations,
			p.ClassDeclarations,
			p.ExportDeclarations,
			p.DeltaFiles,
			p.DeltaVariables,
			p.DeltaFunctions,
			p.DeltaClasses,
			p.DeltaExports,
			p.GrowthPct,
			p.AvgDeclarations,
			p.WindowHours,
		)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
