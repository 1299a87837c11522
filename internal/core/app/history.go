package app

import (
	"context"
	"declscan/internal/core/errors"
	"declscan/internal/data/history"
	"declscan/internal/shared/observability"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

func (a *App) recordSnapshot(ctx context.Context, report Report) {
	if a.history == nil {
		return
	}

	snapshot := history.Snapshot{
		ScanID:               report.ScanID,
		Timestamp:            report.StartedAt,
		FileCount:            report.FileCount,
		ParseFailures:        report.ParseFailures,
		VariableDeclarations: report.Totals.VariableDeclarations,
		FunctionDeclarations: report.Totals.FunctionDeclarations,
		ClassDeclarations:    report.Totals.ClassDeclarations,
		ExportDeclarations:   report.Totals.ExportDeclarations,
	}
	if len(report.Roots) > 0 {
		snapshot.CommitHash, snapshot.CommitTimestamp = history.ResolveGitMetadata(ctx, gitDir(report.Roots[0]))
	}

	if err := a.history.SaveSnapshot(a.Config.History.ProjectKey, snapshot); err != nil {
		slog.Warn("failed to save history snapshot", "scan_id", report.ScanID, "error", err)
		return
	}
	observability.HistorySnapshotsTotal.Inc()
}

// HistoryTrend loads the project's snapshots since the given time and
// computes per-scan deltas over window.
func (a *App) HistoryTrend(since time.Time, window time.Duration) (history.TrendReport, error) {
	if a.history == nil {
		return history.TrendReport{}, errors.New(errors.CodeValidationError, "history is disabled")
	}
	snapshots, err := a.history.LoadSnapshots(a.Config.History.ProjectKey, since)
	if err != nil {
		return history.TrendReport{}, errors.Wrap(err, errors.CodeInternal, "load history snapshots")
	}
	if len(snapshots) == 0 {
		return history.TrendReport{}, errors.New(errors.CodeNotFound, "no history snapshots recorded")
	}
	return history.BuildTrendReport(a.Config.History.ProjectKey, snapshots, window)
}

func gitDir(root string) string {
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		return filepath.Dir(root)
	}
	return root
}
