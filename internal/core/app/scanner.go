package app

import (
	"context"
	"declscan/internal/core/errors"
	"declscan/internal/shared/observability"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Scan analyses every supported file under paths, or under the configured
// paths when none are given. Per-file failures are recorded on the report;
// only a missing root or cancellation aborts the scan.
func (a *App) Scan(ctx context.Context, paths []string) (Report, error) {
	if len(paths) == 0 {
		paths = a.Config.Paths
	}
	roots := uniqueScanRoots(paths)

	ctx, span := observability.Tracer.Start(ctx, "app.Scan", trace.WithAttributes(attribute.Int("roots", len(roots))))
	defer span.End()

	start := time.Now()
	report := Report{
		ScanID:    uuid.NewString(),
		Roots:     roots,
		StartedAt: start.UTC(),
		Files:     []FileResult{},
	}

	files, err := a.collectFiles(roots)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Report{}, err
	}

	for _, path := range files {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx, 1); err != nil {
				return Report{}, err
			}
		}
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		fr, err := a.AnalyzeFile(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Report{}, ctxErr
			}
			if fr.ParseFailed() {
				slog.Debug("parse failure", "path", path, "error", err)
			} else {
				slog.Warn("failed to analyze file", "path", path, "error", err)
			}
		}
		report.add(fr)
	}

	elapsed := time.Since(start)
	report.DurationMS = elapsed.Milliseconds()
	observability.AnalysisDuration.WithLabelValues("scan").Observe(elapsed.Seconds())
	span.SetAttributes(
		attribute.String("scan.id", report.ScanID),
		attribute.Int("scan.files", report.FileCount),
		attribute.Int("scan.parse_failures", report.ParseFailures),
	)

	a.recordSnapshot(ctx, report)
	return report, nil
}

// collectFiles expands roots into the ordered list of files to analyse.
// Files named directly are kept even when an exclude pattern matches them.
func (a *App) collectFiles(roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			code := errors.CodeInternal
			if os.IsNotExist(err) {
				code = errors.CodeNotFound
			}
			return nil, errors.AddContext(errors.Wrap(err, code, "scan root"), errors.CtxPath, root)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && a.excludedDir(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() || a.parser.LanguageForPath(path) == "" || a.excludedFile(path) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk scan root"), errors.CtxPath, root)
		}
	}

	return files, nil
}

func (a *App) excludedDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range a.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (a *App) excludedFile(path string) bool {
	base := filepath.Base(path)
	for _, g := range a.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func uniqueScanRoots(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		normalized := filepath.Clean(p)
		if abs, err := filepath.Abs(normalized); err == nil {
			normalized = abs
		}
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		roots = append(roots, normalized)
	}
	sort.Strings(roots)
	return roots
}
