package cli

import (
	"bytes"
	"context"
	"declscan/internal/core/app"
	"declscan/internal/core/config"
	"declscan/internal/core/errors"
	"declscan/internal/engine/parser"
	"declscan/internal/shared/observability"
	"declscan/internal/shared/util"
	"declscan/internal/ui/report"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// Run executes the declscan command line and returns the process exit code:
// 0 on success, 1 when any input failed to parse or an error occurred, and
// 2 on invalid flags.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, streams{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
}

func run(ctx context.Context, args []string, std streams) int {
	opts, err := parseOptions(args, std.stderr)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(std.stdout, "declscan v%s\n", versionString)
		return 0
	}

	configureLogging(std.stderr, opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return 1
	}

	cfg, cfgPath, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	slog.Debug("configuration loaded", "path", cfgPath)

	if err := applyOptions(&opts, cfg); err != nil {
		fmt.Fprintln(std.stderr, err.Error())
		return 2
	}

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	analyzer, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize analyzer", "error", err)
		return 1
	}
	defer analyzer.Close()

	if addr := strings.TrimSpace(cfg.Observability.MetricsAddress); addr != "" {
		server := NewObservabilityServer(addr, app.NewHealthService(analyzer))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "addr", addr, "error", err)
			return 1
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(stopCtx)
		}()
	}

	renderOpts := report.Options{NoColor: cfg.Output.NoColor, ShowFiles: cfg.Output.ShowFiles}

	if opts.trend {
		return runTrend(analyzer, opts, cfg.Output.Format, std)
	}

	if len(opts.args) == 0 && !opts.watch {
		return runStdin(ctx, analyzer, opts, cfg.Output.Format, renderOpts, std)
	}

	rep, err := analyzer.Scan(ctx, opts.args)
	if err != nil {
		fmt.Fprintln(std.stderr, err.Error())
		return 1
	}
	if err := emit(opts.outPath, std.stdout, func(w io.Writer) error {
		return report.Render(w, rep, cfg.Output.Format, renderOpts)
	}); err != nil {
		slog.Error("failed to render report", "error", err)
		return 1
	}

	if !opts.watch {
		if rep.Failed() {
			return 1
		}
		return 0
	}
	return runWatch(ctx, analyzer, opts, cfg.Output.Format, renderOpts, std)
}

func runStdin(ctx context.Context, analyzer *app.App, opts cliOptions, format string, renderOpts report.Options, std streams) int {
	lang, err := parser.ParseLanguage(opts.language)
	if err != nil {
		fmt.Fprintln(std.stderr, err.Error())
		return 2
	}

	source, err := readAll(std.stdin)
	if err != nil {
		slog.Error("failed to read stdin", "error", err)
		return 1
	}

	result, err := analyzer.AnalyzeSource(ctx, source, lang)
	if err != nil {
		if errors.IsParseFailure(err) {
			fmt.Fprintf(std.stderr, "parse failure: %v\n", err)
		} else {
			fmt.Fprintln(std.stderr, err.Error())
		}
		return 1
	}

	if err := emit(opts.outPath, std.stdout, func(w io.Writer) error {
		return report.RenderResult(w, result, format, renderOpts)
	}); err != nil {
		slog.Error("failed to render result", "error", err)
		return 1
	}
	return 0
}

func runWatch(ctx context.Context, analyzer *app.App, opts cliOptions, format string, renderOpts report.Options, std streams) int {
	err := analyzer.StartWatcher(ctx, opts.args, func(results []app.FileResult) {
		if err := report.RenderFiles(std.stdout, results, format, renderOpts); err != nil {
			slog.Error("failed to render watch results", "error", err)
		}
	})
	if err != nil {
		slog.Error("failed to start watcher", "error", err)
		return 1
	}

	<-ctx.Done()
	slog.Info("watch stopped")
	return 0
}

func runTrend(analyzer *app.App, opts cliOptions, format string, std streams) int {
	since, err := parseSince(opts.since)
	if err != nil {
		fmt.Fprintln(std.stderr, err.Error())
		return 2
	}
	window, err := parseHistoryWindow(opts.historyWindow)
	if err != nil {
		fmt.Fprintln(std.stderr, err.Error())
		return 2
	}

	trend, err := analyzer.HistoryTrend(since, window)
	if err != nil {
		fmt.Fprintln(std.stderr, err.Error())
		return 1
	}
	if err := emit(opts.outPath, std.stdout, func(w io.Writer) error {
		return report.RenderTrend(w, trend, format)
	}); err != nil {
		slog.Error("failed to render trend", "error", err)
		return 1
	}
	return 0
}

// loadConfig reads the explicitly requested file, or the first default
// candidate that exists. Without any config file the defaults apply.
func loadConfig(path, cwd string) (*config.Config, string, error) {
	if path != defaultConfigPath {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	for _, candidate := range defaultConfigCandidates(cwd) {
		cfg, err := config.Load(candidate)
		if err == nil {
			return cfg, candidate, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%s: %w", candidate, err)
		}
	}

	cfg, err := config.Parse("")
	if err != nil {
		return nil, "", err
	}
	return cfg, "", nil
}

func defaultConfigCandidates(cwd string) []string {
	return []string{
		filepath.Clean(filepath.Join(cwd, defaultConfigPath)),
		filepath.Clean(filepath.Join(cwd, "data", "config", defaultConfigPath)),
	}
}

func applyOptions(opts *cliOptions, cfg *config.Config) error {
	if opts.format != "" {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if opts.noColor {
		cfg.Output.NoColor = true
	}
	if opts.showFiles {
		cfg.Output.ShowFiles = true
	}
	if opts.history {
		cfg.History.Enabled = true
	}
	if opts.metricsAddr != "" {
		cfg.Observability.MetricsAddress = opts.metricsAddr
	}

	if opts.trend {
		if !opts.history {
			return fmt.Errorf("--trend requires --history")
		}
		if opts.watch || len(opts.args) > 0 {
			return fmt.Errorf("--trend does not accept paths or --watch")
		}
		if _, err := parseSince(opts.since); err != nil {
			return err
		}
		if _, err := parseHistoryWindow(opts.historyWindow); err != nil {
			return err
		}
	}
	if opts.outPath != "" && opts.watch {
		return fmt.Errorf("--out cannot be combined with --watch")
	}
	if opts.since != "" && !opts.trend {
		return fmt.Errorf("--since requires --trend")
	}

	return config.Validate(cfg)
}

func parseSince(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	if day, err := time.Parse("2006-01-02", raw); err == nil {
		return day.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("--since must be RFC3339 or YYYY-MM-DD, got %q", value)
}

func parseHistoryWindow(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--history-window must be a Go duration (example: 24h), got %q", value)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--history-window must be > 0, got %q", value)
	}
	return d, nil
}

// emit renders to stdout, or to path when one is given. The file is only
// written once rendering succeeded.
func emit(path string, stdout io.Writer, render func(io.Writer) error) error {
	if path == "" {
		return render(stdout)
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := util.WriteFileWithDirs(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	slog.Debug("report written", "path", path)
	return nil
}

func readAll(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return io.ReadAll(r)
}

func configureLogging(output io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
