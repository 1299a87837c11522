package app

import (
	"declscan/internal/core/config"
	"declscan/internal/core/ports"
	"declscan/internal/core/watcher"
	"declscan/internal/data/history"
	"declscan/internal/engine/parser"
	"declscan/internal/shared/util"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gobwas/glob"
)

// App wires the parser, counter, history store and watcher behind the
// operations the CLI and the public facade drive.
type App struct {
	Config *config.Config

	parser       ports.SourceParser
	history      ports.HistoryStore
	limiter      *util.Limiter
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	closeHistory  func() error
	activeWatcher *watcher.Watcher
	watchMu       sync.Mutex
}

type Option func(*App)

// WithHistoryStore overrides the store opened from config.
func WithHistoryStore(store ports.HistoryStore) Option {
	return func(a *App) {
		a.history = store
	}
}

// WithParser overrides the tree-sitter parser built from config.
func WithParser(p ports.SourceParser) Option {
	return func(a *App) {
		a.parser = p
	}
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	excludeDirs, err := compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	excludeFiles, err := compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:       cfg,
		excludeDirs:  excludeDirs,
		excludeFiles: excludeFiles,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.parser == nil {
		p, err := buildParser(cfg)
		if err != nil {
			return nil, err
		}
		a.parser = p
	}

	if cfg.Performance.MaxFilesPerSecond > 0 {
		a.limiter = util.NewLimiter(cfg.Performance.MaxFilesPerSecond, 1)
	}

	if a.history == nil && cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		slog.Debug("history store opened", "path", store.Path())
		a.history = store
		a.closeHistory = store.Close
	}

	return a, nil
}

func buildParser(cfg *config.Config) (*parser.Parser, error) {
	overrides := make(map[string]parser.LanguageOverride, len(cfg.Languages))
	for name, lang := range cfg.Languages {
		overrides[name] = parser.LanguageOverride{
			Enabled:    lang.Enabled,
			Extensions: lang.Extensions,
		}
	}
	registry, err := parser.BuildLanguageRegistry(overrides)
	if err != nil {
		return nil, err
	}
	loader, err := parser.NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		return nil, err
	}
	return parser.NewParser(loader), nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, pattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// HistoryEnabled reports whether scans are persisted.
func (a *App) HistoryEnabled() bool {
	return a.history != nil
}

// Close stops the watcher and releases the history store.
func (a *App) Close() error {
	a.watchMu.Lock()
	w := a.activeWatcher
	a.activeWatcher = nil
	a.watchMu.Unlock()

	var firstErr error
	if w != nil {
		if err := w.Close(); err != nil {
			firstErr = err
		}
	}
	if a.closeHistory != nil {
		if err := a.closeHistory(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.closeHistory = nil
	}
	return firstErr
}
