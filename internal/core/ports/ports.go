package ports

import (
	"context"
	"declscan/internal/data/history"
	"declscan/internal/engine/parser"
	"time"
)

// SourceParser abstracts turning source text into a top-level statement list.
type SourceParser interface {
	Parse(ctx context.Context, source []byte, lang parser.Language) (parser.Program, error)
	LanguageForPath(path string) parser.Language
	SupportedExtensions() []string
}

// HistoryStore abstracts snapshot persistence for trend reporting.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) error
	LoadSnapshots(projectKey string, since time.Time) ([]history.Snapshot, error)
}
