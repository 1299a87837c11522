package parser

import (
	"bytes"
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"declscan/internal/core/errors"
	"declscan/internal/shared/observability"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser turns UTF-8 source text into a Program. It is safe for concurrent
// use; each call leases its own tree-sitter parser from the loader's pools.
type Parser struct {
	loader *GrammarLoader
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{loader: loader}
}

// Parse parses source as lang. Source that tree-sitter cannot parse without
// ERROR or MISSING nodes, or that is not valid UTF-8, yields an error with
// code PARSE_FAILURE; the Program is only meaningful when err is nil.
func (p *Parser) Parse(ctx context.Context, source []byte, lang Language) (Program, error) {
	if err := ctx.Err(); err != nil {
		return Program{}, err
	}
	if lang == "" {
		lang = DefaultLanguage
	}

	pool, ok := p.loader.pool(lang)
	if !ok {
		return Program{}, errors.AddContext(
			errors.New(errors.CodeNotSupported, fmt.Sprintf("language not enabled: %s", lang)),
			errors.CtxLanguage, string(lang),
		)
	}

	source = bytes.TrimPrefix(source, utf8BOM)
	if !utf8.Valid(source) {
		observability.ParseFailuresTotal.WithLabelValues(string(lang)).Inc()
		return Program{}, errors.AddContext(
			errors.New(errors.CodeParseFailure, "source is not valid UTF-8"),
			errors.CtxLanguage, string(lang),
		)
	}

	start := time.Now()
	defer func() {
		observability.ParsingDuration.WithLabelValues(string(lang)).Observe(time.Since(start).Seconds())
	}()

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(source, nil)
	if tree == nil {
		return Program{}, errors.AddContext(
			errors.New(errors.CodeInternal, "parse failed"),
			errors.CtxLanguage, string(lang),
		)
	}
	defer tree.Close()

	root := tree.RootNode()
	if issue, bad := firstSyntaxIssue(root, source); bad {
		observability.ParseFailuresTotal.WithLabelValues(string(lang)).Inc()
		de := &errors.DomainError{Code: errors.CodeParseFailure, Message: issue.Message}
		de.WithContext(errors.CtxLanguage, string(lang)).
			WithContext(errors.CtxLine, issue.Loc.Line).
			WithContext(errors.CtxColumn, issue.Loc.Column)
		return Program{}, de
	}

	return lowerProgram(root, source, lang), nil
}

func (p *Parser) LanguageForPath(path string) Language {
	return LanguageForPath(p.loader.registry, path)
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.LanguageForPath(path) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}
