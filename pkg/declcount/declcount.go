// Package declcount counts the top-level declarations of ECMAScript and
// TypeScript source text.
//
// Variable, function and class declarations are counted when they appear
// bare at the top level or directly inside a named export. Every export
// statement counts once as an export declaration; the payload of
// `export default` and `export * from` is never inspected.
package declcount

import (
	"context"
	"sync"

	"declscan/internal/core/errors"
	"declscan/internal/engine/counter"
	"declscan/internal/engine/parser"
)

// Result holds the four counts in their fixed order.
type Result = counter.Result

var (
	defaultParser     *parser.Parser
	defaultParserErr  error
	defaultParserOnce sync.Once
)

func sharedParser() (*parser.Parser, error) {
	defaultParserOnce.Do(func() {
		loader, err := parser.NewGrammarLoader()
		if err != nil {
			defaultParserErr = err
			return
		}
		defaultParser = parser.NewParser(loader)
	})
	return defaultParser, defaultParserErr
}

// Analyze counts the top-level declarations of JavaScript source. Source
// that does not parse yields an error for which IsParseFailure is true.
func Analyze(source string) (Result, error) {
	return AnalyzeLanguage(context.Background(), []byte(source), "javascript")
}

// AnalyzeLanguage is Analyze for an explicit language: "javascript",
// "typescript" or "tsx" ("js" and "ts" are accepted too).
func AnalyzeLanguage(ctx context.Context, source []byte, language string) (Result, error) {
	lang, err := parser.ParseLanguage(language)
	if err != nil {
		return Result{}, errors.Wrap(err, errors.CodeNotSupported, "unknown language")
	}
	p, err := sharedParser()
	if err != nil {
		return Result{}, err
	}
	program, err := p.Parse(ctx, source, lang)
	if err != nil {
		return Result{}, err
	}
	return counter.Count(program), nil
}

// IsParseFailure reports whether err means the source could not be parsed.
func IsParseFailure(err error) bool {
	return errors.IsParseFailure(err)
}
