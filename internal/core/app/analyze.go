package app

import (
	"context"
	"declscan/internal/core/errors"
	"declscan/internal/engine/counter"
	"declscan/internal/engine/parser"
	"declscan/internal/shared/observability"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AnalyzeSource parses source as lang and counts its top-level declarations.
// A parse failure is returned as is; no partial counts are produced.
func (a *App) AnalyzeSource(ctx context.Context, source []byte, lang parser.Language) (counter.Result, error) {
	if lang == "" {
		lang = parser.DefaultLanguage
	}
	ctx, span := observability.Tracer.Start(ctx, "app.AnalyzeSource",
		trace.WithAttributes(attribute.String("language", string(lang)), attribute.Int("bytes", len(source))))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("source").Observe(time.Since(start).Seconds())
	}()

	program, err := a.parser.Parse(ctx, source, lang)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return counter.Result{}, err
	}

	result := counter.Count(program)
	recordDeclarations(result)
	span.SetAttributes(
		attribute.Int("declarations.variable", result.VariableDeclarations),
		attribute.Int("declarations.function", result.FunctionDeclarations),
		attribute.Int("declarations.class", result.ClassDeclarations),
		attribute.Int("declarations.export", result.ExportDeclarations),
	)
	return result, nil
}

// AnalyzeFile reads path and analyses it with the language its extension
// maps to.
func (a *App) AnalyzeFile(ctx context.Context, path string) (FileResult, error) {
	lang := a.parser.LanguageForPath(path)
	if lang == "" {
		err := errors.AddContext(
			errors.New(errors.CodeNotSupported, "unsupported file extension"),
			errors.CtxPath, path,
		)
		return newFileResult(path, "", counter.Result{}, err), err
	}

	content, err := a.readSource(path)
	if err != nil {
		return newFileResult(path, string(lang), counter.Result{}, err), err
	}

	result, err := a.AnalyzeSource(ctx, content, lang)
	if err != nil {
		err = errors.AddContext(err, errors.CtxPath, path)
		return newFileResult(path, string(lang), counter.Result{}, err), err
	}

	observability.FilesAnalyzedTotal.Inc()
	return newFileResult(path, string(lang), result, nil), nil
}

func (a *App) readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(errors.Wrap(err, code, "stat source file"), errors.CtxPath, path)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.AddContext(
			errors.New(errors.CodeValidationError, "not a regular file"),
			errors.CtxPath, path,
		)
	}
	if limit := a.Config.Performance.MaxFileBytes; limit > 0 && info.Size() > limit {
		return nil, errors.AddContext(
			errors.New(errors.CodeValidationError, fmt.Sprintf("file size %d exceeds limit %d bytes", info.Size(), limit)),
			errors.CtxPath, path,
		)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		code := errors.CodeInternal
		if os.IsNotExist(err) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(errors.Wrap(err, code, "read source file"), errors.CtxPath, path)
	}
	return content, nil
}

func recordDeclarations(result counter.Result) {
	for _, kc := range result.ByKind() {
		if kc.Count > 0 {
			observability.DeclarationsTotal.WithLabelValues(kc.Kind).Add(float64(kc.Count))
		}
	}
}
