package parser

import (
	"context"
	"sync"
	"testing"

	"declscan/internal/core/errors"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	loader, err := NewGrammarLoader()
	if err != nil {
		t.Fatal(err)
	}
	return NewParser(loader)
}

func mustParse(t *testing.T, p *Parser, lang Language, code string) Program {
	t.Helper()
	prog, err := p.Parse(context.Background(), []byte(code), lang)
	if err != nil {
		t.Fatalf("parse %s: %v", lang, err)
	}
	return prog
}

func kinds(prog Program) []StatementKind {
	out := make([]StatementKind, 0, len(prog.Body))
	for _, s := range prog.Body {
		out = append(out, s.Kind())
	}
	return out
}

func TestParse_ReferenceStatements(t *testing.T) {
	p := newTestParser(t)
	code := `
let a = 1;
function foo() {}
class Bar {}
export const b = 2;
export function baz() {}
export class Qux {}
export default function() {}
export * from 'module';
`
	prog := mustParse(t, p, LanguageJavaScript, code)

	want := []StatementKind{
		KindVariable, KindFunction, KindClass,
		KindExportNamed, KindExportNamed, KindExportNamed,
		KindExportDefault, KindExportAll,
	}
	got := kinds(prog)
	if len(got) != len(want) {
		t.Fatalf("expected %d statements, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statement %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	named := prog.Body[3].(*ExportNamed)
	v, ok := named.Declaration.(*VariableDeclaration)
	if !ok {
		t.Fatalf("expected variable payload, got %T", named.Declaration)
	}
	if v.Keyword != "const" || len(v.Declarators) != 1 || v.Declarators[0].Name != "b" {
		t.Fatalf("unexpected payload: %+v", v)
	}

	all := prog.Body[7].(*ExportAll)
	if all.Source != "module" {
		t.Fatalf("expected source module, got %q", all.Source)
	}
	if loc := prog.Body[1].Pos(); loc.Line != 3 || loc.Column != 1 {
		t.Fatalf("expected function at 3:1, got %d:%d", loc.Line, loc.Column)
	}
}

func TestParse_VariableDeclarators(t *testing.T) {
	p := newTestParser(t)
	prog := mustParse(t, p, LanguageJavaScript, "var x = 1, y, { z } = obj;\nlet q;\n")
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Body))
	}
	first := prog.Body[0].(*VariableDeclaration)
	if first.Keyword != "var" {
		t.Fatalf("expected var keyword, got %q", first.Keyword)
	}
	if len(first.Declarators) != 3 {
		t.Fatalf("expected 3 declarators, got %d", len(first.Declarators))
	}
	if first.Declarators[0].Name != "x" || first.Declarators[1].Name != "y" {
		t.Fatalf("unexpected declarator names: %+v", first.Declarators)
	}
	if second := prog.Body[1].(*VariableDeclaration); second.Keyword != "let" || len(second.Declarators) != 1 {
		t.Fatalf("unexpected second declaration: %+v", second)
	}
}

func TestParse_ExportForms(t *testing.T) {
	p := newTestParser(t)
	prog := mustParse(t, p, LanguageJavaScript, `
export { x, y };
export { z as default } from './z.js';
export * as ns from "ns";
export default class {}
export async function* gen() {}
`)
	if len(prog.Body) != 5 {
		t.Fatalf("expected 5 statements, got %d", len(prog.Body))
	}

	plain := prog.Body[0].(*ExportNamed)
	if plain.Declaration != nil || plain.Source != "" {
		t.Fatalf("expected bare named export, got %+v", plain)
	}
	reexport := prog.Body[1].(*ExportNamed)
	if reexport.Declaration != nil || reexport.Source != "./z.js" {
		t.Fatalf("expected re-export from ./z.js, got %+v", reexport)
	}
	if ns, ok := prog.Body[2].(*ExportAll); !ok || ns.Source != "ns" {
		t.Fatalf("expected namespace export-all, got %#v", prog.Body[2])
	}
	if _, ok := prog.Body[3].(*ExportDefault); !ok {
		t.Fatalf("expected default export, got %T", prog.Body[3])
	}
	gen := prog.Body[4].(*ExportNamed).Declaration.(*FunctionDeclaration)
	if gen.Name != "gen" || !gen.Async || !gen.Generator {
		t.Fatalf("unexpected generator payload: %+v", gen)
	}
}

func TestParse_NestedDeclarationsAreNotTopLevel(t *testing.T) {
	p := newTestParser(t)
	prog := mustParse(t, p, LanguageJavaScript, `
function outer() { const inner = 1; function nested() {} }
if (true) { var hoisted = 1; }
// comment
foo();
`)
	want := []StatementKind{KindFunction, KindOther, KindOther}
	got := kinds(prog)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statement %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestParse_TypeScriptExports(t *testing.T) {
	p := newTestParser(t)
	prog := mustParse(t, p, LanguageTypeScript, `
export interface Shape { area(): number }
export abstract class Base {}
export type { Shape as S } from './shape';
export function over(a: string): void;
`)
	if len(prog.Body) != 4 {
		t.Fatalf("expected 4 statements, got %d (%v)", len(prog.Body), kinds(prog))
	}
	iface := prog.Body[0].(*ExportNamed)
	if _, ok := iface.Declaration.(*OtherDeclaration); !ok {
		t.Fatalf("expected interface payload to be OtherDeclaration, got %T", iface.Declaration)
	}
	if _, ok := prog.Body[1].(*ExportNamed).Declaration.(*ClassDeclaration); !ok {
		t.Fatalf("expected abstract class payload, got %T", prog.Body[1].(*ExportNamed).Declaration)
	}
	if typeOnly := prog.Body[2].(*ExportNamed); typeOnly.Declaration != nil {
		t.Fatalf("expected type-only re-export without payload, got %T", typeOnly.Declaration)
	}
	if _, ok := prog.Body[3].(*ExportNamed).Declaration.(*FunctionDeclaration); !ok {
		t.Fatalf("expected overload signature payload, got %T", prog.Body[3].(*ExportNamed).Declaration)
	}
}

func TestParse_TypeScriptAmbientDeclarations(t *testing.T) {
	p := newTestParser(t)
	prog := mustParse(t, p, LanguageTypeScript, `
declare const version: string, build: number;
declare function boot(): void;
declare class Widget {}
export declare const x: number;
declare global { interface Window { app: unknown } }
declare namespace NS { let y: number; }
`)
	if len(prog.Body) != 6 {
		t.Fatalf("expected 6 statements, got %d (%v)", len(prog.Body), kinds(prog))
	}

	v, ok := prog.Body[0].(*VariableDeclaration)
	if !ok {
		t.Fatalf("expected declared variable, got %T", prog.Body[0])
	}
	if !v.Declare || len(v.Declarators) != 2 {
		t.Fatalf("unexpected declared variable: %+v", v)
	}
	if fn, ok := prog.Body[1].(*FunctionDeclaration); !ok || !fn.Declare || fn.Name != "boot" {
		t.Fatalf("expected declared function boot, got %#v", prog.Body[1])
	}
	if cls, ok := prog.Body[2].(*ClassDeclaration); !ok || !cls.Declare || cls.Name != "Widget" {
		t.Fatalf("expected declared class Widget, got %#v", prog.Body[2])
	}

	exported := prog.Body[3].(*ExportNamed)
	inner, ok := exported.Declaration.(*VariableDeclaration)
	if !ok || !inner.Declare || len(inner.Declarators) != 1 {
		t.Fatalf("expected declared variable payload, got %#v", exported.Declaration)
	}

	for _, i := range []int{4, 5} {
		if prog.Body[i].Kind() != KindOther {
			t.Fatalf("statement %d: expected other, got %s", i, prog.Body[i].Kind())
		}
	}
}

func TestParse_TypeScriptExportAssignmentIsNotAnExport(t *testing.T) {
	p := newTestParser(t)
	prog := mustParse(t, p, LanguageTypeScript, "const x = 1;\nexport = x;\n")
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Body))
	}
	if prog.Body[1].Kind() != KindOther {
		t.Fatalf("expected export assignment to lower to other, got %s", prog.Body[1].Kind())
	}
}

func TestParse_TSXAndJSX(t *testing.T) {
	p := newTestParser(t)
	jsx := mustParse(t, p, LanguageJavaScript, "export const App = () => <div>hi</div>;\n")
	if len(jsx.Body) != 1 || jsx.Body[0].Kind() != KindExportNamed {
		t.Fatalf("expected single named export, got %v", kinds(jsx))
	}
	tsx := mustParse(t, p, LanguageTSX, "export const App = (p: { n: number }) => <b>{p.n}</b>;\n")
	if len(tsx.Body) != 1 || tsx.Body[0].Kind() != KindExportNamed {
		t.Fatalf("expected single named export, got %v", kinds(tsx))
	}
}

func TestParse_Failures(t *testing.T) {
	p := newTestParser(t)
	cases := []struct {
		name   string
		source []byte
	}{
		{name: "UnmatchedBrace", source: []byte("function foo() {\n  let a = 1;\n")},
		{name: "Garbage", source: []byte("class {{{ ]]]")},
		{name: "InvalidUTF8", source: []byte{'l', 'e', 't', ' ', 0xff, 0xfe, ';'}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse(context.Background(), tc.source, LanguageJavaScript)
			if err == nil {
				t.Fatal("expected parse failure")
			}
			if !errors.IsParseFailure(err) {
				t.Fatalf("expected PARSE_FAILURE, got %v", err)
			}
		})
	}
}

func TestParse_FailureCarriesPosition(t *testing.T) {
	p := newTestParser(t)
	_, err := p.Parse(context.Background(), []byte("let a = 1;\nconst = ;\n"), LanguageJavaScript)
	if !errors.IsParseFailure(err) {
		t.Fatalf("expected PARSE_FAILURE, got %v", err)
	}
	line, ok := errors.ContextValue(err, errors.CtxLine)
	if !ok {
		t.Fatal("expected line context on parse failure")
	}
	if line.(int) < 1 {
		t.Fatalf("expected 1-based line, got %v", line)
	}
}

func TestParse_BOMAndEmptySource(t *testing.T) {
	p := newTestParser(t)
	prog := mustParse(t, p, LanguageJavaScript, "\ufefflet a = 1;")
	if len(prog.Body) != 1 || prog.Body[0].Kind() != KindVariable {
		t.Fatalf("expected BOM to be ignored, got %v", kinds(prog))
	}
	empty := mustParse(t, p, LanguageJavaScript, "")
	if len(empty.Body) != 0 {
		t.Fatalf("expected empty program, got %v", kinds(empty))
	}
}

func TestParse_DisabledLanguage(t *testing.T) {
	disabled := false
	registry, err := BuildLanguageRegistry(map[string]LanguageOverride{
		"typescript": {Enabled: &disabled},
	})
	if err != nil {
		t.Fatal(err)
	}
	loader, err := NewGrammarLoaderWithRegistry(registry)
	if err != nil {
		t.Fatal(err)
	}
	p := NewParser(loader)
	_, err = p.Parse(context.Background(), []byte("let a = 1;"), LanguageTypeScript)
	if !errors.IsCode(err, errors.CodeNotSupported) {
		t.Fatalf("expected NOT_SUPPORTED, got %v", err)
	}
	if p.IsSupportedPath("a.ts") {
		t.Fatal("expected .ts to be unsupported when typescript is disabled")
	}
}

func TestParse_CancelledContext(t *testing.T) {
	p := newTestParser(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Parse(ctx, []byte("let a;"), LanguageJavaScript); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParse_Concurrent(t *testing.T) {
	p := newTestParser(t)
	src := []byte("export const a = 1, b = 2;\nclass C {}\n")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				prog, err := p.Parse(context.Background(), src, LanguageJavaScript)
				if err != nil {
					t.Errorf("parse: %v", err)
					return
				}
				if len(prog.Body) != 2 {
					t.Errorf("expected 2 statements, got %d", len(prog.Body))
					return
				}
			}
		}()
	}
	wg.Wait()
}
