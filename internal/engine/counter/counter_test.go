package counter

import (
	"testing"

	"declscan/internal/engine/parser"
)

func vars(n int) *parser.VariableDeclaration {
	decl := &parser.VariableDeclaration{Keyword: "let"}
	for i := 0; i < n; i++ {
		decl.Declarators = append(decl.Declarators, parser.Declarator{Name: string(rune('a' + i))})
	}
	return decl
}

func program(stmts ...parser.Statement) parser.Program {
	return parser.Program{Language: parser.LanguageJavaScript, Body: stmts}
}

func TestCount_EmptyProgram(t *testing.T) {
	if got := Count(program()); got != (Result{}) {
		t.Fatalf("expected zero result, got %+v", got)
	}
	if got := Count(parser.Program{}); got != (Result{}) {
		t.Fatalf("expected zero result for nil body, got %+v", got)
	}
}

func TestCount_ReferenceScenario(t *testing.T) {
	// let a = 1; function foo() {} class Bar {} export const b = 2;
	// export function baz() {} export class Qux {}
	// export default function() {} export * from 'module';
	got := Count(program(
		vars(1),
		&parser.FunctionDeclaration{Name: "foo"},
		&parser.ClassDeclaration{Name: "Bar"},
		&parser.ExportNamed{Declaration: vars(1)},
		&parser.ExportNamed{Declaration: &parser.FunctionDeclaration{Name: "baz"}},
		&parser.ExportNamed{Declaration: &parser.ClassDeclaration{Name: "Qux"}},
		&parser.ExportDefault{},
		&parser.ExportAll{Source: "module"},
	))

	// The default-exported function is opaque, so only foo and baz count.
	want := Result{
		VariableDeclarations: 2,
		FunctionDeclarations: 2,
		ClassDeclarations:    2,
		ExportDeclarations:   5,
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestCount_Rules(t *testing.T) {
	cases := []struct {
		name  string
		stmts []parser.Statement
		want  Result
	}{
		{
			name:  "MultipleDeclaratorsCountIndividually",
			stmts: []parser.Statement{vars(3)},
			want:  Result{VariableDeclarations: 3},
		},
		{
			name:  "ZeroDeclaratorsContributeNothing",
			stmts: []parser.Statement{vars(0)},
			want:  Result{},
		},
		{
			name:  "NamedExportWithoutDeclaration",
			stmts: []parser.Statement{&parser.ExportNamed{}},
			want:  Result{ExportDeclarations: 1},
		},
		{
			name:  "NamedExportWithVariableDeclarators",
			stmts: []parser.Statement{&parser.ExportNamed{Declaration: vars(2)}},
			want:  Result{VariableDeclarations: 2, ExportDeclarations: 1},
		},
		{
			name:  "NamedExportWithOtherDeclaration",
			stmts: []parser.Statement{&parser.ExportNamed{Declaration: &parser.OtherDeclaration{NodeKind: "interface_declaration"}}},
			want:  Result{ExportDeclarations: 1},
		},
		{
			name:  "DefaultExportIsOpaque",
			stmts: []parser.Statement{&parser.ExportDefault{}},
			want:  Result{ExportDeclarations: 1},
		},
		{
			name:  "ExportAllIsOpaque",
			stmts: []parser.Statement{&parser.ExportAll{Source: "m"}},
			want:  Result{ExportDeclarations: 1},
		},
		{
			name: "OtherStatementsIgnored",
			stmts: []parser.Statement{
				&parser.OtherStatement{NodeKind: "expression_statement"},
				&parser.OtherStatement{NodeKind: "import_statement"},
			},
			want: Result{},
		},
		{
			name:  "BareOtherDeclarationIgnored",
			stmts: []parser.Statement{&parser.OtherDeclaration{NodeKind: "enum_declaration"}},
			want:  Result{},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Count(program(tc.stmts...)); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestCount_VariableContributionIsAdditive(t *testing.T) {
	for k := 0; k <= 6; k++ {
		single := Count(program(vars(k)))
		if single.VariableDeclarations != k {
			t.Fatalf("k=%d: expected %d variables, got %d", k, k, single.VariableDeclarations)
		}
		split := Count(program(vars(k), vars(k)))
		if split.VariableDeclarations != 2*k {
			t.Fatalf("k=%d: expected %d variables across two statements, got %d", k, 2*k, split.VariableDeclarations)
		}
	}
}

func TestCount_ExportCountEqualsExportStatements(t *testing.T) {
	stmts := []parser.Statement{
		&parser.ExportDefault{},
		vars(2),
		&parser.ExportNamed{Declaration: &parser.ClassDeclaration{}},
		&parser.OtherStatement{NodeKind: "export_statement"},
		&parser.ExportAll{},
		&parser.ExportNamed{},
	}
	exports := 0
	for _, s := range stmts {
		switch s.Kind() {
		case parser.KindExportDefault, parser.KindExportAll, parser.KindExportNamed:
			exports++
		}
	}
	if got := Count(program(stmts...)).ExportDeclarations; got != exports {
		t.Fatalf("expected %d exports, got %d", exports, got)
	}
}

func TestCount_IdempotentAndMonotonic(t *testing.T) {
	pool := []parser.Statement{
		vars(2),
		&parser.FunctionDeclaration{},
		&parser.ExportNamed{Declaration: vars(1)},
		&parser.OtherStatement{NodeKind: "if_statement"},
		&parser.ClassDeclaration{},
		&parser.ExportDefault{},
		vars(0),
		&parser.ExportAll{},
	}

	var body []parser.Statement
	prev := Count(program())
	for _, stmt := range pool {
		body = append(body, stmt)
		p := program(body...)
		first := Count(p)
		if second := Count(p); first != second {
			t.Fatalf("expected identical results, got %+v then %+v", first, second)
		}
		if first.VariableDeclarations < prev.VariableDeclarations ||
			first.FunctionDeclarations < prev.FunctionDeclarations ||
			first.ClassDeclarations < prev.ClassDeclarations ||
			first.ExportDeclarations < prev.ExportDeclarations {
			t.Fatalf("counter decreased after appending %T: %+v -> %+v", stmt, prev, first)
		}
		prev = first
	}
}

func TestCount_DoesNotMutateInput(t *testing.T) {
	inner := vars(2)
	p := program(&parser.ExportNamed{Declaration: inner}, vars(1))
	Count(p)
	if len(p.Body) != 2 || len(inner.Declarators) != 2 {
		t.Fatal("expected program to be left untouched")
	}
}

func TestResult_AddAndTotal(t *testing.T) {
	a := Result{VariableDeclarations: 1, FunctionDeclarations: 2, ClassDeclarations: 3, ExportDeclarations: 4}
	b := Result{VariableDeclarations: 10, ExportDeclarations: 1}
	sum := a.Add(b)
	want := Result{VariableDeclarations: 11, FunctionDeclarations: 2, ClassDeclarations: 3, ExportDeclarations: 5}
	if sum != want {
		t.Fatalf("expected %+v, got %+v", want, sum)
	}
	if sum.Total() != 21 {
		t.Fatalf("expected total 21, got %d", sum.Total())
	}
	kinds := sum.ByKind()
	if len(kinds) != 4 || kinds[0].Kind != "variable" || kinds[3].Count != 5 {
		t.Fatalf("unexpected kind breakdown: %+v", kinds)
	}
}
