// Package counter classifies the top-level statements of a parsed program
// into declaration counts.
package counter

import "declscan/internal/engine/parser"

// Result holds the four top-level counts. Field order is the serialization
// order.
type Result struct {
	VariableDeclarations int `json:"variable_declarations" yaml:"variable_declarations" toml:"variable_declarations"`
	FunctionDeclarations int `json:"function_declarations" yaml:"function_declarations" toml:"function_declarations"`
	ClassDeclarations    int `json:"class_declarations" yaml:"class_declarations" toml:"class_declarations"`
	ExportDeclarations   int `json:"export_declarations" yaml:"export_declarations" toml:"export_declarations"`
}

// Count walks program.Body once. Export statements increment
// ExportDeclarations; variable, function and class declarations are counted
// at top level and inside an ExportNamed payload, never deeper.
// ExportDefault and ExportAll payloads are opaque.
func Count(program parser.Program) Result {
	var r Result
	for _, stmt := range program.Body {
		switch s := stmt.(type) {
		case *parser.VariableDeclaration:
			r.addDeclaration(s)
		case *parser.FunctionDeclaration:
			r.addDeclaration(s)
		case *parser.ClassDeclaration:
			r.addDeclaration(s)
		case *parser.ExportDefault, *parser.ExportAll:
			r.ExportDeclarations++
		case *parser.ExportNamed:
			r.ExportDeclarations++
			if s.Declaration != nil {
				r.addDeclaration(s.Declaration)
			}
		default:
			// Unrecognized statements do not contribute.
		}
	}
	return r
}

// addDeclaration applies the declaration rules to d without looking inside
// it. It is the only place a nested payload is classified.
func (r *Result) addDeclaration(d parser.Declaration) {
	switch decl := d.(type) {
	case *parser.VariableDeclaration:
		r.VariableDeclarations += len(decl.Declarators)
	case *parser.FunctionDeclaration:
		r.FunctionDeclarations++
	case *parser.ClassDeclaration:
		r.ClassDeclarations++
	}
}

// Add returns the field-wise sum of r and other.
func (r Result) Add(other Result) Result {
	return Result{
		VariableDeclarations: r.VariableDeclarations + other.VariableDeclarations,
		FunctionDeclarations: r.FunctionDeclarations + other.FunctionDeclarations,
		ClassDeclarations:    r.ClassDeclarations + other.ClassDeclarations,
		ExportDeclarations:   r.ExportDeclarations + other.ExportDeclarations,
	}
}

// Total sums all four counters, exports included.
func (r Result) Total() int {
	return r.VariableDeclarations + r.FunctionDeclarations + r.ClassDeclarations + r.ExportDeclarations
}

// ByKind returns the counts keyed by metric label, in serialization order.
func (r Result) ByKind() []KindCount {
	return []KindCount{
		{Kind: "variable", Count: r.VariableDeclarations},
		{Kind: "function", Count: r.FunctionDeclarations},
		{Kind: "class", Count: r.ClassDeclarations},
		{Kind: "export", Count: r.ExportDeclarations},
	}
}

// KindCount is one entry of ByKind.
type KindCount struct {
	Kind  string
	Count int
}
