package parser

// Program is the ordered list of top-level statements of one source unit.
type Program struct {
	Language Language
	Body     []Statement
}

type Location struct {
	Line   int
	Column int
}

// StatementKind tags the variants of Statement.
type StatementKind int

const (
	KindOther StatementKind = iota
	KindVariable
	KindFunction
	KindClass
	KindExportDefault
	KindExportAll
	KindExportNamed
)

func (k StatementKind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindExportDefault:
		return "export_default"
	case KindExportAll:
		return "export_all"
	case KindExportNamed:
		return "export_named"
	default:
		return "other"
	}
}

// Statement is a closed sum type: only the variants declared in this file
// implement it. Consumers switch on the concrete type and must keep a
// default arm for OtherStatement.
type Statement interface {
	Kind() StatementKind
	Pos() Location
	statementNode()
}

// Declaration is the subset of statements that an export-named statement
// may carry inline.
type Declaration interface {
	Statement
	declarationNode()
}

type Declarator struct {
	// Name is the source text of the binding target, which may be a
	// destructuring pattern.
	Name string
	Loc  Location
}

type VariableDeclaration struct {
	Keyword     string // var, let, const
	Declarators []Declarator
	Declare     bool // from a TypeScript `declare` statement
	Loc         Location
}

type FunctionDeclaration struct {
	Name      string
	Async     bool
	Generator bool
	Declare   bool
	Loc       Location
}

type ClassDeclaration struct {
	Name    string
	Declare bool
	Loc     Location
}

// OtherDeclaration is an inline export payload that is neither a variable,
// function nor class, e.g. a TypeScript interface or enum.
type OtherDeclaration struct {
	NodeKind string
	Loc      Location
}

type ExportDefault struct {
	Loc Location
}

type ExportAll struct {
	Source string
	Loc    Location
}

type ExportNamed struct {
	Declaration Declaration // nil for `export { a, b }`
	Source      string
	Loc         Location
}

type OtherStatement struct {
	NodeKind string
	Loc      Location
}

func (*VariableDeclaration) Kind() StatementKind { return KindVariable }
func (*FunctionDeclaration) Kind() StatementKind { return KindFunction }
func (*ClassDeclaration) Kind() StatementKind    { return KindClass }
func (*OtherDeclaration) Kind() StatementKind    { return KindOther }
func (*ExportDefault) Kind() StatementKind       { return KindExportDefault }
func (*ExportAll) Kind() StatementKind           { return KindExportAll }
func (*ExportNamed) Kind() StatementKind         { return KindExportNamed }
func (*OtherStatement) Kind() StatementKind      { return KindOther }

func (s *VariableDeclaration) Pos() Location { return s.Loc }
func (s *FunctionDeclaration) Pos() Location { return s.Loc }
func (s *ClassDeclaration) Pos() Location    { return s.Loc }
func (s *OtherDeclaration) Pos() Location    { return s.Loc }
func (s *ExportDefault) Pos() Location       { return s.Loc }
func (s *ExportAll) Pos() Location           { return s.Loc }
func (s *ExportNamed) Pos() Location         { return s.Loc }
func (s *OtherStatement) Pos() Location      { return s.Loc }

func (*VariableDeclaration) statementNode() {}
func (*FunctionDeclaration) statementNode() {}
func (*ClassDeclaration) statementNode()    {}
func (*OtherDeclaration) statementNode()    {}
func (*ExportDefault) statementNode()       {}
func (*ExportAll) statementNode()           {}
func (*ExportNamed) statementNode()         {}
func (*OtherStatement) statementNode()      {}

func (*VariableDeclaration) declarationNode() {}
func (*FunctionDeclaration) declarationNode() {}
func (*ClassDeclaration) declarationNode()    {}
func (*OtherDeclaration) declarationNode()    {}
