package parser

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// lowering converts a tree-sitter syntax tree into the Program model. Only
// the program's direct children and one level of export payload are read.
type lowering struct {
	source []byte
}

func lowerProgram(root *sitter.Node, source []byte, lang Language) Program {
	l := &lowering{source: source}
	program := Program{Language: lang, Body: make([]Statement, 0, root.NamedChildCount())}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil || child.IsExtra() || child.Kind() == "hash_bang_line" {
			continue
		}
		program.Body = append(program.Body, l.statement(child))
	}
	return program
}

func (l *lowering) statement(node *sitter.Node) Statement {
	if node.Kind() == "export_statement" {
		return l.export(node)
	}
	if decl, ok := l.declaration(node); ok {
		return decl
	}
	return &OtherStatement{NodeKind: node.Kind(), Loc: l.location(node)}
}

// declaration lowers the three counted declaration kinds. ok is false for
// every other node kind.
func (l *lowering) declaration(node *sitter.Node) (Declaration, bool) {
	switch node.Kind() {
	case "lexical_declaration", "variable_declaration":
		return l.variable(node), true
	case "function_declaration", "generator_function_declaration", "function_signature":
		return &FunctionDeclaration{
			Name:      l.fieldText(node, "name"),
			Async:     l.hasToken(node, "async"),
			Generator: node.Kind() == "generator_function_declaration",
			Loc:       l.location(node),
		}, true
	case "class_declaration", "abstract_class_declaration":
		return &ClassDeclaration{
			Name: l.fieldText(node, "name"),
			Loc:  l.location(node),
		}, true
	case "ambient_declaration":
		return l.ambient(node)
	}
	return nil, false
}

// ambient unwraps `declare <declaration>`. `declare global {}` and
// `declare module` forms carry no counted declaration.
func (l *lowering) ambient(node *sitter.Node) (Declaration, bool) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "ambient_declaration" {
			continue
		}
		decl, ok := l.declaration(child)
		if !ok {
			continue
		}
		switch d := decl.(type) {
		case *VariableDeclaration:
			d.Declare = true
		case *FunctionDeclaration:
			d.Declare = true
		case *ClassDeclaration:
			d.Declare = true
		}
		return decl, true
	}
	return nil, false
}

func (l *lowering) variable(node *sitter.Node) *VariableDeclaration {
	decl := &VariableDeclaration{Loc: l.location(node)}
	if first := node.Child(0); first != nil {
		decl.Keyword = first.Kind()
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() != "variable_declarator" {
			continue
		}
		decl.Declarators = append(decl.Declarators, Declarator{
			Name: l.fieldText(child, "name"),
			Loc:  l.location(child),
		})
	}
	return decl
}

func (l *lowering) export(node *sitter.Node) Statement {
	loc := l.location(node)

	var hasDefault, hasStar, hasAssign, hasNamespace bool
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "default":
			hasDefault = true
		case "*", "namespace_export":
			hasStar = true
		case "=":
			hasAssign = true
		case "namespace":
			hasNamespace = true
		}
	}

	switch {
	case hasDefault:
		return &ExportDefault{Loc: loc}
	case hasStar:
		return &ExportAll{Source: l.exportSource(node), Loc: loc}
	case hasAssign, hasNamespace:
		// TypeScript `export = x` and `export as namespace X` are not
		// ECMAScript export declarations.
		return &OtherStatement{NodeKind: node.Kind(), Loc: loc}
	}

	named := &ExportNamed{Source: l.exportSource(node), Loc: loc}
	if inner := node.ChildByFieldName("declaration"); inner != nil {
		if decl, ok := l.declaration(inner); ok {
			named.Declaration = decl
		} else {
			named.Declaration = &OtherDeclaration{NodeKind: inner.Kind(), Loc: l.location(inner)}
		}
	}
	return named
}

func (l *lowering) exportSource(node *sitter.Node) string {
	src := node.ChildByFieldName("source")
	if src == nil {
		return ""
	}
	return strings.Trim(l.text(src), "\"'`")
}

func (l *lowering) hasToken(node *sitter.Node, kind string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.Kind() == kind {
			return true
		}
	}
	return false
}

func (l *lowering) fieldText(node *sitter.Node, field string) string {
	return l.text(node.ChildByFieldName(field))
}

func (l *lowering) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(l.source[node.StartByte():node.EndByte()])
}

func (l *lowering) location(node *sitter.Node) Location {
	pos := node.StartPosition()
	return Location{Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}
}

// syntaxIssue describes the first ERROR or MISSING node in a tree.
type syntaxIssue struct {
	Message string
	Loc     Location
}

func firstSyntaxIssue(root *sitter.Node, source []byte) (syntaxIssue, bool) {
	if root == nil || !root.HasError() {
		return syntaxIssue{}, false
	}
	l := &lowering{source: source}
	var walk func(node *sitter.Node) (syntaxIssue, bool)
	walk = func(node *sitter.Node) (syntaxIssue, bool) {
		if node.IsMissing() {
			return syntaxIssue{Message: fmt.Sprintf("missing %q", node.Kind()), Loc: l.location(node)}, true
		}
		if node.IsError() {
			return syntaxIssue{Message: "unexpected " + snippet(l.text(node)), Loc: l.location(node)}, true
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil || !child.HasError() {
				continue
			}
			if issue, ok := walk(child); ok {
				return issue, true
			}
		}
		return syntaxIssue{}, false
	}
	if issue, ok := walk(root); ok {
		return issue, true
	}
	return syntaxIssue{Message: "syntax error", Loc: l.location(root)}, true
}

func snippet(text string) string {
	const limit = 24
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "input"
	}
	if runes := []rune(text); len(runes) > limit {
		text = string(runes[:limit]) + "..."
	}
	return fmt.Sprintf("%q", text)
}
