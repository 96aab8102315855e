package jsinv

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Node types the collector classifies. JavaScript and TypeScript grammars
// share them; "function" and "function_expression" both name the function
// expression depending on grammar version.
const (
	nodeIf                    = "if_statement"
	nodeClassDeclaration      = "class_declaration"
	nodeAbstractClassDecl     = "abstract_class_declaration"
	nodeClass                 = "class"
	nodeObject                = "object"
	nodeFunctionDeclaration   = "function_declaration"
	nodeGeneratorFunctionDecl = "generator_function_declaration"
	nodeFunction              = "function"
	nodeFunctionExpression    = "function_expression"
	nodeGeneratorFunction     = "generator_function"
	nodeArrowFunction         = "arrow_function"
	nodeMethodDefinition      = "method_definition"
	nodeExportStatement       = "export_statement"
	nodeComment               = "comment"
	nodeComputedPropertyName  = "computed_property_name"
	nodeString                = "string"
)

// collector walks a syntax tree once and sorts matching nodes into the
// report's four buckets. Every field comes from the matched node itself.
type collector struct {
	source []byte
	lines  *lineIndex
	report *Report
}

func collect(t *syntaxTree) *Report {
	c := &collector{source: t.source, lines: t.lines, report: newReport()}

	cursor := sitter.NewTreeCursor(t.root())
	defer cursor.Close()

	for {
		c.visit(cursor.CurrentNode())
		if cursor.GoToFirstChild() {
			continue
		}
		for !cursor.GoToNextSibling() {
			if !cursor.GoToParent() {
				return c.report
			}
		}
	}
}

func (c *collector) visit(n *sitter.Node) {
	// Anonymous nodes are tokens such as the "class" and "function" keywords.
	if !n.IsNamed() {
		return
	}

	r := c.report
	switch n.Type() {
	case nodeIf:
		r.Conditionals = append(r.Conditionals, Conditional{
			Position: c.pos(n),
			NodeType: n.Type(),
		})

	case nodeClassDeclaration, nodeAbstractClassDecl:
		r.Classes = append(r.Classes, ClassDefinition{
			Position: c.pos(n),
			NodeType: n.Type(),
			Name:     c.fieldText(n, "name"),
			Form:     FormDeclaration,
		})

	case nodeClass:
		r.Classes = append(r.Classes, ClassDefinition{
			Position: c.pos(n),
			NodeType: n.Type(),
			Name:     c.fieldText(n, "name"),
			Form:     expressionForm(n),
		})

	case nodeObject:
		r.Objects = append(r.Objects, ObjectLiteral{
			Position:      c.pos(n),
			NodeType:      n.Type(),
			PropertyCount: propertyCount(n),
		})

	case nodeFunctionDeclaration, nodeGeneratorFunctionDecl:
		r.Functions = append(r.Functions, FunctionDefinition{
			Position: c.pos(n),
			NodeType: n.Type(),
			Name:     c.fieldText(n, "name"),
			Form:     FormDeclaration,
		})

	case nodeFunction, nodeFunctionExpression, nodeGeneratorFunction:
		r.Functions = append(r.Functions, FunctionDefinition{
			Position: c.pos(n),
			NodeType: n.Type(),
			Name:     c.fieldText(n, "name"),
			Form:     expressionForm(n),
		})

	case nodeArrowFunction:
		// Arrow functions are anonymous; a binding such as
		// `const f = () => {}` is not consulted.
		r.Functions = append(r.Functions, FunctionDefinition{
			Position: c.pos(n),
			NodeType: n.Type(),
			Form:     FormArrow,
		})

	case nodeMethodDefinition:
		r.Functions = append(r.Functions, FunctionDefinition{
			Position: c.pos(n),
			NodeType: n.Type(),
			Name:     c.methodName(n),
			Form:     FormMethod,
		})
	}
}

// expressionForm is FormDeclaration for the class or function of an
// `export default` statement, which the grammar parses as an expression,
// and FormExpression everywhere else.
func expressionForm(n *sitter.Node) Form {
	parent := n.Parent()
	if parent == nil || parent.Type() != nodeExportStatement {
		return FormExpression
	}
	for i := 0; i < int(parent.ChildCount()); i++ {
		if parent.Child(i).Type() == "default" {
			return FormDeclaration
		}
	}
	return FormExpression
}

func (c *collector) pos(n *sitter.Node) Position {
	return c.lines.positionOf(n)
}

func (c *collector) fieldText(n *sitter.Node, field string) string {
	child := n.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(c.source)
}

// methodName returns the static key of a method. Computed keys have none.
func (c *collector) methodName(n *sitter.Node) string {
	key := n.ChildByFieldName("name")
	if key == nil {
		return ""
	}
	switch key.Type() {
	case nodeComputedPropertyName:
		return ""
	case nodeString:
		return strings.Trim(key.Content(c.source), `"'`)
	default:
		return key.Content(c.source)
	}
}

// propertyCount counts the immediate entries of an object literal: pairs,
// shorthand properties, methods and spread elements each count once.
func propertyCount(n *sitter.Node) int {
	count := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == nodeComment {
			continue
		}
		count++
	}
	return count
}
