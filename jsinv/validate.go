package jsinv

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// labelSet is the chain of labels enclosing a statement within one
// function body.
type labelSet struct {
	name string
	loop bool
	next *labelSet
}

func (l *labelSet) find(name string) *labelSet {
	for ; l != nil; l = l.next {
		if l.name == name {
			return l
		}
	}
	return nil
}

// scope is what the enclosing syntax allows at a node.
type scope struct {
	inFunction bool
	inLoop     bool
	inSwitch   bool
	ambient    bool
	labels     *labelSet
}

// validator reports the early errors tree-sitter accepts without
// complaint: misplaced return, break and continue, const without an
// initializer, and the strict mode restrictions of modules.
type validator struct {
	lines  *lineIndex
	strict bool
}

func validate(root *sitter.Node, lines *lineIndex, sourceType SourceType) *ParseError {
	v := &validator{lines: lines, strict: sourceType == SourceModule}
	return v.visit(root, scope{})
}

func (v *validator) visit(n *sitter.Node, sc scope) *ParseError {
	if perr := v.check(n, sc); perr != nil {
		return perr
	}

	inner := v.enter(n, sc)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if perr := v.visit(n.NamedChild(i), inner); perr != nil {
			return perr
		}
	}
	return nil
}

// enter returns the scope for the children of n.
func (v *validator) enter(n *sitter.Node, sc scope) scope {
	switch n.Type() {
	case nodeFunctionDeclaration, nodeGeneratorFunctionDecl,
		nodeFunction, nodeFunctionExpression, nodeGeneratorFunction,
		nodeArrowFunction, nodeMethodDefinition:
		return scope{inFunction: true, ambient: sc.ambient}
	case "class_static_block":
		return scope{ambient: sc.ambient}
	case "for_statement", "for_in_statement", "while_statement", "do_statement":
		sc.inLoop = true
	case "switch_statement":
		sc.inSwitch = true
	case "labeled_statement":
		sc.labels = &labelSet{
			name: v.text(n.ChildByFieldName("label")),
			loop: isLoop(n.ChildByFieldName("body")),
			next: sc.labels,
		}
	case "ambient_declaration":
		sc.ambient = true
	}
	return sc
}

func (v *validator) check(n *sitter.Node, sc scope) *ParseError {
	switch n.Type() {
	case "return_statement":
		if !sc.inFunction {
			return v.errorAt(n, "'return' outside of function")
		}

	case "break_statement":
		if label := n.ChildByFieldName("label"); label != nil {
			if sc.labels.find(v.text(label)) == nil {
				return v.errorAt(n, "Unsyntactic break")
			}
		} else if !sc.inLoop && !sc.inSwitch {
			return v.errorAt(n, "Unsyntactic break")
		}

	case "continue_statement":
		if label := n.ChildByFieldName("label"); label != nil {
			if l := sc.labels.find(v.text(label)); l == nil || !l.loop {
				return v.errorAt(n, "Unsyntactic continue")
			}
		} else if !sc.inLoop {
			return v.errorAt(n, "Unsyntactic continue")
		}

	case "lexical_declaration":
		if sc.ambient || n.ChildCount() == 0 || n.Child(0).Type() != "const" {
			return nil
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			decl := n.NamedChild(i)
			if decl.Type() == "variable_declarator" && decl.ChildByFieldName("value") == nil {
				return v.errorAt(decl, "Missing initializer in const declaration")
			}
		}

	case "with_statement":
		if v.strict {
			return v.errorAt(n, "'with' in strict mode")
		}

	case "number":
		if v.strict && isLegacyOctal(v.text(n)) {
			return v.errorAt(n, "Invalid number")
		}

	case "unary_expression":
		if v.strict && n.ChildCount() > 0 && n.Child(0).Type() == "delete" &&
			isIdentifier(n.ChildByFieldName("argument")) {
			return v.errorAt(n, "Deleting local variable in strict mode")
		}
	}
	return nil
}

func (v *validator) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(v.lines.source)
}

func (v *validator) errorAt(n *sitter.Node, format string, args ...any) *ParseError {
	return parseErrorAt(v.lines.positionOf(n), format, args...)
}

func isLoop(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "for_statement", "for_in_statement", "while_statement", "do_statement":
		return true
	}
	return false
}

// isLegacyOctal reports whether a numeric literal has a leading zero
// followed by a digit, as in 0123 or 08.
func isLegacyOctal(text string) bool {
	return len(text) > 1 && text[0] == '0' && text[1] >= '0' && text[1] <= '9'
}

// isIdentifier reports whether n is a plain identifier, possibly wrapped in
// parentheses.
func isIdentifier(n *sitter.Node) bool {
	for n != nil && n.Type() == "parenthesized_expression" && n.NamedChildCount() == 1 {
		n = n.NamedChild(0)
	}
	return n != nil && n.Type() == "identifier"
}
