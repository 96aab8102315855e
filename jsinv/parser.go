package jsinv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// parser wraps a tree-sitter parser for a specific language. It is the
// tree provider for the collector: it either returns a tree free of
// syntax errors or a *ParseError.
type parser struct {
	parser     *sitter.Parser
	lang       Language
	sourceType SourceType
}

// newParser creates a new parser for the given language.
func newParser(language Language, sourceType SourceType) *parser {
	p := sitter.NewParser()
	p.SetLanguage(language.TreeSitterLang())
	return &parser{
		parser:     p,
		lang:       language,
		sourceType: sourceType,
	}
}

func (p *parser) close() {
	p.parser.Close()
}

// syntaxTree is a parsed source that passed every check. Positions are
// resolved through lines, not through tree-sitter points.
type syntaxTree struct {
	tree   *sitter.Tree
	source []byte
	lines  *lineIndex
}

func (t *syntaxTree) root() *sitter.Node {
	return t.tree.RootNode()
}

func (t *syntaxTree) close() {
	t.tree.Close()
}

// parse parses source code and returns the syntax tree.
func (p *parser) parse(source []byte) (*syntaxTree, error) {
	if !utf8.Valid(source) {
		return nil, &ParseError{Message: "invalid UTF-8 input"}
	}
	source = normalizeNewlines(source)

	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("tree-sitter parse failed: %v", err), Err: err}
	}
	if tree == nil {
		return nil, &ParseError{Message: "tree-sitter returned no tree"}
	}

	t := &syntaxTree{tree: tree, source: source, lines: newLineIndex(source)}
	root := t.root()

	// Errors are built while the tree is still alive; nodes point into it.
	var perr *ParseError
	if root.HasError() {
		perr = syntaxError(root, t.lines)
	} else if perr = p.checkSourceType(root, t.lines); perr == nil {
		perr = validate(root, t.lines, p.sourceType)
	}
	if perr != nil {
		t.close()
		return nil, perr
	}
	return t, nil
}

// parseFile reads and parses a file.
func (p *parser) parseFile(path string) (*syntaxTree, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return p.parse(source)
}

// normalizeNewlines turns each lone carriage return into a line feed, the
// only line ending tree-sitter knows. Byte offsets are unchanged.
func normalizeNewlines(source []byte) []byte {
	if bytes.IndexByte(source, '\r') < 0 {
		return source
	}
	out := bytes.Clone(source)
	for i, b := range out {
		if b == '\r' && (i+1 == len(out) || out[i+1] != '\n') {
			out[i] = '\n'
		}
	}
	return out
}

// syntaxError describes the first ERROR or MISSING node under root.
func syntaxError(root *sitter.Node, lines *lineIndex) *ParseError {
	bad := findSyntaxError(root)
	if bad == nil {
		return parseErrorAt(lines.positionOf(root), "syntax error")
	}
	pos := lines.positionOf(bad)
	if bad.IsMissing() {
		return parseErrorAt(pos, "missing %q", bad.Type())
	}
	return parseErrorAt(pos, "unexpected %q", snippet(bad.Content(lines.source)))
}

func findSyntaxError(n *sitter.Node) *sitter.Node {
	if n.IsMissing() || n.Type() == "ERROR" {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if found := findSyntaxError(child); found != nil {
			return found
		}
	}
	return nil
}

// checkSourceType rejects module syntax in scripts.
func (p *parser) checkSourceType(root *sitter.Node, lines *lineIndex) *ParseError {
	if p.sourceType != SourceScript {
		return nil
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement", "export_statement":
			return parseErrorAt(lines.positionOf(child),
				"'import' and 'export' may appear only with 'sourceType: module'")
		}
	}
	return nil
}

// lineIndex maps byte offsets to positions. \n, \r\n, a lone \r, U+2028
// and U+2029 each end a line.
type lineIndex struct {
	source []byte
	starts []int
}

func newLineIndex(source []byte) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(source); {
		switch {
		case source[i] == '\n':
			i++
		case source[i] == '\r':
			i++
			if i < len(source) && source[i] == '\n' {
				i++
			}
		case source[i] == 0xE2 && i+2 < len(source) && source[i+1] == 0x80 &&
			(source[i+2] == 0xA8 || source[i+2] == 0xA9):
			i += 3
		default:
			i++
			continue
		}
		starts = append(starts, i)
	}
	return &lineIndex{source: source, starts: starts}
}

// position returns the 1-based line and 0-based UTF-16 column of offset.
func (l *lineIndex) position(offset int) Position {
	if offset > len(l.source) {
		offset = len(l.source)
	}
	line := sort.SearchInts(l.starts, offset+1) - 1

	column := 0
	for i := l.starts[line]; i < offset; {
		r, size := utf8.DecodeRune(l.source[i:])
		column += utf16.RuneLen(r)
		i += size
	}
	return Position{Line: line + 1, Column: column}
}

func (l *lineIndex) positionOf(n *sitter.Node) Position {
	return l.position(int(n.StartByte()))
}

func snippet(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSuffix(text[:i], "\r")
	}
	if runes := []rune(text); len(runes) > 20 {
		text = string(runes[:20]) + "..."
	}
	return text
}
