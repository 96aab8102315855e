package jsinv

import "sort"

// Position represents a location in a source file.
// Line is 1-based; Column is 0-based and counted in UTF-16 code units.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Before reports whether p comes strictly before q in the source.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// Category identifies one of the four construct kinds.
type Category string

const (
	CategoryConditional Category = "conditional"
	CategoryClass       Category = "class"
	CategoryObject      Category = "object"
	CategoryFunction    Category = "function"
)

// Form distinguishes the syntactic form of a class or function.
type Form string

const (
	FormDeclaration Form = "declaration"
	FormExpression  Form = "expression"
	FormArrow       Form = "arrow"
	FormMethod      Form = "method"
)

// Construct is implemented by the four record types and nothing else.
type Construct interface {
	Category() Category
	Pos() Position
	construct()
}

// Conditional records an if statement.
type Conditional struct {
	Position Position `json:"position"`
	NodeType string   `json:"node_type"`
}

// ClassDefinition records a class declaration or class expression.
// Name is empty for anonymous class expressions.
type ClassDefinition struct {
	Position Position `json:"position"`
	NodeType string   `json:"node_type"`
	Name     string   `json:"name,omitempty"`
	Form     Form     `json:"form"`
}

// ObjectLiteral records an object literal expression.
// PropertyCount counts immediate entries only; nested literals are
// recorded on their own.
type ObjectLiteral struct {
	Position      Position `json:"position"`
	NodeType      string   `json:"node_type"`
	PropertyCount int      `json:"property_count"`
}

// FunctionDefinition records a function declaration, function expression,
// arrow function or method. Name is empty when the syntax gives none;
// arrow functions never carry a name.
type FunctionDefinition struct {
	Position Position `json:"position"`
	NodeType string   `json:"node_type"`
	Name     string   `json:"name,omitempty"`
	Form     Form     `json:"form"`
}

func (Conditional) Category() Category        { return CategoryConditional }
func (ClassDefinition) Category() Category    { return CategoryClass }
func (ObjectLiteral) Category() Category      { return CategoryObject }
func (FunctionDefinition) Category() Category { return CategoryFunction }

func (c Conditional) Pos() Position        { return c.Position }
func (c ClassDefinition) Pos() Position    { return c.Position }
func (o ObjectLiteral) Pos() Position      { return o.Position }
func (f FunctionDefinition) Pos() Position { return f.Position }

func (Conditional) construct()        {}
func (ClassDefinition) construct()    {}
func (ObjectLiteral) construct()      {}
func (FunctionDefinition) construct() {}

// Report is the result of analyzing one source text. Each slice is in
// traversal (pre-)order.
type Report struct {
	Conditionals []Conditional        `json:"conditionals"`
	Classes      []ClassDefinition    `json:"classes"`
	Objects      []ObjectLiteral      `json:"objects"`
	Functions    []FunctionDefinition `json:"functions"`
}

func newReport() *Report {
	return &Report{
		Conditionals: []Conditional{},
		Classes:      []ClassDefinition{},
		Objects:      []ObjectLiteral{},
		Functions:    []FunctionDefinition{},
	}
}

// Len returns the total number of records.
func (r *Report) Len() int {
	return len(r.Conditionals) + len(r.Classes) + len(r.Objects) + len(r.Functions)
}

// Constructs returns every record in source position order.
func (r *Report) Constructs() []Construct {
	all := make([]Construct, 0, r.Len())
	for _, c := range r.Conditionals {
		all = append(all, c)
	}
	for _, c := range r.Classes {
		all = append(all, c)
	}
	for _, o := range r.Objects {
		all = append(all, o)
	}
	for _, f := range r.Functions {
		all = append(all, f)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Pos().Before(all[j].Pos())
	})
	return all
}

// Summary holds per-category record counts.
type Summary struct {
	Conditionals int `json:"conditionals"`
	Classes      int `json:"classes"`
	Objects      int `json:"objects"`
	Functions    int `json:"functions"`
}

// Summary returns the number of records in each category.
func (r *Report) Summary() Summary {
	return Summary{
		Conditionals: len(r.Conditionals),
		Classes:      len(r.Classes),
		Objects:      len(r.Objects),
		Functions:    len(r.Functions),
	}
}

// FileReport is the per-file output of Scan. Exactly one of Report and
// Error is set.
type FileReport struct {
	File   string  `json:"file"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// FileJob represents a file to be processed.
type FileJob struct {
	AbsPath     string
	DisplayPath string
	Language    Language
}
