package jsinv

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// JavaScript implements the Language interface for JavaScript source code.
type JavaScript struct{}

func init() {
	Register(&JavaScript{})
}

func (j *JavaScript) Name() string {
	return "javascript"
}

func (j *JavaScript) Extensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx"}
}

func (j *JavaScript) TreeSitterLang() *sitter.Language {
	return javascript.GetLanguage()
}
