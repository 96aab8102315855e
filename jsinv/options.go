package jsinv

import "fmt"

// SourceType selects how top-level code is interpreted.
type SourceType string

const (
	// SourceModule treats input as an ES module: import/export allowed,
	// strict mode implied.
	SourceModule SourceType = "module"

	// SourceScript treats input as a classic script.
	SourceScript SourceType = "script"
)

const (
	defaultLanguage = "javascript"
	defaultMaxBytes = 2 * 1024 * 1024
)

// AnalyzeOptions configures the Analyze and AnalyzeFile functions.
type AnalyzeOptions struct {
	// Language selects the grammar (e.g., "javascript", "typescript", "tsx").
	// Defaults to "javascript".
	Language string

	// SourceType is "module" or "script".
	// Defaults to "module".
	SourceType SourceType
}

// ScanOptions configures the Scan function.
type ScanOptions struct {
	// Language restricts the scan to one registered language.
	// If empty, every registered language is scanned and each file is
	// parsed with the language matching its extension.
	Language string

	// SourceType is "module" or "script".
	// Defaults to "module".
	SourceType SourceType

	// Path is the root directory to scan for files.
	// If empty, current directory is used.
	Path string

	// File is a single file to analyze.
	// If set, Path is ignored.
	File string

	// Jobs is the number of parallel workers.
	// If 0, defaults to number of CPUs.
	Jobs int

	// MaxBytes skips files larger than this size.
	// If 0, defaults to 2 MiB.
	MaxBytes int64
}

func (s SourceType) validate() error {
	switch s {
	case SourceModule, SourceScript:
		return nil
	default:
		return fmt.Errorf("unknown source type %q (want module or script)", s)
	}
}

func (o AnalyzeOptions) withDefaults() AnalyzeOptions {
	if o.Language == "" {
		o.Language = defaultLanguage
	}
	if o.SourceType == "" {
		o.SourceType = SourceModule
	}
	return o
}
