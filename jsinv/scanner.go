package jsinv

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// DefaultIgnoreDirs returns the directories Scan skips by default.
func DefaultIgnoreDirs() map[string]struct{} {
	return map[string]struct{}{
		".git":             {},
		".hg":              {},
		".svn":             {},
		".jj":              {},
		"node_modules":     {},
		"bower_components": {},
		"vendor":           {},
		"dist":             {},
		"build":            {},
		"out":              {},
		".next":            {},
		".nuxt":            {},
		".cache":           {},
		".turbo":           {},
		".yarn":            {},
		"coverage":         {},
	}
}

// scannerConfig holds scanner configuration.
type scannerConfig struct {
	root       string
	languages  []Language
	ignoreDirs map[string]struct{}
	maxBytes   int64
}

// scanner discovers files for processing.
type scanner struct {
	cfg scannerConfig
}

// newScanner creates a new scanner with the given configuration.
func newScanner(cfg scannerConfig) *scanner {
	if cfg.ignoreDirs == nil {
		cfg.ignoreDirs = DefaultIgnoreDirs()
	}
	return &scanner{cfg: cfg}
}

// collect finds all matching files and returns them as FileJobs.
func (s *scanner) collect() ([]FileJob, error) {
	absRoot, err := filepath.Abs(s.cfg.root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	var jobs []FileJob
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if s.shouldIgnoreDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		language := s.languageFor(d.Name())
		if language == nil {
			return nil
		}

		if s.cfg.maxBytes > 0 {
			info, err := d.Info()
			if err != nil {
				// Skip files we can't stat
				return nil
			}
			if info.Size() > s.cfg.maxBytes {
				return nil
			}
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}

		jobs = append(jobs, FileJob{
			AbsPath:     path,
			DisplayPath: filepath.ToSlash(rel),
			Language:    language,
		})
		return nil
	})

	if err != nil {
		return nil, err
	}

	return jobs, nil
}

// collectSingle returns a single file as a FileJob. With exactly one
// configured language the extension is not checked.
func (s *scanner) collectSingle(filePath string) (FileJob, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return FileJob{}, fmt.Errorf("resolve path: %w", err)
	}

	language := s.languageFor(absPath)
	if language == nil && len(s.cfg.languages) == 1 {
		language = s.cfg.languages[0]
	}
	if language == nil {
		return FileJob{}, fmt.Errorf("unsupported file extension %q", filepath.Ext(absPath))
	}

	return FileJob{
		AbsPath:     absPath,
		DisplayPath: filepath.Base(absPath),
		Language:    language,
	}, nil
}

func (s *scanner) shouldIgnoreDir(name string) bool {
	_, ok := s.cfg.ignoreDirs[name]
	return ok
}

// languageFor returns the configured language handling name's extension.
func (s *scanner) languageFor(name string) Language {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return nil
	}
	for _, lang := range s.cfg.languages {
		for _, e := range lang.Extensions() {
			if ext == e {
				return lang
			}
		}
	}
	return nil
}
