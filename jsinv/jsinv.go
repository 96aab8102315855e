// Package jsinv inventories conditionals, classes, object literals and
// functions in JavaScript and TypeScript source using tree-sitter.
package jsinv

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
)

// Analyze parses source and returns the constructs it contains. The only
// error for a registered language and valid source type is a *ParseError;
// no partial report is returned with it.
func Analyze(source string, opts AnalyzeOptions) (*Report, error) {
	opts = opts.withDefaults()
	language, err := resolveLanguage(opts.Language)
	if err != nil {
		return nil, err
	}
	if err := opts.SourceType.validate(); err != nil {
		return nil, err
	}

	p := newParser(language, opts.SourceType)
	defer p.close()

	return analyzeBytes(p, []byte(source))
}

// AnalyzeFile reads path and analyzes its contents.
func AnalyzeFile(path string, opts AnalyzeOptions) (*Report, error) {
	if path == "" {
		return nil, errors.New("file is required")
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Analyze(string(source), opts)
}

func analyzeBytes(p *parser, source []byte) (*Report, error) {
	tree, err := p.parse(source)
	if err != nil {
		return nil, err
	}
	defer tree.close()
	return collect(tree), nil
}

// Scan analyzes every supported file under a directory (or a single file)
// and returns one FileReport per file, sorted by path. A file that fails
// to parse yields a FileReport with Error set; it does not stop the scan.
func Scan(opts ScanOptions) ([]FileReport, error) {
	if opts.SourceType == "" {
		opts.SourceType = SourceModule
	}
	if opts.Path == "" {
		opts.Path = "."
	}
	if opts.Jobs == 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if err := opts.SourceType.validate(); err != nil {
		return nil, err
	}

	var languages []Language
	if opts.Language != "" {
		language, err := resolveLanguage(opts.Language)
		if err != nil {
			return nil, err
		}
		languages = []Language{language}
	} else {
		for _, name := range List() {
			languages = append(languages, Get(name))
		}
	}

	var files []FileJob
	if opts.File != "" {
		sc := newScanner(scannerConfig{languages: languages})
		job, err := sc.collectSingle(opts.File)
		if err != nil {
			return nil, err
		}
		files = []FileJob{job}
	} else {
		sc := newScanner(scannerConfig{
			root:      opts.Path,
			languages: languages,
			maxBytes:  opts.MaxBytes,
		})
		var err error
		files, err = sc.collect()
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return []FileReport{}, nil
	}

	results := runWorkers(files, opts.Jobs, opts.SourceType, analyzeJob)
	sort.Slice(results, func(i, j int) bool {
		return results[i].File < results[j].File
	})
	return results, nil
}

func analyzeJob(job FileJob, p *parser) FileReport {
	result := FileReport{File: job.DisplayPath}

	tree, err := p.parseFile(job.AbsPath)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer tree.close()

	result.Report = collect(tree)
	return result
}

// runWorkers fans files out to a bounded pool. Each worker keeps one
// parser per language; parsers are never shared between goroutines.
func runWorkers[T any](
	files []FileJob,
	jobs int,
	sourceType SourceType,
	process func(FileJob, *parser) T,
) []T {
	if len(files) == 0 {
		return nil
	}

	results := make(chan T, 128)
	jobQueue := make(chan FileJob, 128)
	var wg sync.WaitGroup

	workerCount := jobs
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(files) {
		workerCount = len(files)
	}

	worker := func() {
		defer wg.Done()
		parsers := make(map[string]*parser)
		defer func() {
			for _, p := range parsers {
				p.close()
			}
		}()
		for job := range jobQueue {
			p, ok := parsers[job.Language.Name()]
			if !ok {
				p = newParser(job.Language, sourceType)
				parsers[job.Language.Name()] = p
			}
			results <- process(job, p)
		}
	}

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go worker()
	}

	go func() {
		for _, f := range files {
			jobQueue <- f
		}
		close(jobQueue)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []T
	for r := range results {
		all = append(all, r)
	}
	return all
}

func resolveLanguage(name string) (Language, error) {
	language := Get(name)
	if language == nil {
		return nil, errors.New(name + " language not registered")
	}
	return language, nil
}
