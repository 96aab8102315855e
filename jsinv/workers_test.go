package jsinv

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRunWorkers tests the generic worker pool for concurrency correctness.
// Run with -race flag to detect race conditions: go test -race
func TestRunWorkers(t *testing.T) {
	tests := []struct {
		name      string
		fileCount int
		jobs      int
	}{
		{"single_file_single_worker", 1, 1},
		{"multiple_files_single_worker", 5, 1},
		{"multiple_files_multiple_workers", 10, 4},
		{"more_workers_than_files", 3, 10},
		{"many_files_high_concurrency", 50, 16},
		{"zero_jobs_defaults_to_one", 5, 0},
		{"empty_files", 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tmpDir := t.TempDir()

			expectedFuncs := generateTestFiles(t, tmpDir, tc.fileCount)

			if tc.fileCount == 0 {
				results := runWorkers([]FileJob{}, tc.jobs, SourceModule, extractFunctionNames)
				require.Empty(t, results)
				return
			}

			scanner := newScanner(scannerConfig{
				root:      tmpDir,
				languages: []Language{Get("javascript"), Get("typescript")},
				maxBytes:  defaultMaxBytes,
			})

			files, err := scanner.collect()
			require.NoError(t, err)
			require.Len(t, files, tc.fileCount)

			results := runWorkers(files, tc.jobs, SourceModule, extractFunctionNames)

			require.Len(t, results, tc.fileCount, "should have one result per file")

			// Order varies with concurrency.
			sort.Strings(results)
			sort.Strings(expectedFuncs)

			require.Equal(t, expectedFuncs, results, "all functions should be found exactly once")
		})
	}
}

// generateTestFiles creates N source files, alternating JavaScript and
// TypeScript, each declaring one unique function.
// Returns the expected function names.
func generateTestFiles(t *testing.T, dir string, count int) []string {
	t.Helper()

	var expected []string
	for i := range count {
		funcName := fmt.Sprintf("func%d", i)
		fileName := fmt.Sprintf("file_%d.js", i)
		content := fmt.Sprintf("export function %s() { return { id: %d }; }\n", funcName, i)
		if i%2 == 1 {
			fileName = fmt.Sprintf("file_%d.ts", i)
			content = fmt.Sprintf("export function %s(): object { return { id: %d }; }\n", funcName, i)
		}

		err := os.WriteFile(filepath.Join(dir, fileName), []byte(content), 0644)
		require.NoError(t, err)

		expected = append(expected, funcName)
	}

	return expected
}

// extractFunctionNames is a process function returning the single declared
// function name of a file.
func extractFunctionNames(job FileJob, p *parser) string {
	result := analyzeJob(job, p)
	if result.Report == nil || len(result.Report.Functions) != 1 {
		return ""
	}
	return result.Report.Functions[0].Name
}

func TestScanSkipsLargeFiles(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "small.js"), []byte("if (a) {}\n"), 0644))
	big := make([]byte, 0, 4096)
	for len(big) < 4000 {
		big = append(big, "if (b) {}\n"...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "big.js"), big, 0644))

	results, err := Scan(ScanOptions{Path: tmpDir, MaxBytes: 1024, Jobs: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "small.js", results[0].File)
	require.Len(t, results[0].Report.Conditionals, 1)
}

func TestScanUnsupportedSingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	_, err := Scan(ScanOptions{File: path})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported file extension")
}
