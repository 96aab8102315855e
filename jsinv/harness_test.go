package jsinv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
)

func TestDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		tmpDir := t.TempDir()

		// Track files created by "file" commands
		files := make(map[string]string) // name -> abs path

		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "file":
				return handleFile(t, d, tmpDir, files)
			case "analyze":
				return handleAnalyze(t, d)
			case "scan":
				return handleScan(t, d, tmpDir, files)
			default:
				t.Fatalf("unknown command: %s", d.Cmd)
				return ""
			}
		})
	})
}

// handleFile creates a file in the temp directory
func handleFile(
	t *testing.T, d *datadriven.TestData, tmpDir string, files map[string]string,
) string {
	var name string
	d.ScanArgs(t, "name", &name)

	absPath := filepath.Join(tmpDir, name)

	err := os.MkdirAll(filepath.Dir(absPath), 0755)
	require.NoError(t, err)

	err = os.WriteFile(absPath, []byte(d.Input), 0644)
	require.NoError(t, err)

	files[name] = absPath
	return ""
}

// handleAnalyze runs Analyze() on the command input.
//
//	analyze [lang=<name>] [source-type=<module|script>] [details]
func handleAnalyze(t *testing.T, d *datadriven.TestData) string {
	opts := AnalyzeOptions{}
	if d.HasArg("lang") {
		d.ScanArgs(t, "lang", &opts.Language)
	}
	if d.HasArg("source-type") {
		var st string
		d.ScanArgs(t, "source-type", &st)
		opts.SourceType = SourceType(st)
	}

	report, err := Analyze(d.Input, opts)
	if err != nil {
		if !IsParseError(err) {
			return fmt.Sprintf("error: %s", err)
		}
		require.Nil(t, report, "no partial report on parse error")
		if d.HasArg("details") {
			return fmt.Sprintf("parse error: %s", err)
		}
		return "parse error"
	}

	return formatReport(report)
}

// handleScan runs Scan() over the files created so far.
//
//	scan [lang=<name>] [file=<name>]
func handleScan(
	t *testing.T, d *datadriven.TestData, tmpDir string, files map[string]string,
) string {
	opts := ScanOptions{
		Path: tmpDir,
		Jobs: 2,
	}

	if d.HasArg("lang") {
		d.ScanArgs(t, "lang", &opts.Language)
	}

	if d.HasArg("file") {
		var fileName string
		d.ScanArgs(t, "file", &fileName)
		opts.File = files[fileName]
		opts.Path = ""
	}

	results, err := Scan(opts)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}

	return formatScanResults(results)
}

// formatReport prints one line per record, bucket by bucket.
func formatReport(r *Report) string {
	if r.Len() == 0 {
		return "(empty report)"
	}

	var lines []string
	for _, c := range r.Conditionals {
		lines = append(lines, fmt.Sprintf("conditional %s", formatPos(c.Position)))
	}
	for _, c := range r.Classes {
		lines = append(lines, fmt.Sprintf("class %s %s %s", c.Form, displayName(c.Name), formatPos(c.Position)))
	}
	for _, o := range r.Objects {
		lines = append(lines, fmt.Sprintf("object %s properties=%d", formatPos(o.Position), o.PropertyCount))
	}
	for _, f := range r.Functions {
		lines = append(lines, fmt.Sprintf("function %s %s %s", f.Form, displayName(f.Name), formatPos(f.Position)))
	}
	return strings.Join(lines, "\n")
}

func formatScanResults(results []FileReport) string {
	if len(results) == 0 {
		return "(no files)"
	}

	var lines []string
	for _, fr := range results {
		if fr.Error != "" {
			lines = append(lines, fmt.Sprintf("%s: error", fr.File))
			continue
		}
		s := fr.Report.Summary()
		lines = append(lines, fmt.Sprintf("%s: conditionals=%d classes=%d objects=%d functions=%d",
			fr.File, s.Conditionals, s.Classes, s.Objects, s.Functions))
	}
	return strings.Join(lines, "\n")
}

func formatPos(p Position) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

func displayName(name string) string {
	if name == "" {
		return "<anonymous>"
	}
	return name
}
