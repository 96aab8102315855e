package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arjunmahishi/jsinv/jsinv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(context.Background(), append([]string{"jsinv"}, args...))
	return stdout.String(), err
}

func TestAnalyzeStdin(t *testing.T) {
	out, err := runApp(t, "if (x) { y(); }\nconst g = () => ({z: 1});\n", "analyze", "--compact")
	require.NoError(t, err)

	var report jsinv.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Conditionals, 1)
	require.Len(t, report.Objects, 1)
	require.Equal(t, 1, report.Objects[0].PropertyCount)
	require.Len(t, report.Functions, 1)
	require.Equal(t, jsinv.FormArrow, report.Functions[0].Form)
}

func TestAnalyzeFileLanguageFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shape.ts")
	require.NoError(t, os.WriteFile(path, []byte("class Shape { area(): number { return 0; } }\n"), 0644))

	out, err := runApp(t, "", "analyze", "--file", path, "--summary")
	require.NoError(t, err)
	require.JSONEq(t, `{"conditionals": 0, "classes": 1, "objects": 0, "functions": 1}`, out)
}

func TestAnalyzeParseError(t *testing.T) {
	out, err := runApp(t, "if (x {", "analyze")
	require.Error(t, err)
	require.True(t, jsinv.IsParseError(err))
	require.Empty(t, out)
}

func TestAnalyzeScriptSourceType(t *testing.T) {
	_, err := runApp(t, `import a from "a";`, "analyze", "--source-type", "script")
	require.Error(t, err)
	require.Contains(t, err.Error(), "sourceType: module")
}

func TestScanStrict(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.js"), []byte("function ok() {}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.js"), []byte("function (\n"), 0644))

	out, err := runApp(t, "", "scan", "--path", dir, "--compact")
	require.NoError(t, err)

	var results []jsinv.FileReport
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	require.Equal(t, "bad.js", results[0].File)
	require.NotEmpty(t, results[0].Error)
	require.Nil(t, results[0].Report)
	require.Equal(t, "ok.js", results[1].File)
	require.Equal(t, "ok", results[1].Report.Functions[0].Name)

	_, err = runApp(t, "", "scan", "--path", dir, "--strict")
	require.EqualError(t, err, "one or more files failed to parse")
}

func TestLanguageFor(t *testing.T) {
	require.Equal(t, "tsx", languageFor("tsx", "a.js"))
	require.Equal(t, "typescript", languageFor("", "a.ts"))
	require.Equal(t, "javascript", languageFor("", "a.cjs"))
	require.Equal(t, "", languageFor("", "a.txt"))
	require.Equal(t, "", languageFor("", ""))
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func TestAnalyzeSourceTool(t *testing.T) {
	res, err := analyzeSourceHandler(context.Background(), callTool(map[string]any{
		"source": "if (a) {} else if (b) {}",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	report, ok := res.StructuredContent.(*jsinv.Report)
	require.True(t, ok)
	require.Len(t, report.Conditionals, 2)
}

func TestAnalyzeSourceToolErrors(t *testing.T) {
	res, err := analyzeSourceHandler(context.Background(), callTool(map[string]any{}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	res, err = analyzeSourceHandler(context.Background(), callTool(map[string]any{
		"source": "class {",
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestScanPathTool(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.js"), []byte("const o = {a: 1};\n"), 0644))

	res, err := scanPathHandler(context.Background(), callTool(map[string]any{"path": dir}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	payload, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	files, ok := payload["files"].([]jsinv.FileReport)
	require.True(t, ok)
	require.Len(t, files, 1)
	require.Equal(t, 1, files[0].Report.Objects[0].PropertyCount)
}

func TestNewMCPServer(t *testing.T) {
	require.NotNil(t, newMCPServer())
}
