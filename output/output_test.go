package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriterIndented(t *testing.T) {
	var buf bytes.Buffer
	w := New(Config{Output: &buf})

	require.NoError(t, w.Write(map[string]int{"functions": 2}))
	require.Equal(t, "{\n  \"functions\": 2\n}\n", buf.String())
}

func TestWriterCompact(t *testing.T) {
	var buf bytes.Buffer
	w := New(Config{Output: &buf, Compact: true})

	require.NoError(t, w.Write(map[string]string{"file": "a<b>.js"}))
	require.NoError(t, w.Write([]int{1, 2}))
	require.Equal(t, "{\"file\":\"a<b>.js\"}\n[1,2]\n", buf.String())
}

func TestWriteError(t *testing.T) {
	var buf bytes.Buffer
	WriteError(&buf, errors.New("unexpected \"}\" (3:1)"))
	require.JSONEq(t, `{"error": "unexpected \"}\" (3:1)"}`, buf.String())
}
