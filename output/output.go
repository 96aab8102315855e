// Package output provides JSON output formatting for jsinv.
package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"
)

// Writer handles structured output. It is safe for concurrent use; each
// value is written as one JSON document.
type Writer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// Config holds output configuration.
type Config struct {
	// Compact writes one value per line instead of indented JSON.
	Compact bool
	Output  io.Writer
}

// New creates a new output Writer.
func New(cfg Config) *Writer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	enc := json.NewEncoder(cfg.Output)
	enc.SetEscapeHTML(false)
	if !cfg.Compact {
		enc.SetIndent("", "  ")
	}

	return &Writer{encoder: enc}
}

// Write outputs a value as JSON.
func (w *Writer) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.encoder.Encode(v)
}

// WriteError writes {"error": "..."} to w.
func WriteError(w io.Writer, err error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(map[string]string{
		"error": err.Error(),
	})
}
