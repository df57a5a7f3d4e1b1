package report

import (
	"io"

	"github.com/pricewatch/pricewatch/internal/model"
)

// Writer defines the interface for check report output.
// Implementations write check runs in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the full check report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.CheckReport) (int, error)

	// WriteResult outputs a single check result.
	// This is useful for per-item output while a run is in progress.
	WriteResult(result *model.CheckResult) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.CheckReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteResult outputs the single result to all configured Writers.
func (m *MultiWriter) WriteResult(result *model.CheckResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteResult(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
