package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatTokens writes one "index<TAB>quoted text" line per token.
func (f *Formatter) FormatTokens(tokens []TokenDTO) error {
	for _, t := range tokens {
		if _, err := fmt.Fprintf(f.writer, "%d\t%s\n", t.Index, strconv.Quote(t.Text)); err != nil {
			return err
		}
	}
	return nil
}

// FormatIssues writes a human readable check report.
func (f *Formatter) FormatIssues(issues []IssueDTO) error {
	if len(issues) == 0 {
		_, err := fmt.Fprintln(f.writer, "all spans match the document")
		return err
	}
	for _, is := range issues {
		line := fmt.Sprintf("#%d %s %s: %s", is.Position, is.Label, is.SpanID, is.Kind)
		if is.Diff != "" {
			line += "\n    " + is.Diff
		}
		if _, err := fmt.Fprintln(f.writer, line); err != nil {
			return err
		}
	}
	return nil
}
