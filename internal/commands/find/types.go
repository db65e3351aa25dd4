package find

import (
	"io"

	"github.com/charmbracelet/huh"
	"github.com/indaco/projfind/internal/tui"
)

// Prompter abstracts interactive prompts for testability.
type Prompter interface {
	Select(title, description string, options []huh.Option[string], out io.Writer) (string, error)
}

// TUIPrompter implements Prompter using the tui package.
type TUIPrompter struct{}

// NewPrompter creates a new TUIPrompter.
func NewPrompter() Prompter {
	return &TUIPrompter{}
}

// Select shows a single-select prompt.
func (p *TUIPrompter) Select(title, description string, options []huh.Option[string], out io.Writer) (string, error) {
	return tui.Select(title, description, options, out)
}

// OutputFormat controls how discovery results are displayed.
type OutputFormat string

const (
	// FormatText prints one project path per line.
	FormatText OutputFormat = "text"

	// FormatJSON outputs machine-readable JSON.
	FormatJSON OutputFormat = "json"

	// FormatTable outputs tabular data.
	FormatTable OutputFormat = "table"
)

// ParseOutputFormat converts a string to OutputFormat.
func ParseOutputFormat(s string) OutputFormat {
	switch s {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	default:
		return FormatText
	}
}
