package find

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/indaco/projfind/internal/discovery"
	"github.com/indaco/projfind/internal/printer"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Formatter handles display of discovery results.
type Formatter struct {
	format         OutputFormat
	showSuppressed bool
}

// NewFormatter creates a new Formatter with the specified output format.
func NewFormatter(format OutputFormat, showSuppressed bool) *Formatter {
	return &Formatter{format: format, showSuppressed: showSuppressed}
}

// FormatResult formats the discovery result for display.
func (f *Formatter) FormatResult(result *discovery.Result) (string, error) {
	switch f.format {
	case FormatJSON:
		return f.formatJSON(result)
	case FormatTable:
		return f.formatTable(result), nil
	default:
		return f.formatText(result), nil
	}
}

// formatText prints bare paths so the output can be piped.
func (f *Formatter) formatText(result *discovery.Result) string {
	var sb strings.Builder
	for _, p := range result.Projects {
		sb.WriteString(p.Path)
		sb.WriteString("\n")
	}
	if f.showSuppressed {
		for _, p := range result.Suppressed {
			fmt.Fprintf(&sb, "%s %s\n", p.Path, printer.Faint("(member of "+p.OwnedBy+")"))
		}
	}
	return sb.String()
}

// formatTable formats the result as a table.
func (f *Formatter) formatTable(result *discovery.Result) string {
	var sb strings.Builder

	width := len("PATH")
	kindsWidth := len("KINDS")
	for _, p := range result.Projects {
		width = max(width, len(p.Path))
		kindsWidth = max(kindsWidth, len(p.Kinds.String()))
	}
	if f.showSuppressed {
		for _, p := range result.Suppressed {
			width = max(width, len(p.Path))
		}
	}

	fmt.Fprintf(&sb, "%-*s  %-5s  %-9s  %-*s  %s\n", width, "PATH", "DEPTH", "WORKSPACE", kindsWidth, "KINDS", "MARKERS")
	sb.WriteString(strings.Repeat("-", width+kindsWidth+32) + "\n")
	for _, p := range result.Projects {
		ws := ""
		if p.IsWorkspaceRoot {
			ws = "yes"
		}
		kinds := p.Kinds.String()
		// Pad outside the styled text so escape codes do not count toward the width.
		pad := strings.Repeat(" ", kindsWidth-len(kinds))
		fmt.Fprintf(&sb, "%-*s  %-5d  %-9s  %s%s  %s\n", width, p.Path, p.Depth, ws, printer.Kind(kinds), pad, printer.Faint(strings.Join(p.Markers, ", ")))
	}

	if f.showSuppressed && len(result.Suppressed) > 0 {
		sb.WriteString("\n")
		sb.WriteString(printer.Info("Workspace members:"))
		sb.WriteString("\n")
		for _, p := range result.Suppressed {
			rel, err := filepath.Rel(p.OwnedBy, p.Path)
			if err != nil {
				rel = p.Path
			}
			fmt.Fprintf(&sb, "  %-*s  %s\n", width, p.Path, printer.Faint(fmt.Sprintf("(%s in %s)", rel, p.OwnedBy)))
		}
	}

	if len(result.Errors) > 0 {
		sb.WriteString("\n")
		sb.WriteString(printer.Warning("Skipped paths:"))
		sb.WriteString("\n")
		writeErrors(&sb, result.Errors)
	}

	sb.WriteString("\n")
	sb.WriteString(result.Summary())
	sb.WriteString("\n")
	return sb.String()
}

type jsonProject struct {
	Path            string   `json:"path"`
	Kinds           []string `json:"kinds"`
	Markers         []string `json:"markers,omitempty"`
	Depth           int      `json:"depth"`
	IsWorkspaceRoot bool     `json:"workspace_root"`
	Members         []string `json:"members,omitempty"`
	OwnedBy         string   `json:"owned_by,omitempty"`
}

type jsonError struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func toJSONProject(p discovery.Project) jsonProject {
	return jsonProject{
		Path:            p.Path,
		Kinds:           p.Kinds.Strings(),
		Markers:         p.Markers,
		Depth:           p.Depth,
		IsWorkspaceRoot: p.IsWorkspaceRoot,
		Members:         p.Members,
		OwnedBy:         p.OwnedBy,
	}
}

// formatJSON builds the document incrementally with sjson and indents it.
func (f *Formatter) formatJSON(result *discovery.Result) (string, error) {
	doc := []byte(`{"projects":[],"errors":[]}`)
	var err error

	for _, p := range result.Projects {
		if doc, err = sjson.SetBytes(doc, "projects.-1", toJSONProject(p)); err != nil {
			return "", fmt.Errorf("encoding project %s: %w", p.Path, err)
		}
	}

	if f.showSuppressed {
		if doc, err = sjson.SetRawBytes(doc, "suppressed", []byte("[]")); err != nil {
			return "", err
		}
		for _, p := range result.Suppressed {
			if doc, err = sjson.SetBytes(doc, "suppressed.-1", toJSONProject(p)); err != nil {
				return "", fmt.Errorf("encoding project %s: %w", p.Path, err)
			}
		}
	}

	for _, e := range result.Errors {
		je := jsonError{Path: e.Path, Kind: string(e.Kind), Message: e.Err.Error()}
		if doc, err = sjson.SetBytes(doc, "errors.-1", je); err != nil {
			return "", fmt.Errorf("encoding error for %s: %w", e.Path, err)
		}
	}

	summary := map[string]any{
		"projects":   len(result.Projects),
		"suppressed": len(result.Suppressed),
		"errors":     len(result.Errors),
		"capped":     result.Capped,
	}
	if doc, err = sjson.SetBytes(doc, "summary", summary); err != nil {
		return "", err
	}

	return gjson.GetBytes(doc, "@pretty").Raw, nil
}

// writeErrors lists path errors, one per line.
func writeErrors(w io.Writer, errs []*discovery.PathError) {
	for _, e := range errs {
		fmt.Fprintf(w, "  %s %s %s\n", printer.Warning("!"), e.Path, printer.Faint(fmt.Sprintf("(%s: %v)", e.Kind, e.Err)))
	}
}
