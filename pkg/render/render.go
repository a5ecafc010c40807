// Package render turns a reconciliation result into one of the supported
// output dialects: a styled terminal table, Markdown, or Jira wiki markup.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lerenn/forgecheck/pkg/reconcile"
)

// Format selects an output dialect.
type Format string

const (
	// FormatTerminal renders a styled table for interactive use.
	FormatTerminal Format = "terminal-table"
	// FormatMarkdown renders a Markdown table.
	FormatMarkdown Format = "markdown"
	// FormatJira renders a Jira wiki markup table.
	FormatJira Format = "jira"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Renderer renders the three views of a reconciliation result. Branches
// limits itself to the branch named by only when it is non-empty; the caller
// has already validated that the branch exists.
type Renderer interface {
	Branches(res *reconcile.Result, only string) (string, error)
	Latest(res *reconcile.Result) (string, error)
	Deprecated(res *reconcile.Result) (string, error)
}

// New creates the Renderer for format.
func New(format Format) (Renderer, error) {
	switch format {
	case FormatTerminal:
		return &terminalRenderer{}, nil
	case FormatMarkdown:
		return &textRenderer{m: markdownMarkup}, nil
	case FormatJira:
		return &textRenderer{m: jiraMarkup}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// moduleURL is the forge page of a module; the page path uses the owner/name
// form, so the first dash of the canonical name turns back into a slash.
func moduleURL(name string) string {
	return "https://forge.puppet.com/modules/" + strings.Replace(name, "-", "/", 1)
}

// selectBranches narrows the branch columns to only, when set.
func selectBranches(branches []string, only string) []string {
	if only == "" {
		return branches
	}
	return []string{only}
}

// deprecatedRows filters a result down to the deprecated modules.
func deprecatedRows(res *reconcile.Result) []reconcile.Row {
	var rows []reconcile.Row
	for _, row := range res.Rows {
		if row.RegistryState() == reconcile.RegistryDeprecated {
			rows = append(rows, row)
		}
	}
	return rows
}
