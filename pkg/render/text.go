package render

import (
	"fmt"
	"strings"

	"github.com/lerenn/forgecheck/pkg/reconcile"
)

// markup holds the dialect-specific pieces of the two plain-text table
// formats. The table layout itself is shared by textRenderer.
type markup struct {
	header         func(cols []string) []string
	row            func(cells []string) string
	link           func(title, url string) string
	code           func(s string) string
	deprecatedMark string
	aheadMark      string
}

var markdownMarkup = markup{
	header: func(cols []string) []string {
		alignment := make([]string, len(cols))
		for i := range alignment {
			alignment[i] = ": - "
		}
		return []string{
			"|" + strings.Join(cols, "|") + "|",
			"|" + strings.Join(alignment, "|") + "|",
		}
	},
	row: func(cells []string) string {
		return "|" + strings.Join(cells, "|") + "|"
	},
	link: func(title, url string) string {
		return fmt.Sprintf("[%s](%s)", title, url)
	},
	code: func(s string) string {
		return "`" + s + "`"
	},
	deprecatedMark: " 🔥",
	aheadMark:      " ⏰",
}

var jiraMarkup = markup{
	header: func(cols []string) []string {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = "{{" + col + "}}"
		}
		return []string{"||" + strings.Join(cells, "||") + "||"}
	},
	row: func(cells []string) string {
		return "|" + strings.Join(cells, "|") + "|"
	},
	link: func(title, url string) string {
		return fmt.Sprintf("[%s|%s]", title, url)
	},
	code: func(s string) string {
		return "{{" + s + "}}"
	},
	deprecatedMark: " (x)",
	aheadMark:      " (!)",
}

// textRenderer renders the plain-markup dialects.
type textRenderer struct {
	m markup
}

var _ Renderer = (*textRenderer)(nil)

func (r *textRenderer) Branches(res *reconcile.Result, only string) (string, error) {
	branches := selectBranches(res.Branches, only)
	lines := r.m.header(append([]string{"Module-Name", "Forge latest"}, branches...))

	for _, row := range res.Rows {
		cells := []string{
			r.m.link(row.Name, moduleURL(row.Name)),
			r.forgeCell(row),
		}
		for _, branch := range branches {
			cells = append(cells, r.branchCell(row, branch))
		}
		lines = append(lines, r.m.row(cells))
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func (r *textRenderer) Latest(res *reconcile.Result) (string, error) {
	lines := r.m.header([]string{"Module-Name", "Forge latest"})
	for _, row := range res.Rows {
		lines = append(lines, r.m.row([]string{
			r.m.link(row.Name, moduleURL(row.Name)),
			r.forgeCell(row),
		}))
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func (r *textRenderer) Deprecated(res *reconcile.Result) (string, error) {
	lines := r.m.header([]string{"Module-Name", "Forge latest"})
	for _, row := range deprecatedRows(res) {
		lines = append(lines, r.m.row([]string{
			r.m.link(row.Name, moduleURL(row.Name)),
			r.m.code(row.Latest.String()) + r.m.deprecatedMark,
		}))
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func (r *textRenderer) forgeCell(row reconcile.Row) string {
	switch row.RegistryState() {
	case reconcile.RegistryUnknown:
		return "?"
	case reconcile.RegistryDeprecated:
		return r.m.code(row.Latest.String()) + r.m.deprecatedMark
	case reconcile.RegistryAheadOfUse:
		return r.m.code(row.Latest.String()) + r.m.aheadMark
	default:
		return r.m.code(row.Latest.String())
	}
}

func (r *textRenderer) branchCell(row reconcile.Row, branch string) string {
	state, declared := row.CellState(branch)
	if !declared {
		return " "
	}
	version := r.m.code(row.BranchVersions[branch].String())
	switch state {
	case reconcile.CellBehindMax:
		return version + r.m.aheadMark
	case reconcile.CellAboveMax:
		return version + r.m.deprecatedMark
	default:
		return version
	}
}
