package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lerenn/forgecheck/pkg/reconcile"
)

// Cell styles for the terminal table, ANSI palette so they track the
// terminal theme.
var (
	nameStyle       = lipgloss.NewStyle().Underline(true)
	deprecatedStyle = lipgloss.NewStyle().Background(lipgloss.Color("1")).Foreground(lipgloss.Color("0"))
	behindStyle     = lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0"))
	aboveStyle      = lipgloss.NewStyle().Background(lipgloss.Color("11")).Foreground(lipgloss.Color("0"))
	atMaxStyle      = lipgloss.NewStyle().Background(lipgloss.Color("2")).Foreground(lipgloss.Color("0"))
	cellPadding     = lipgloss.NewStyle().Padding(0, 1)
)

// terminalRenderer renders rounded-border tables with colored freshness
// cells and OSC-8 hyperlinked module names.
type terminalRenderer struct{}

var _ Renderer = (*terminalRenderer)(nil)

func (r *terminalRenderer) Branches(res *reconcile.Result, only string) (string, error) {
	branches := selectBranches(res.Branches, only)
	t := newTable(append([]string{"Module-Name", "Forge latest"}, branches...))

	for _, row := range res.Rows {
		cells := []string{moduleNameCell(row.Name), forgeVersionCell(row)}
		for _, branch := range branches {
			cells = append(cells, branchVersionCell(row, branch))
		}
		t.Row(cells...)
	}
	return t.Render(), nil
}

func (r *terminalRenderer) Latest(res *reconcile.Result) (string, error) {
	t := newTable([]string{"Module-Name", "Forge latest"})
	for _, row := range res.Rows {
		t.Row(moduleNameCell(row.Name), forgeVersionCell(row))
	}
	return t.Render(), nil
}

func (r *terminalRenderer) Deprecated(res *reconcile.Result) (string, error) {
	t := newTable([]string{"Module-Name", "Forge latest"})
	for _, row := range deprecatedRows(res) {
		t.Row(moduleNameCell(row.Name), deprecatedStyle.Render(row.Latest.String()))
	}
	return t.Render(), nil
}

func newTable(headers []string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellPadding }).
		Headers(headers...)
}

func moduleNameCell(name string) string {
	return nameStyle.Render(hyperlink(moduleURL(name), name))
}

func forgeVersionCell(row reconcile.Row) string {
	switch row.RegistryState() {
	case reconcile.RegistryUnknown:
		return "?"
	case reconcile.RegistryDeprecated:
		return deprecatedStyle.Render(row.Latest.String())
	case reconcile.RegistryAheadOfUse:
		return behindStyle.Render(row.Latest.String())
	default:
		return row.Latest.String()
	}
}

func branchVersionCell(row reconcile.Row, branch string) string {
	state, declared := row.CellState(branch)
	if !declared {
		return ""
	}
	version := row.BranchVersions[branch].String()
	switch state {
	case reconcile.CellBehindMax:
		return behindStyle.Render(version)
	case reconcile.CellAboveMax:
		return aboveStyle.Render(version)
	default:
		return atMaxStyle.Render(version)
	}
}

// hyperlink wraps title in an OSC-8 terminal hyperlink.
func hyperlink(url, title string) string {
	return "\x1b]8;;" + url + "\x1b\\" + title + "\x1b]8;;\x1b\\"
}
