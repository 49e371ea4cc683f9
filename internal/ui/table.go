package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and width.
type TableColumn struct {
	Title string
	Width int
}

// maxColumnWidth caps auto-sized columns so long notes don't blow up the layout.
const maxColumnWidth = 48

// NewTable creates a new Bubbles table with default styling.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{
			Title: c.Title,
			Width: c.Width,
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused in CLI output, so the selected row must look like any other.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders a non-interactive table string for CLI output.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}

	t := NewTable(columns, tableRows)
	return t.View()
}

// AutoColumns sizes one column per title to fit the widest cell, capped at
// maxColumnWidth.
func AutoColumns(titles []string, rows [][]string) []TableColumn {
	cols := make([]TableColumn, len(titles))
	for i, title := range titles {
		cols[i] = TableColumn{Title: title, Width: lipgloss.Width(title)}
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(cols); i++ {
			if w := lipgloss.Width(row[i]); w > cols[i].Width {
				cols[i].Width = w
			}
		}
	}
	for i := range cols {
		if cols[i].Width > maxColumnWidth {
			cols[i].Width = maxColumnWidth
		}
	}
	return cols
}

// EntryRow is one line of "lp ls" output.
type EntryRow struct {
	ID       string
	Name     string
	Group    string
	Username string
	URL      string
	Password string
	IsGroup  bool
}

// RenderEntryTable renders vault entries. The password column only appears
// when showPasswords is set.
func RenderEntryTable(rows []EntryRow, showPasswords bool) string {
	if len(rows) == 0 {
		return "No matching entries found"
	}

	titles := []string{"ID", "NAME", "GROUP", "USERNAME", "URL"}
	if showPasswords {
		titles = append(titles, "PASSWORD")
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		name := r.Name
		if r.IsGroup {
			name = SymbolGroup + " " + r.Name
		}
		line := []string{r.ID, name, r.Group, r.Username, r.URL}
		if showPasswords {
			line = append(line, r.Password)
		}
		cells[i] = line
	}

	return RenderSimpleTable(AutoColumns(titles, cells), cells)
}

// DoctorCheckRow represents a row in the doctor diagnostic table.
type DoctorCheckRow struct {
	Status     string // "pass", "warn", "fail"
	Category   string
	Message    string
	Suggestion string // Shown unless the check passed
}

// RenderDoctorTable renders doctor check results grouped by category, in the
// order categories first appear.
func RenderDoctorTable(rows []DoctorCheckRow) string {
	if len(rows) == 0 {
		return "No checks to display"
	}

	mutedStyle := MutedStyle()
	headerStyle := HeaderStyle().Foreground(ColorPrimary)

	categories := make(map[string][]DoctorCheckRow)
	categoryOrder := []string{}
	for _, row := range rows {
		if _, exists := categories[row.Category]; !exists {
			categoryOrder = append(categoryOrder, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	var b strings.Builder
	for _, cat := range categoryOrder {
		b.WriteString(headerStyle.Render(cat) + "\n")

		for _, row := range categories[cat] {
			b.WriteString("  " + StatusSymbol(row.Status) + " " + row.Message + "\n")

			if row.Suggestion != "" && row.Status != "pass" {
				for _, line := range strings.Split(row.Suggestion, "\n") {
					b.WriteString("    " + mutedStyle.Render(line) + "\n")
				}
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// StatusSymbol returns the colored symbol for a "pass", "warn" or "fail" status.
func StatusSymbol(status string) string {
	switch status {
	case "pass":
		return SuccessStyle().Render(SymbolComplete)
	case "warn":
		return WarningStyle().Render(SymbolComplete)
	case "fail":
		return ErrorStyle().Render(SymbolFail)
	default:
		return MutedStyle().Render(SymbolPending)
	}
}

// KeyValue is one labelled line of a details block.
type KeyValue struct {
	Key   string
	Value string
}

// RenderDetails renders aligned "key  value" lines, skipping empty values.
func RenderDetails(pairs []KeyValue) string {
	width := 0
	for _, p := range pairs {
		if p.Value != "" && len(p.Key) > width {
			width = len(p.Key)
		}
	}

	keyStyle := MutedStyle()
	var b strings.Builder
	for _, p := range pairs {
		if p.Value == "" {
			continue
		}
		b.WriteString(keyStyle.Render(padRight(p.Key+":", width+1)) + "  " + p.Value + "\n")
	}
	return b.String()
}

// padRight pads a string to the specified visible width.
func padRight(s string, width int) string {
	visibleLen := lipgloss.Width(s)
	if visibleLen >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visibleLen)
}
