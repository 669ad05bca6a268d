package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("5"))

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("6")).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().Padding(0, 1)
)

// Panel frames body in a rounded box with an optional title line.
func Panel(title, body string) string {
	content := strings.TrimRight(body, "\n")
	if title != "" {
		content = panelTitleStyle.Render(title) + "\n\n" + content
	}
	return panelStyle.Render(content)
}

func PrintPanel(title, body string) {
	_, _ = fmt.Fprintln(Output, Panel(title, body))
}

// Table renders rows under headers with a rounded border. Rows shorter than
// headers are padded with empty cells.
func Table(headers []string, rows [][]string) string {
	padded := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < len(headers) {
			row = append(row, make([]string, len(headers)-len(row))...)
		}
		padded = append(padded, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(padded...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	return t.Render()
}

func PrintTable(headers []string, rows [][]string) {
	_, _ = fmt.Fprintln(Output, Table(headers, rows))
}
