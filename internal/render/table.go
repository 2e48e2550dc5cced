package render

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/sinclairtarget/git-churn/internal/format"
)

const maxAuthorWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Italic(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	authorStyle = cellStyle.Foreground(lipgloss.Color("6")) // cyan
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

// Console table. Colors are emitted unconditionally; wrap w in a
// colorprofile.Writer to downsample or strip them.
func writeTable(w io.Writer, r Report) error {
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			format.Abbrev(row.Author, maxAuthorWidth),
			format.Number(row.Insertions),
			format.Number(row.Deletions),
			format.Number(row.Total),
			row.Percent(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(columnHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case col == 0:
				style = authorStyle
			default:
				style = cellStyle
			}

			if col > 0 {
				style = style.Align(lipgloss.Right)
			}

			return style
		})

	rendered := t.String()
	width := lipgloss.Width(rendered)

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(
		width,
		lipgloss.Center,
		titleStyle.Render(r.Title()),
	))
	b.WriteString("\n")
	b.WriteString(rendered)
	b.WriteString("\n")

	if r.NumHidden > 0 {
		msg := fmt.Sprintf("...%s more...", format.Number(r.NumHidden))
		b.WriteString(footerStyle.Render(msg))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("error writing table: %w", err)
	}

	return nil
}
