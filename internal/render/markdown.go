package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

var markdownEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

// GitHub-flavored Markdown table. Columns are padded so the source lines up.
func writeMarkdown(w io.Writer, r Report) error {
	cells := [][]string{columnHeaders}
	for _, row := range r.Rows {
		cells = append(cells, []string{
			markdownEscaper.Replace(row.Author),
			strconv.Itoa(row.Insertions),
			strconv.Itoa(row.Deletions),
			strconv.Itoa(row.Total),
			row.Percent(),
		})
	}

	widths := make([]int, len(columnHeaders))
	for _, record := range cells {
		for i, cell := range record {
			widths[i] = max(widths[i], len([]rune(cell)), 3)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", markdownEscaper.Replace(r.Title()))

	writeRow := func(record []string) {
		b.WriteString("|")
		for i, cell := range record {
			pad := strings.Repeat(" ", widths[i]-len([]rune(cell)))
			if i == 0 {
				fmt.Fprintf(&b, " %s%s |", cell, pad)
			} else {
				fmt.Fprintf(&b, " %s%s |", pad, cell)
			}
		}
		b.WriteString("\n")
	}

	writeRow(cells[0])

	b.WriteString("|")
	for i, width := range widths {
		if i == 0 {
			fmt.Fprintf(&b, " %s |", strings.Repeat("-", width))
		} else {
			fmt.Fprintf(&b, " %s: |", strings.Repeat("-", width-1))
		}
	}
	b.WriteString("\n")

	for _, record := range cells[1:] {
		writeRow(record)
	}

	if r.NumHidden > 0 {
		fmt.Fprintf(&b, "\n_...%d more..._\n", r.NumHidden)
	}

	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("error writing markdown: %w", err)
	}

	return nil
}
