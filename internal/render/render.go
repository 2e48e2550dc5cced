package render

import (
	"fmt"
	"io"
)

var columnHeaders = []string{
	"Author",
	"Insertions",
	"Deletions",
	"Total Changed",
	"Fraction",
}

// Writes the report to w in the given format.
func Render(w io.Writer, r Report, f Format) error {
	switch f {
	case TableFormat:
		return writeTable(w, r)
	case MarkdownFormat:
		return writeMarkdown(w, r)
	case CSVFormat:
		return writeCsv(w, r)
	default:
		return fmt.Errorf("cannot render unknown format \"%s\"", f)
	}
}
