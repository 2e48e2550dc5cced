package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

func toRecord(label string, row Row) []string {
	return []string{
		label,
		row.Author,
		strconv.Itoa(row.Insertions),
		strconv.Itoa(row.Deletions),
		strconv.Itoa(row.Total),
		strconv.FormatFloat(row.Fraction, 'f', 4, 64),
	}
}

// One header plus one record per row. The repository label is repeated on
// every record so output for several repositories can be concatenated.
func writeCsv(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	err := cw.Write([]string{
		"repository",
		"author",
		"insertions",
		"deletions",
		"total changed",
		"fraction",
	})
	if err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, row := range r.Rows {
		if err := cw.Write(toRecord(r.Label, row)); err != nil {
			return fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("error flushing CSV writer: %w", err)
	}

	return nil
}
