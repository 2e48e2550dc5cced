// Renders per-author contribution reports.
package render

import (
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/sinclairtarget/git-churn/internal/format"
	"github.com/sinclairtarget/git-churn/internal/tally"
)

type Format string

const (
	TableFormat    Format = "table"
	MarkdownFormat Format = "markdown"
	CSVFormat      Format = "csv"
)

var Formats = []Format{TableFormat, MarkdownFormat, CSVFormat}

func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}

	return "", fmt.Errorf(
		"unknown format \"%s\" (expected one of %v)",
		s,
		Formats,
	)
}

type Row struct {
	Author     string
	Insertions int
	Deletions  int
	Total      int
	Fraction   float64
}

func (r Row) Percent() string {
	return format.Percent(r.Fraction)
}

// Contribution stats for one repository, ranked by lines changed.
type Report struct {
	Label      string
	Rows       []Row
	GrandTotal int
	NumHidden  int // Rows dropped by FilterAuthors() or Limit()
}

func NewReport(label string, result tally.Result) Report {
	ranked := tally.Rank(result.Authors)

	rows := make([]Row, 0, len(ranked))
	for _, s := range ranked {
		rows = append(rows, Row{
			Author:     s.Author,
			Insertions: s.Insertions,
			Deletions:  s.Deletions,
			Total:      s.Total(),
			Fraction:   s.Fraction(result.GrandTotal),
		})
	}

	return Report{
		Label:      label,
		Rows:       rows,
		GrandTotal: result.GrandTotal,
	}
}

type authorSource []Row

func (s authorSource) String(i int) string {
	return s[i].Author
}

func (s authorSource) Len() int {
	return len(s)
}

// Keeps only rows whose author fuzzy-matches pattern, in rank order. Fractions
// stay relative to the grand total of all authors.
func (r Report) FilterAuthors(pattern string) Report {
	if pattern == "" {
		return r
	}

	matches := fuzzy.FindFrom(pattern, authorSource(r.Rows))

	keep := make([]bool, len(r.Rows))
	for _, m := range matches {
		keep[m.Index] = true
	}

	rows := []Row{}
	for i, row := range r.Rows {
		if keep[i] {
			rows = append(rows, row)
		}
	}

	r.NumHidden += len(r.Rows) - len(rows)
	r.Rows = rows
	return r
}

// Keeps the first n rows. Zero means no limit.
func (r Report) Limit(n int) Report {
	if n <= 0 || n >= len(r.Rows) {
		return r
	}

	r.NumHidden += len(r.Rows) - n
	r.Rows = r.Rows[:n]
	return r
}

func (r Report) Title() string {
	return fmt.Sprintf("Contribution Stats for %s", r.Label)
}
