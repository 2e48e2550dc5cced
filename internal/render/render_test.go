package render_test

import (
	"bytes"
	"encoding/csv"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/colorprofile"
	"github.com/google/go-cmp/cmp"

	"github.com/sinclairtarget/git-churn/internal/render"
	"github.com/sinclairtarget/git-churn/internal/tally"
)

func aliceAndBob() tally.Result {
	agg := tally.NewAggregator()
	agg.Record("Alice", 3, 1)
	agg.Record("Bob", 3, 0)
	agg.Record("Alice", 2, 1)
	return agg.Finalize()
}

func renderString(t *testing.T, r render.Report, f render.Format) string {
	t.Helper()

	var buf bytes.Buffer
	w := &colorprofile.Writer{Forward: &buf, Profile: colorprofile.NoTTY}
	if err := render.Render(w, r, f); err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	return buf.String()
}

func authors(r render.Report) []string {
	names := []string{}
	for _, row := range r.Rows {
		names = append(names, row.Author)
	}
	return names
}

func TestNewReport(t *testing.T) {
	report := render.NewReport("repo", aliceAndBob())

	expected := render.Report{
		Label: "repo",
		Rows: []render.Row{
			{Author: "Alice", Insertions: 5, Deletions: 2, Total: 7, Fraction: 0.7},
			{Author: "Bob", Insertions: 3, Deletions: 0, Total: 3, Fraction: 0.3},
		},
		GrandTotal: 10,
	}
	if diff := cmp.Diff(expected, report); diff != "" {
		t.Errorf("report is wrong:\n%s", diff)
	}
}

func TestNewReportStableOrder(t *testing.T) {
	agg := tally.NewAggregator()
	agg.Record("A", 10, 0)
	agg.Record("B", 15, 15)
	agg.Record("C", 5, 5)

	report := render.NewReport("repo", agg.Finalize())

	if diff := cmp.Diff([]string{"B", "A", "C"}, authors(report)); diff != "" {
		t.Errorf("row order is wrong:\n%s", diff)
	}
}

func TestLimit(t *testing.T) {
	agg := tally.NewAggregator()
	agg.Record("A", 3, 0)
	agg.Record("B", 2, 0)
	agg.Record("C", 1, 0)
	report := render.NewReport("repo", agg.Finalize())

	limited := report.Limit(2)
	if diff := cmp.Diff([]string{"A", "B"}, authors(limited)); diff != "" {
		t.Errorf("limited rows are wrong:\n%s", diff)
	}

	if limited.NumHidden != 1 {
		t.Errorf("expected 1 hidden row but got %d", limited.NumHidden)
	}

	if all := report.Limit(0); len(all.Rows) != 3 || all.NumHidden != 0 {
		t.Errorf("expected Limit(0) to keep every row: %v", all)
	}

	if len(report.Rows) != 3 {
		t.Error("Limit() modified the original report")
	}
}

func TestFilterAuthors(t *testing.T) {
	agg := tally.NewAggregator()
	agg.Record("Sinclair Target", 1, 0)
	agg.Record("Bob Builder", 5, 0)
	agg.Record("Sam Smith", 3, 0)
	report := render.NewReport("repo", agg.Finalize())

	filtered := report.FilterAuthors("sm")
	if diff := cmp.Diff([]string{"Sam Smith"}, authors(filtered)); diff != "" {
		t.Errorf("filtered rows are wrong:\n%s", diff)
	}

	if filtered.NumHidden != 2 {
		t.Errorf("expected 2 hidden rows but got %d", filtered.NumHidden)
	}

	// Fractions stay relative to everyone
	if f := filtered.Rows[0].Fraction; f != 3.0/9.0 {
		t.Errorf("expected fraction 1/3 but got %f", f)
	}

	if same := report.FilterAuthors(""); len(same.Rows) != 3 {
		t.Errorf("expected empty pattern to keep every row: %v", same)
	}
}

func TestRenderMarkdown(t *testing.T) {
	report := render.NewReport("repo", aliceAndBob())
	got := renderString(t, report, render.MarkdownFormat)

	expected := strings.Join([]string{
		"### Contribution Stats for repo",
		"",
		"| Author | Insertions | Deletions | Total Changed | Fraction |",
		"| ------ | ---------: | --------: | ------------: | -------: |",
		"| Alice  |          5 |         2 |             7 |    70.0% |",
		"| Bob    |          3 |         0 |             3 |    30.0% |",
		"",
		"",
	}, "\n")

	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("markdown is wrong:\n%s", diff)
	}
}

func TestRenderMarkdownEscapesPipes(t *testing.T) {
	agg := tally.NewAggregator()
	agg.Record("a|b", 1, 0)
	report := render.NewReport("repo", agg.Finalize())

	got := renderString(t, report, render.MarkdownFormat)
	if !strings.Contains(got, `| a\|b `) {
		t.Errorf("expected pipe to be escaped:\n%s", got)
	}
}

func TestRenderCsv(t *testing.T) {
	report := render.NewReport("repo", aliceAndBob())
	got := renderString(t, report, render.CSVFormat)

	expected := "repository,author,insertions,deletions,total changed,fraction\n" +
		"repo,Alice,5,2,7,0.7000\n" +
		"repo,Bob,3,0,3,0.3000\n"

	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("csv is wrong:\n%s", diff)
	}
}

func TestRenderTable(t *testing.T) {
	report := render.NewReport("../some/repo", aliceAndBob())
	got := renderString(t, report, render.TableFormat)

	if strings.Contains(got, "\x1b[") {
		t.Errorf("expected no escape codes after stripping:\n%q", got)
	}

	lines := strings.Split(got, "\n")
	if !strings.Contains(lines[0], "Contribution Stats for ../some/repo") {
		t.Errorf("expected title on first line but got \"%s\"", lines[0])
	}

	for _, header := range []string{"Author", "Insertions", "Deletions", "Total Changed", "Fraction"} {
		if !strings.Contains(got, header) {
			t.Errorf("expected header \"%s\" in table:\n%s", header, got)
		}
	}

	alice := strings.Index(got, "Alice")
	bob := strings.Index(got, "Bob")
	if alice < 0 || bob < 0 || alice > bob {
		t.Errorf("expected Alice before Bob:\n%s", got)
	}

	if !strings.Contains(got, "70.0%") || !strings.Contains(got, "30.0%") {
		t.Errorf("expected fractions in table:\n%s", got)
	}
}

func TestRenderTableFooter(t *testing.T) {
	agg := tally.NewAggregator()
	agg.Record("A", 3, 0)
	agg.Record("B", 2, 0)
	report := render.NewReport("repo", agg.Finalize()).Limit(1)

	got := renderString(t, report, render.TableFormat)
	if !strings.Contains(got, "...1 more...") {
		t.Errorf("expected footer for hidden rows:\n%s", got)
	}
}

func TestRenderTableNumbers(t *testing.T) {
	agg := tally.NewAggregator()
	agg.Record("A", 12345, 0)
	report := render.NewReport("repo", agg.Finalize())

	got := renderString(t, report, render.TableFormat)
	if !strings.Contains(got, "12,345") {
		t.Errorf("expected thousands separator:\n%s", got)
	}
}

func TestRenderZeroTotal(t *testing.T) {
	agg := tally.NewAggregator()
	agg.Record("Alice", 0, 0)
	agg.Record("Bob", 0, 0)
	report := render.NewReport("repo", agg.Finalize())

	for _, f := range render.Formats {
		t.Run(string(f), func(t *testing.T) {
			got := renderString(t, report, f)
			if f == render.CSVFormat {
				if strings.Count(got, ",0.0000\n") != 2 {
					t.Errorf("expected zero fractions:\n%s", got)
				}
				return
			}

			if strings.Count(got, "0.0%") != 2 {
				t.Errorf("expected two 0.0%% fractions:\n%s", got)
			}
		})
	}
}

func TestRenderedTotalsAndFractions(t *testing.T) {
	agg := tally.NewAggregator()
	triples := []struct {
		author   string
		ins, del int
	}{
		{"A", 13, 2},
		{"B", 7, 7},
		{"A", 1, 0},
		{"C", 0, 19},
		{"D", 3, 3},
		{"B", 2, 0},
	}

	expectedTotals := map[string]int{}
	expectedSum := 0
	for _, tr := range triples {
		agg.Record(tr.author, tr.ins, tr.del)
		expectedTotals[tr.author] += tr.ins + tr.del
		expectedSum += tr.ins + tr.del
	}

	report := render.NewReport("repo", agg.Finalize())
	got := renderString(t, report, render.CSVFormat)

	records, err := csv.NewReader(strings.NewReader(got)).ReadAll()
	if err != nil {
		t.Fatalf("could not read rendered csv: %v", err)
	}

	totals := map[string]int{}
	sum := 0
	for _, record := range records[1:] {
		total, err := strconv.Atoi(record[4])
		if err != nil {
			t.Fatalf("bad total in record %v: %v", record, err)
		}

		totals[record[1]] = total
		sum += total
	}

	if diff := cmp.Diff(expectedTotals, totals); diff != "" {
		t.Errorf("rendered totals are wrong:\n%s", diff)
	}

	if sum != expectedSum || sum != report.GrandTotal {
		t.Errorf("expected rendered totals to sum to %d but got %d", expectedSum, sum)
	}

	// Percentages shown with one decimal place sum to 100 within rounding
	percentSum := 0.0
	for _, row := range report.Rows {
		p, err := strconv.ParseFloat(strings.TrimSuffix(row.Percent(), "%"), 64)
		if err != nil {
			t.Fatalf("bad percent %s: %v", row.Percent(), err)
		}
		percentSum += p
	}

	tolerance := 0.05 * float64(len(report.Rows))
	if math.Abs(percentSum-100) > tolerance {
		t.Errorf("expected percentages to sum to 100 but got %f", percentSum)
	}
}

func TestParseFormat(t *testing.T) {
	for _, f := range render.Formats {
		got, err := render.ParseFormat(strings.ToUpper(string(f)))
		if err != nil || got != f {
			t.Errorf("ParseFormat(%s) = %s, %v", f, got, err)
		}
	}

	if _, err := render.ParseFormat("html"); err == nil {
		t.Error("expected error for unknown format")
	}
}
