// Handles summations over commits.
package tally

import (
	"cmp"
	"iter"
	"slices"
	"time"

	"github.com/sinclairtarget/git-churn/internal/git"
)

// Lines changed by a single author.
type AuthorStats struct {
	Author     string
	Insertions int
	Deletions  int
}

func (s AuthorStats) Total() int {
	return s.Insertions + s.Deletions
}

// Share of grandTotal attributable to this author. Zero when grandTotal is zero.
func (s AuthorStats) Fraction(grandTotal int) float64 {
	if grandTotal == 0 {
		return 0
	}

	return float64(s.Total()) / float64(grandTotal)
}

type Result struct {
	Authors    []AuthorStats // In the order authors were first seen
	GrandTotal int
}

// Accumulates AuthorStats for one repository.
//
// Entries are never removed; counters only grow by what is recorded.
type Aggregator struct {
	stats map[string]*AuthorStats
	order []string
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		stats: map[string]*AuthorStats{},
	}
}

// Returns the entry for author, inserting one with zeroed counters if this is
// the first time we have seen them.
func (a *Aggregator) GetOrInsertZero(author string) *AuthorStats {
	s, ok := a.stats[author]
	if !ok {
		s = &AuthorStats{Author: author}
		a.stats[author] = s
		a.order = append(a.order, author)
	}

	return s
}

// Adds to the author's running totals. Values are not validated.
func (a *Aggregator) Record(author string, insertions int, deletions int) {
	s := a.GetOrInsertZero(author)
	s.Insertions += insertions
	s.Deletions += deletions
}

func (a *Aggregator) RecordCommit(commit git.Commit) {
	if commit.IsMerge {
		return
	}

	author := git.Identity(commit.AuthorName, commit.AuthorEmail)
	a.Record(author, commit.Insertions, commit.Deletions)
}

// Number of distinct authors recorded so far.
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Returns a snapshot of every author's stats and their grand total.
//
// Calling it again without recording more returns an equal result.
func (a *Aggregator) Finalize() Result {
	result := Result{
		Authors: make([]AuthorStats, 0, len(a.order)),
	}

	for _, author := range a.order {
		s := *a.stats[author]
		result.Authors = append(result.Authors, s)
		result.GrandTotal += s.Total()
	}

	return result
}

func TallyCommits(commits iter.Seq[git.Commit]) Result {
	agg := NewAggregator()

	start := time.Now()

	n := 0
	for commit := range commits {
		agg.RecordCommit(commit)
		n += 1
	}

	result := agg.Finalize()

	elapsed := time.Now().Sub(start)
	logger().Debug(
		"tallied commits",
		"commits",
		n,
		"authors",
		agg.Len(),
		"duration_ms",
		elapsed.Milliseconds(),
	)

	return result
}

// Sorts authors by lines changed, most first. Authors with equal totals keep
// their relative order.
func Rank(authors []AuthorStats) []AuthorStats {
	ranked := slices.Clone(authors)
	slices.SortStableFunc(ranked, func(a, b AuthorStats) int {
		return cmp.Compare(b.Total(), a.Total())
	})
	return ranked
}
