// Package session accumulates per-frame reports for one run and produces the
// end-of-run summary.
package session

import (
	"slices"
	"time"

	"cellscope-core/microbe"
	"cellscope/internal/report"
)

// Aggregator owns the ordered records of one session. It is not safe for
// concurrent use; only the pipeline goroutine appends to it.
type Aggregator struct {
	records  []report.Record
	microbes []string
	diseases []string
	risks    []microbe.Risk
	cells    []int
	stamps   []time.Time
}

func New() *Aggregator { return &Aggregator{} }

// Append records r at the end of the session.
func (a *Aggregator) Append(r report.Record) {
	a.records = append(a.records, r)
	a.microbes = append(a.microbes, r.Microbe)
	a.diseases = append(a.diseases, r.Disease)
	a.risks = append(a.risks, r.Risk)
	a.cells = append(a.cells, r.Cells)
	a.stamps = append(a.stamps, r.Timestamp)
}

func (a *Aggregator) Len() int { return len(a.records) }

// Records returns a copy of the records in insertion order.
func (a *Aggregator) Records() []report.Record {
	return append([]report.Record(nil), a.records...)
}

// Count is one (value, occurrences) pair.
type Count struct {
	Name string
	N    int
}

// Summary describes a finished session. When NoDetections is set every other
// field is zero.
type Summary struct {
	NoDetections bool

	Microbe string
	Disease string
	Risk    microbe.Risk

	Frames     int
	TotalCells int
	MeanCells  float64
	First      time.Time
	Last       time.Time

	// Microbes lists every selected microbe by descending count, ties in
	// first-seen order.
	Microbes []Count
}

// Summary reports the most frequent microbe, disease and risk. Ties go to the
// value that appeared first.
func (a *Aggregator) Summary() Summary {
	if len(a.records) == 0 {
		return Summary{NoDetections: true}
	}
	s := Summary{
		Microbe: mostCommon(a.microbes),
		Disease: mostCommon(a.diseases),
		Risk:    mostCommon(a.risks),
		Frames:  len(a.records),
		First:   a.stamps[0],
		Last:    a.stamps[len(a.stamps)-1],
	}
	for _, c := range a.cells {
		s.TotalCells += c
	}
	s.MeanCells = float64(s.TotalCells) / float64(s.Frames)
	for _, c := range tally(a.microbes) {
		s.Microbes = append(s.Microbes, Count{Name: c.v, N: c.n})
	}
	return s
}

type counted[T comparable] struct {
	v T
	n int
}

// tally counts xs, sorted by descending count with first-seen order kept for
// equal counts.
func tally[T comparable](xs []T) []counted[T] {
	idx := make(map[T]int)
	var out []counted[T]
	for _, x := range xs {
		i, ok := idx[x]
		if !ok {
			i = len(out)
			idx[x] = i
			out = append(out, counted[T]{v: x})
		}
		out[i].n++
	}
	slices.SortStableFunc(out, func(a, b counted[T]) int { return b.n - a.n })
	return out
}

func mostCommon[T comparable](xs []T) T {
	var zero T
	t := tally(xs)
	if len(t) == 0 {
		return zero
	}
	return t[0].v
}
