package markov

import (
	"github.com/jsphweid/surprisal/sequence"
	"github.com/jsphweid/surprisal/util"
)

// CountTable accumulates first-order transition counts between
// consecutive notes. It is not safe for concurrent use.
type CountTable struct {
	counts map[uint8]map[uint8]int64
}

func NewCountTable() *CountTable {
	return &CountTable{counts: make(map[uint8]map[uint8]int64)}
}

func (t *CountTable) Increment(prev, next uint8) {
	row, ok := t.counts[prev]
	if !ok {
		row = make(map[uint8]int64)
		t.counts[prev] = row
	}
	row[next]++
}

// AddSequence records every adjacent pair in seq. Sequences shorter
// than two notes contribute nothing, and no pair ever spans two
// sequences.
func (t *CountTable) AddSequence(seq sequence.NoteSequence) {
	for i := 0; i+1 < len(seq); i++ {
		t.Increment(seq[i], seq[i+1])
	}
}

func (t *CountTable) Merge(other *CountTable) {
	for prev, row := range other.counts {
		dst, ok := t.counts[prev]
		if !ok {
			dst = make(map[uint8]int64, len(row))
			t.counts[prev] = dst
		}
		for next, n := range row {
			dst[next] += n
		}
	}
}

func (t *CountTable) Count(prev, next uint8) int64 {
	return t.counts[prev][next]
}

// Total is the number of observed departures from prev.
func (t *CountTable) Total(prev uint8) int64 {
	var total int64
	for _, n := range t.counts[prev] {
		total += n
	}
	return total
}

// Sources lists every note that has at least one outgoing
// transition, in ascending order.
func (t *CountTable) Sources() []uint8 {
	return util.SortedKeys(t.counts)
}

// RowCounts copies the outgoing counts for prev.
func (t *CountTable) RowCounts(prev uint8) map[uint8]int64 {
	row := make(map[uint8]int64, len(t.counts[prev]))
	for next, n := range t.counts[prev] {
		row[next] = n
	}
	return row
}

// Normalize converts counts to per-source probabilities. Each row of
// the result sums to 1 because every entry is divided by that row's
// total. Rows with no observations are omitted entirely.
func (t *CountTable) Normalize() Model {
	probs := make(map[uint8]map[uint8]float64, len(t.counts))
	for prev, row := range t.counts {
		total := t.Total(prev)
		if total == 0 {
			continue
		}
		dist := make(map[uint8]float64, len(row))
		for next, n := range row {
			dist[next] = float64(n) / float64(total)
		}
		probs[prev] = dist
	}
	return Model{probs: probs}
}

// Model holds normalized transition probabilities keyed by source
// note.
type Model struct {
	probs map[uint8]map[uint8]float64
}

// Prob reports the probability of moving from prev to next and
// whether that transition was ever observed.
func (m Model) Prob(prev, next uint8) (float64, bool) {
	p, ok := m.probs[prev][next]
	return p, ok
}

// ProbOr is Prob with a fallback for transitions the model never saw.
func (m Model) ProbOr(prev, next uint8, fallback float64) float64 {
	if p, ok := m.probs[prev][next]; ok {
		return p
	}
	return fallback
}

// States lists every source note in the model, in ascending order.
func (m Model) States() []uint8 {
	return util.SortedKeys(m.probs)
}

// Row copies the outgoing distribution for prev.
func (m Model) Row(prev uint8) map[uint8]float64 {
	row := make(map[uint8]float64, len(m.probs[prev]))
	for next, p := range m.probs[prev] {
		row[next] = p
	}
	return row
}

// Build counts transitions across all sequences and normalizes the
// result.
func Build(seqs []sequence.NoteSequence) Model {
	table := NewCountTable()
	for _, seq := range seqs {
		table.AddSequence(seq)
	}
	return table.Normalize()
}
