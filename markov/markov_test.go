package markov

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jsphweid/surprisal/sequence"
)

func TestNormalizeSplitsRowMass(t *testing.T) {
	assert := assert.New(t)

	table := NewCountTable()
	table.AddSequence(sequence.NoteSequence{60, 62, 60, 62, 60, 62, 60, 64})

	assert.Equal(int64(3), table.Count(60, 62))
	assert.Equal(int64(1), table.Count(60, 64))
	assert.Equal(int64(4), table.Total(60))

	m := table.Normalize()

	p, ok := m.Prob(60, 62)
	assert.True(ok)
	assert.Equal(0.75, p)

	p, ok = m.Prob(60, 64)
	assert.True(ok)
	assert.Equal(0.25, p)

	p, ok = m.Prob(62, 60)
	assert.True(ok)
	assert.Equal(1.0, p)
}

func TestShortSequencesAddNothing(t *testing.T) {
	assert := assert.New(t)

	table := NewCountTable()
	table.AddSequence(sequence.NoteSequence{})
	table.AddSequence(sequence.NoteSequence{60})

	assert.Empty(table.Sources())
	assert.Empty(table.Normalize().States())
}

func TestPairsNeverSpanSequences(t *testing.T) {
	assert := assert.New(t)

	m := Build([]sequence.NoteSequence{{60, 62}, {64, 65}})

	_, ok := m.Prob(62, 64)
	assert.False(ok)

	p, ok := m.Prob(60, 62)
	assert.True(ok)
	assert.Equal(1.0, p)
}

func TestUnseenTransitionIsNotInModel(t *testing.T) {
	m := Build([]sequence.NoteSequence{{60, 62}})

	_, ok := m.Prob(60, 64)
	assert.False(t, ok)
	assert.Equal(t, 1e-6, m.ProbOr(60, 64, 1e-6))
}

func TestMergeAddsCounts(t *testing.T) {
	assert := assert.New(t)

	left := NewCountTable()
	left.AddSequence(sequence.NoteSequence{60, 62, 60, 62})
	right := NewCountTable()
	right.AddSequence(sequence.NoteSequence{60, 62, 64})

	left.Merge(right)

	assert.Equal(int64(3), left.Count(60, 62))
	assert.Equal(int64(1), left.Count(62, 64))
	assert.Equal([]uint8{60, 62}, left.Sources())
}

func TestSourcesSorted(t *testing.T) {
	table := NewCountTable()
	table.Increment(64, 60)
	table.Increment(60, 64)
	table.Increment(62, 60)

	assert.Equal(t, []uint8{60, 62, 64}, table.Sources())
	assert.Equal(t, []uint8{60, 62, 64}, table.Normalize().States())
}

func TestRowIsACopy(t *testing.T) {
	assert := assert.New(t)

	m := Build([]sequence.NoteSequence{{60, 62}})

	row := m.Row(60)
	row[62] = 0

	p, ok := m.Prob(60, 62)
	assert.True(ok)
	assert.Equal(1.0, p)

	counts := NewCountTable()
	counts.Increment(60, 62)
	rowCounts := counts.RowCounts(60)
	rowCounts[62] = 99
	assert.Equal(int64(1), counts.Count(60, 62))
}
