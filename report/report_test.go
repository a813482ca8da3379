package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/surprisal/sequence"
	"github.com/jsphweid/surprisal/style"
	"github.com/jsphweid/surprisal/surprise"
)

func writeTable(t *testing.T, path string, seq sequence.NoteSequence, surprises []float64) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, surprise.WriteTable(f, seq, surprises))
}

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTable(t, filepath.Join(root, "bach", "one.surprise.txt"),
		sequence.NoteSequence{60, 62, 64, 65}, []float64{1.0, 2.0, 3.0})
	writeTable(t, filepath.Join(root, "bach", "two.surprise.txt"),
		sequence.NoteSequence{60, 62}, []float64{4.0})
	writeTable(t, filepath.Join(root, "solo.surprise.txt"),
		sequence.NoteSequence{50, 52}, []float64{2.0})
	require.NoError(t, os.WriteFile(filepath.Join(root, "bach", "notes.txt"),
		[]byte("not a score table"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "bach", "broken.surprise.txt"),
		[]byte("garbage"), 0o644))
	return root
}

func TestLoadTree(t *testing.T) {
	byStyle, err := LoadTree(buildTree(t))
	require.NoError(t, err)

	require.Len(t, byStyle, 2)
	require.Len(t, byStyle["bach"], 2)
	require.Len(t, byStyle[style.RootLabel], 1)
	assert.Equal(t, "one.surprise.txt", byStyle["bach"][0].FileName)
	assert.Len(t, byStyle["bach"][0].Rows, 3)
	assert.Equal(t, uint8(62), byStyle["bach"][0].Rows[0].Note)
}

func TestFlattenAndSummarize(t *testing.T) {
	byStyle, err := LoadTree(buildTree(t))
	require.NoError(t, err)

	flat := Flatten(byStyle)
	assert.ElementsMatch(t, []float64{1, 2, 3, 4}, flat["bach"])

	summaries := Summarize(flat)
	require.Len(t, summaries, 2)

	bach := summaries[0]
	assert.Equal(t, "bach", bach.Style)
	assert.InDelta(t, 2.5, bach.MeanSurprise, 1e-12)
	assert.InDelta(t, 5.0/3.0, bach.Variance, 1e-12)
	assert.Equal(t, 4, bach.NoteCount)

	assert.Equal(t, style.RootLabel, summaries[1].Style)
}

func TestSummarizeSkipsEmptyStyles(t *testing.T) {
	summaries := Summarize(map[string][]float64{"empty": nil, "full": {1.0, 3.0}})

	require.Len(t, summaries, 1)
	assert.Equal(t, "full", summaries[0].Style)
	assert.InDelta(t, 2.0, summaries[0].MeanSurprise, 1e-12)
	assert.InDelta(t, 2.0, summaries[0].Variance, 1e-12)
}

func TestPickExampleFile(t *testing.T) {
	assert := assert.New(t)

	_, found := PickExampleFile(nil)
	assert.False(found)

	files := []FileSurprises{
		{FileName: "short.surprise.txt", Rows: make([]surprise.Row, 1)},
		{FileName: "long.surprise.txt", Rows: make([]surprise.Row, 3)},
		{FileName: "also-long.surprise.txt", Rows: make([]surprise.Row, 3)},
	}
	best, found := PickExampleFile(files)
	assert.True(found)
	assert.Equal("also-long.surprise.txt", best.FileName)
}

func TestWriteCSV(t *testing.T) {
	byStyle, err := LoadTree(buildTree(t))
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, Summarize(Flatten(byStyle))))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "style,mean_surprise,variance,n_notes", lines[0])
	assert.Equal(t, "bach,2.5,1.6666666666666667,4", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], style.RootLabel+","))
}
