package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsphweid/surprisal/surprise"
)

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestHistogram(t *testing.T) {
	out := filepath.Join(t.TempDir(), "hist.png")
	values := []float64{0.1, 0.2, 0.5, 1.0, 2.5, 19.9, 3.3, 0.4}

	require.NoError(t, Histogram(values, "bach", out))
	assertNonEmptyFile(t, out)
}

func TestHistogramNoValues(t *testing.T) {
	out := filepath.Join(t.TempDir(), "hist.png")

	assert.Error(t, Histogram(nil, "bach", out))
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestCurve(t *testing.T) {
	out := filepath.Join(t.TempDir(), "curve.png")
	rows := []surprise.Row{
		{Index: 3, Note: 64, SurpriseBits: 2.0},
		{Index: 1, Note: 60, SurpriseBits: 0.5},
		{Index: 2, Note: 62, SurpriseBits: 1.5},
	}

	require.NoError(t, Curve(rows, "bach", "invention1", out))
	assertNonEmptyFile(t, out)
}

func TestCurveNoRows(t *testing.T) {
	out := filepath.Join(t.TempDir(), "curve.png")
	assert.Error(t, Curve(nil, "bach", "invention1", out))
}
