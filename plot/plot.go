package plot

import (
	"fmt"
	"sort"

	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jsphweid/surprisal/surprise"
)

const histogramBins = 50

// Histogram renders the distribution of surprise values for one style
// and saves it as a PNG.
func Histogram(values []float64, styleName, outPath string) error {
	if len(values) == 0 {
		return fmt.Errorf("no surprise values for style %v", styleName)
	}
	p := gonumplot.New()
	p.Title.Text = fmt.Sprintf("Surprise distribution (%s)", styleName)
	p.X.Label.Text = "surprise (bits)"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(values), histogramBins)
	if err != nil {
		return err
	}
	p.Add(h)

	return p.Save(6*vg.Inch, 4*vg.Inch, outPath)
}

// Curve renders surprise against note index for a single file and
// saves it as a PNG. Rows are plotted in index order.
func Curve(rows []surprise.Row, styleName, fileName, outPath string) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to plot for %v", fileName)
	}
	sorted := make([]surprise.Row, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	pts := make(plotter.XYs, len(sorted))
	for i, row := range sorted {
		pts[i].X = float64(row.Index)
		pts[i].Y = row.SurpriseBits
	}

	p := gonumplot.New()
	p.Title.Text = fmt.Sprintf("Surprise vs. note index (%s / %s)", styleName, fileName)
	p.X.Label.Text = "note index"
	p.Y.Label.Text = "surprise (bits)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)

	return p.Save(6*vg.Inch, 4*vg.Inch, outPath)
}
