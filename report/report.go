package report

import (
	"encoding/csv"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/jsphweid/surprisal/logger"
	"github.com/jsphweid/surprisal/model"
	"github.com/jsphweid/surprisal/style"
	"github.com/jsphweid/surprisal/surprise"
	"github.com/jsphweid/surprisal/util"
)

// FileSurprises pairs a scored file with its parsed table rows.
type FileSurprises struct {
	FileName string
	Rows     []surprise.Row
}

// LoadTree walks the surprise output tree and parses every score
// table it finds, grouped by style. Tables that fail to parse are
// logged and skipped.
func LoadTree(surpriseRoot string) (map[string][]FileSurprises, error) {
	log := logger.GetProjectLogger()
	byStyle := make(map[string][]FileSurprises)
	err := filepath.WalkDir(surpriseRoot, func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(s, surprise.TableSuffix) {
			return nil
		}
		rel, err := filepath.Rel(surpriseRoot, s)
		if err != nil {
			return err
		}
		f, err := os.Open(s)
		if err != nil {
			return err
		}
		rows, parseErr := surprise.ParseTable(f)
		f.Close()
		if parseErr != nil {
			log.Warnf("Skipping %v because: %v", s, parseErr)
			return nil
		}
		name := style.FromRelPath(rel)
		byStyle[name] = append(byStyle[name], FileSurprises{FileName: filepath.Base(s), Rows: rows})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return byStyle, nil
}

// Flatten collects every surprise value per style into one slice.
func Flatten(byStyle map[string][]FileSurprises) map[string][]float64 {
	flat := make(map[string][]float64, len(byStyle))
	for name, files := range byStyle {
		var values []float64
		for _, f := range files {
			for _, row := range f.Rows {
				values = append(values, row.SurpriseBits)
			}
		}
		flat[name] = values
	}
	return flat
}

// PickExampleFile returns the file with the most scored transitions,
// breaking ties by name.
func PickExampleFile(files []FileSurprises) (FileSurprises, bool) {
	var best FileSurprises
	found := false
	for _, f := range files {
		switch {
		case !found:
			best, found = f, true
		case len(f.Rows) > len(best.Rows):
			best = f
		case len(f.Rows) == len(best.Rows) && f.FileName < best.FileName:
			best = f
		}
	}
	return best, found
}

// Summarize computes the per-style mean and sample variance of the
// surprise values, sorted by style name. Styles with no values are
// left out.
func Summarize(flat map[string][]float64) []model.StyleSummary {
	var summaries []model.StyleSummary
	for _, name := range util.SortedKeys(flat) {
		values := flat[name]
		if len(values) == 0 {
			continue
		}
		summaries = append(summaries, model.StyleSummary{
			Style:        name,
			MeanSurprise: stat.Mean(values, nil),
			Variance:     stat.Variance(values, nil),
			NoteCount:    len(values),
		})
	}
	return summaries
}

// WriteCSV writes the per-style summary table.
func WriteCSV(w io.Writer, summaries []model.StyleSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"style", "mean_surprise", "variance", "n_notes"}); err != nil {
		return err
	}
	for _, s := range summaries {
		record := []string{
			s.Style,
			strconv.FormatFloat(s.MeanSurprise, 'g', -1, 64),
			strconv.FormatFloat(s.Variance, 'g', -1, 64),
			strconv.Itoa(s.NoteCount),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
