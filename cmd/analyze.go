package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsphweid/surprisal/logger"
	"github.com/jsphweid/surprisal/plot"
	"github.com/jsphweid/surprisal/report"
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [root]",
	Short: "Summarizes and plots surprise tables",
	Long:  `Aggregates the surprise tables of a finished run into a per-style summary CSV and plots.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.Root = args[0]
		}
		return Analyze()
	},
}

// Analyze summarizes an existing surprise tree into the CSV and plots.
func Analyze() error {
	log := logger.GetProjectLogger()
	surpriseRoot := cfg.SurpriseRoot()

	if _, err := os.Stat(surpriseRoot); err != nil {
		return fmt.Errorf("no surprise output at %v; run the pipeline first", surpriseRoot)
	}

	byStyle, err := report.LoadTree(surpriseRoot)
	if err != nil {
		return err
	}
	if len(byStyle) == 0 {
		return fmt.Errorf("no surprise tables under %v", surpriseRoot)
	}

	flat := report.Flatten(byStyle)
	summaries := report.Summarize(flat)
	for _, s := range summaries {
		log.Infof("%v: mean surprise = %.3f bits, var = %.3f (n=%v)",
			s.Style, s.MeanSurprise, s.Variance, s.NoteCount)
	}

	csvPath := filepath.Join(surpriseRoot, "style_surprise_summary.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return err
	}
	if err := report.WriteCSV(f, summaries); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("Wrote %v", csvPath)

	plotsRoot := cfg.PlotsRoot()
	if err := os.MkdirAll(plotsRoot, 0755); err != nil {
		return err
	}
	for _, s := range summaries {
		histPath := filepath.Join(plotsRoot, fmt.Sprintf("%s_surprise_hist.png", s.Style))
		if err := plot.Histogram(flat[s.Style], s.Style, histPath); err != nil {
			log.Warnf("Skipping histogram for %v because: %v", s.Style, err)
			continue
		}

		example, ok := report.PickExampleFile(byStyle[s.Style])
		if !ok {
			continue
		}
		curveName := sanitizeName(fmt.Sprintf("%s_%s_curve.png", s.Style, example.FileName))
		curvePath := filepath.Join(plotsRoot, curveName)
		if err := plot.Curve(example.Rows, s.Style, example.FileName, curvePath); err != nil {
			log.Warnf("Skipping curve for %v because: %v", s.Style, err)
		}
	}
	log.Infof("Wrote plots to %v", plotsRoot)
	return nil
}

func sanitizeName(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}
