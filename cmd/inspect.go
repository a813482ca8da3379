package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jsphweid/surprisal/dump"
	"github.com/jsphweid/surprisal/store"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [style]",
	Short: "Inspects a stored style model",
	Long:  `Prints the latest run's transition table for one style.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(cmd.Context(), args[0])
	},
}

func inspect(ctx context.Context, styleName string) error {
	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer st.Close()

	info, err := st.LatestRun(ctx)
	if err != nil {
		return err
	}

	rows, err := st.StyleModel(ctx, info.RunID, styleName)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no model for style %v in run %v", styleName, info.RunID)
	}

	totals := make(map[uint8]int64)
	for _, row := range rows {
		totals[row.PrevNote] += row.Count
	}

	fmt.Printf("run %v, started %v\n", info.RunID, info.StartedAt.Format(time.RFC3339))
	fmt.Printf("style %v, %v transitions\n", styleName, len(rows))
	prev := -1
	for _, row := range rows {
		if int(row.PrevNote) != prev {
			prev = int(row.PrevNote)
			fmt.Printf("%d (%s), %d observed:\n",
				row.PrevNote, dump.NoteName(row.PrevNote), totals[row.PrevNote])
		}
		fmt.Printf("  -> %3d (%-4s) count=%-6d p=%.4f\n",
			row.NextNote, dump.NoteName(row.NextNote), row.Count, row.Probability)
	}
	return nil
}
