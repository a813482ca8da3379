package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jsphweid/surprisal/corpus"
	"github.com/jsphweid/surprisal/logger"
	"github.com/jsphweid/surprisal/store"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [root]",
	Short: "Analyzes a corpus",
	Long:  `Dumps, models and scores every MIDI file under the corpus root.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			cfg.Root = args[0]
		}
		return Run(cmd.Context())
	},
}

// Run executes the full pipeline with the active configuration.
func Run(ctx context.Context) error {
	if err := corpus.ValidateRoot(cfg.Root); err != nil {
		return err
	}

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return err
	}
	defer st.Close()

	o := corpus.NewOrchestrator(cfg, st)
	if err := o.Run(ctx); err != nil {
		return err
	}

	logger.GetProjectLogger().Infof("Run %v complete", o.RunID())
	return nil
}
