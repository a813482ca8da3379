package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jsphweid/surprisal/config"
	"github.com/jsphweid/surprisal/logger"
)

var (
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "surprisal",
	Short: "Markov surprise analysis for MIDI corpora",
	Long:  `Builds a first-order note transition model per style and scores every file's surprise against its style's model.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return InitConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.surprisal/config.yaml)")
}

// InitConfig loads the config file, applies environment overrides and
// sets the log level.
func InitConfig() error {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	loaded, err := config.LoadFromFile(path)
	if err != nil {
		return err
	}
	loaded.ApplyEnvOverrides()
	if err := loaded.Validate(); err != nil {
		return err
	}
	if err := logger.SetLevel(loaded.LogLevel); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
