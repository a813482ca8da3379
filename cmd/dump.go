package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jsphweid/surprisal/corpus"
	"github.com/jsphweid/surprisal/dump"
	"github.com/jsphweid/surprisal/logger"
	"github.com/jsphweid/surprisal/midi"
	"github.com/jsphweid/surprisal/util"
)

func init() {
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump [root]",
	Short: "Dumps MIDI files as text",
	Long:  `Writes a readable event listing next to every MIDI file under a directory.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cfg.Root
		if len(args) == 1 {
			root = args[0]
		}
		return dumpTree(root)
	},
}

func dumpTree(root string) error {
	log := logger.GetProjectLogger()

	if err := corpus.ValidateRoot(root); err != nil {
		return err
	}
	paths, err := util.GatherAllMidiPaths(root, true)
	if err != nil {
		return err
	}

	dumped := 0
	for _, path := range paths {
		if err := dumpNextTo(path); err != nil {
			log.Warnf("Skipping %v because: %v", path, err)
			continue
		}
		dumped++
	}
	log.Infof("Dumped %v of %v files", dumped, len(paths))
	return nil
}

// dumpNextTo writes the listing for one file as a sibling with .txt
// appended to the full name.
func dumpNextTo(path string) error {
	s, err := midi.Read(path)
	if err != nil {
		s, err = midi.ReadLenient(path)
		if err != nil {
			return err
		}
	}

	f, err := os.Create(path + ".txt")
	if err != nil {
		return err
	}
	defer f.Close()
	return dump.Render(f, filepath.Base(path), s)
}
