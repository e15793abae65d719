package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"github.com/YuminosukeSato/boostcv/sklearn/model_selection"
)

func runFoldFile(cmd *commander.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := foldFile
	if path == "" {
		path = cfg.Partition.FoldFile
	}
	if path == "" {
		cmd.Usage()
		return fmt.Errorf("required flag -f not set")
	}

	folds, err := model_selection.LoadFoldFile(path)
	if err != nil {
		return err
	}
	return writeFolds(os.Stdout, folds)
}

func foldFileCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runFoldFile,
		UsageLine: "foldfile -f <fold file> [-config <file>]",
		Short:     "validates a persisted fold file",
		Long: `
reads a fold file with one row index per line and prints it as a single fold

	$ boostcv foldfile -f folds.txt

Blank lines and lines starting with # are ignored.
`,
		Flag: *flag.NewFlagSet("foldfile", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&foldFile, "f", "", "Fold file")
	cmd.Flag.StringVar(&configFile, "config", "", "YAML configuration file")
	return cmd
}
