package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gonuts/commander"
	"github.com/gonuts/flag"

	"github.com/YuminosukeSato/boostcv/pkg/config"
	"github.com/YuminosukeSato/boostcv/pkg/log"
	"github.com/YuminosukeSato/boostcv/sklearn/model_selection"
)

var (
	numRows    int
	numGroups  int
	shuffle    bool
	seed       uint64
	configFile string
	foldFile   string
)

// foldLabel highlights fold headers; color is disabled when stdout is not a terminal.
var foldLabel = color.New(color.FgCyan).SprintFunc()

// loadConfig returns the file configuration, or the defaults when no file
// was given, and applies its log settings.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.SetupLogging(); err != nil {
		return nil, err
	}
	if configFile != "" {
		log.GetLoggerWithName("boostcv").Debug("Loaded configuration", log.ConfigPathKey, configFile)
	}
	return cfg, nil
}

// flagSet reports whether name was given on the command line.
func flagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func runPartition(cmd *commander.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	groups := cfg.Partition.Groups
	if flagSet(&cmd.Flag, "k") {
		groups = numGroups
	}
	randomize := cfg.Partition.Randomize || shuffle
	opts := cfg.PartitionerOptions()
	if flagSet(&cmd.Flag, "seed") {
		opts = append(opts, model_selection.WithSeed(seed))
	}

	folds, err := model_selection.NewPartitioner(opts...).Partition(numRows, groups, randomize)
	if err != nil {
		return err
	}
	if dropped := numRows - len(folds.Indices()); dropped > 0 {
		log.GetLoggerWithName("boostcv").Warn("Remainder rows dropped",
			log.SamplesKey, numRows,
			log.GroupsKey, groups,
			log.DroppedKey, dropped,
		)
	}
	return writeFolds(os.Stdout, folds)
}

func writeFolds(w io.Writer, folds model_selection.FoldAssignment) error {
	for i, fold := range folds {
		idx := make([]string, len(fold))
		for j, r := range fold {
			idx[j] = fmt.Sprint(r)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", foldLabel(fmt.Sprintf("fold %d:", i)), strings.Join(idx, " ")); err != nil {
			return err
		}
	}
	return nil
}

func partitionCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       runPartition,
		UsageLine: "partition -n <rows> [-k <groups>] [-shuffle] [-seed <seed>] [-config <file>]",
		Short:     "splits row indices into cross-validation folds",
		Long: `
splits the row indices 0..n-1 into k folds of n/k rows each

	$ boostcv partition -n 100 -k 5 -shuffle -seed 42

The n%k remainder rows are dropped and reported on stderr.
`,
		Flag: *flag.NewFlagSet("partition", flag.ExitOnError),
	}
	cmd.Flag.IntVar(&numRows, "n", 0, "Number of rows")
	cmd.Flag.IntVar(&numGroups, "k", 5, "Number of folds (overrides partition.groups)")
	cmd.Flag.BoolVar(&shuffle, "shuffle", false, "Shuffle the rows before splitting")
	cmd.Flag.Uint64Var(&seed, "seed", 0, "Shuffle seed (overrides partition.seed)")
	cmd.Flag.StringVar(&configFile, "config", "", "YAML configuration file")
	return cmd
}
