// Command boostcv partitions datasets into cross-validation folds and
// validates persisted fold files.
//
//	$ boostcv partition -n 100 -k 5 -shuffle -seed 42
//	$ boostcv foldfile -f folds.txt
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/gonuts/commander"
)

func allCommands() *commander.Command {
	return &commander.Command{
		UsageLine: os.Args[0],
		Short:     "cross-validation fold tooling",
		Subcommands: []*commander.Command{
			partitionCmd(),
			foldFileCmd(),
		},
	}
}

func main() {
	cmd := allCommands()
	if err := cmd.Dispatch(os.Args[1:]); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "**err**: %v\n", err)
		os.Exit(1)
	}
}
