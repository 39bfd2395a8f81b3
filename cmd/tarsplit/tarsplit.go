package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aurora-is-near/ustar/src/splitting"
)

func newSplitCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "tarsplit INPUT",
		Short:        "Split a tar file into two tar files near its middle",
		Long:         "Split a tar file at the first entry boundary past its middle. INPUT keeps the first part and INPUT.part2 receives the rest.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return splitting.SplitTarMiddle(cmd.Context(), args[0])
		},
	}
}

func main() {
	if err := newSplitCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
