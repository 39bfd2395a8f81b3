package main

import (
	"os"

	units "github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aurora-is-near/ustar/src/blob"
	"github.com/aurora-is-near/ustar/src/ustar"
	"github.com/aurora-is-near/ustar/src/util"
)

func newTrimCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "tartrim INPUT DESTINATION|-",
		Short:        "Rewrite a tar file keeping only the last entry of every path",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrim(cmd, args[0], args[1])
		},
	}
}

func runTrim(cmd *cobra.Command, input, dest string) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	src, err := blob.FromOSFile(f)
	if err != nil {
		return err
	}
	a, err := ustar.ReadArchive(cmd.Context(), src)
	if err != nil {
		return err
	}
	before := a.Len()
	a.Trim()
	out, err := util.CreateOutput(dest)
	if err != nil {
		return err
	}
	n, err := a.WriteTo(out)
	if err != nil {
		util.DiscardOutput(out)
		return err
	}
	logrus.WithFields(logrus.Fields{
		"removed": before - a.Len(),
		"saved":   units.HumanSize(float64(src.Size() - n)),
	}).Info("Trimmed")
	return out.Close()
}

func main() {
	if err := newTrimCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
