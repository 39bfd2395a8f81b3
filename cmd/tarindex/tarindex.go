package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aurora-is-near/ustar/src/blob"
	"github.com/aurora-is-near/ustar/src/tarindex"
	"github.com/aurora-is-near/ustar/src/ustar"
)

type indexOptions struct {
	verify bool
}

func newIndexCommand() *cobra.Command {
	var opts indexOptions
	cmd := &cobra.Command{
		Use:          "tarindex [OPTIONS] TARFILE",
		Short:        "Print the byte range, type, size and path of every entry of a tar file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, opts, args[0])
		},
	}
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "fail on headers with a wrong checksum")
	return cmd
}

func runIndex(cmd *cobra.Command, opts indexOptions, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	src, err := blob.FromOSFile(f)
	if err != nil {
		return err
	}
	var readOpts []ustar.ReadOption
	if opts.verify {
		readOpts = append(readOpts, ustar.OptVerifyChecksum)
	}
	a, err := ustar.ReadArchive(cmd.Context(), src, readOpts...)
	if err != nil {
		return err
	}
	return tarindex.WriteIndex(cmd.OutOrStdout(), a)
}

func main() {
	if err := newIndexCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
