package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aurora-is-near/ustar/src/splitting"
)

type hashOptions struct {
	algo string
}

func newHashCommand() *cobra.Command {
	var opts hashOptions
	cmd := &cobra.Command{
		Use:          "tarhash [OPTIONS] INPUT OUTPUT|-",
		Short:        "Write the hash of every file in a tar file",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(cmd, opts, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&opts.algo, "algo", "sha256", "hash algorithm: sha256 or xxhash")
	return cmd
}

func runHash(cmd *cobra.Command, opts hashOptions, input, output string) error {
	out := os.Stdout
	if output != "-" {
		of, err := os.Create(output)
		if err != nil {
			return err
		}
		defer of.Close()
		out = of
	}
	return splitting.ReadHashes(cmd.Context(), input, out, opts.algo)
}

func main() {
	if err := newHashCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
