package main

import (
	"net/http"
	"os"

	"github.com/docker/go-metrics"
	"github.com/spf13/cobra"

	"github.com/aurora-is-near/ustar/src/deliver"
	"github.com/aurora-is-near/ustar/src/util"
)

type deliverOptions struct {
	indexDir    string
	address     string
	prefix      string
	postfixName string
	metrics     string
	logLevel    string
}

func newDeliverCommand() *cobra.Command {
	var opts deliverOptions
	cmd := &cobra.Command{
		Use:          "tardeliver [OPTIONS]",
		Short:        "Serve the tar files of a directory, optionally trimmed",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeliver(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.indexDir, "dir", "i", "/var/snapshots/", "directory containing the tar files")
	flags.StringVarP(&opts.address, "listen", "l", "127.0.0.1:18123", "ip:port to listen on")
	flags.StringVarP(&opts.prefix, "prefix", "p", "/", "request path")
	flags.StringVar(&opts.postfixName, "postfix", ".version", "name of the file holding the tar name appended to every response, empty for none")
	flags.StringVar(&opts.metrics, "metrics", "/metrics", "url path of the metrics endpoint, empty to disable")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level")
	return cmd
}

func runDeliver(cmd *cobra.Command, opts deliverOptions) error {
	if err := util.SetLogLevel(opts.logLevel); err != nil {
		return err
	}
	h := &deliver.TarHandler{
		IndexDirectory: opts.indexDir,
		PostfixName:    opts.postfixName,
	}
	mux := http.NewServeMux()
	if opts.metrics != "" {
		mux.Handle(opts.metrics, metrics.Handler())
	}
	mux.Handle(opts.prefix, http.StripPrefix(opts.prefix, h))
	return util.ListenAndServe(cmd.Context(), opts.address, mux)
}

func main() {
	if err := newDeliverCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
