package main

import (
	"net/http"
	"os"

	"github.com/docker/go-metrics"
	"github.com/spf13/cobra"

	"github.com/aurora-is-near/ustar/src/tarserv"
	"github.com/aurora-is-near/ustar/src/util"
)

type serveOptions struct {
	sourceDir  string
	prefix     string
	address    string
	appendName string
	metrics    string
	cacheSize  int
	excludes   []string
	logLevel   string
}

func newServeCommand() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:          "tarserv [OPTIONS]",
		Short:        "Serve the sub-directories of a directory as tar files",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.sourceDir, "source", "/var/data/snapshots/", "source directory")
	flags.StringVar(&opts.prefix, "prefix", "/snapshots/", "url path prefix")
	flags.StringVar(&opts.address, "listen", "127.0.0.1:9876", "ip:port to listen")
	flags.StringVar(&opts.appendName, "append", ".tarserv_version", "name of the file holding the directory path appended to every tar, empty for none")
	flags.StringVar(&opts.metrics, "metrics", "/metrics", "url path of the metrics endpoint, empty to disable")
	flags.IntVar(&opts.cacheSize, "cache", 64, "number of built archives kept in memory, 0 if directories change below their top level")
	flags.StringSliceVar(&opts.excludes, "exclude", nil, "glob pattern of paths to leave out")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level")
	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	if err := util.SetLogLevel(opts.logLevel); err != nil {
		return err
	}
	h := tarserv.NewTarHandler(opts.sourceDir, opts.appendName, opts.cacheSize)
	h.Excludes = opts.excludes
	mux := http.NewServeMux()
	mux.Handle(opts.prefix, http.StripPrefix(opts.prefix, h))
	if opts.metrics != "" {
		mux.Handle(opts.metrics, metrics.Handler())
	}
	return util.ListenAndServe(cmd.Context(), opts.address, mux)
}

func main() {
	if err := newServeCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
