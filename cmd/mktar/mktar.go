package main

import (
	"os"

	units "github.com/docker/go-units"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/aurora-is-near/ustar/src/tarindex"
	"github.com/aurora-is-near/ustar/src/tarserv"
	"github.com/aurora-is-near/ustar/src/util"
)

type mktarOptions struct {
	rebase     string
	absolute   bool
	numericIDs bool
	uid        int
	gid        int
	excludes   []string
	startFile  string
	listOnly   bool
}

func newMktarCommand() *cobra.Command {
	var opts mktarOptions
	cmd := &cobra.Command{
		Use:          "mktar [OPTIONS] SOURCE_DIR [DESTINATION|-]",
		Short:        "Write a tar file of a directory",
		Args:         cobra.RangeArgs(1, 2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := "-"
			if len(args) > 1 {
				dest = args[1]
			}
			return runMktar(cmd, opts, args[0], dest)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.rebase, "rebase", "", "store paths below this directory instead of relative ones")
	flags.BoolVar(&opts.absolute, "absolute", false, "store the original paths")
	flags.BoolVar(&opts.numericIDs, "numeric-ids", false, "do not store user and group names")
	flags.IntVar(&opts.uid, "uid", -1, "store this user id for every entry")
	flags.IntVar(&opts.gid, "gid", -1, "store this group id for every entry")
	flags.StringSliceVar(&opts.excludes, "exclude", nil, "glob pattern of paths to leave out")
	flags.StringVar(&opts.startFile, "start-file", "", "leave out every entry before this path")
	flags.BoolVar(&opts.listOnly, "list", false, "print the index the tar file would have instead of writing it")
	return cmd
}

func (opts mktarOptions) tarOptions() []tarserv.Option {
	ret := []tarserv.Option{tarserv.OptExclude(opts.excludes...)}
	switch {
	case opts.absolute:
		ret = append(ret, tarserv.OptAbsolute)
	case opts.rebase != "":
		ret = append(ret, tarserv.OptRebase(opts.rebase))
	default:
		ret = append(ret, tarserv.OptRelative)
	}
	if opts.numericIDs {
		ret = append(ret, tarserv.OptNumericIDs)
	}
	if opts.uid >= 0 {
		ret = append(ret, tarserv.OptUID(opts.uid))
	}
	if opts.gid >= 0 {
		ret = append(ret, tarserv.OptGID(opts.gid))
	}
	if opts.startFile != "" {
		ret = append(ret, tarserv.OptStartFile(opts.startFile))
	}
	return ret
}

func runMktar(cmd *cobra.Command, opts mktarOptions, source, dest string) error {
	a, err := tarserv.Build(source, opts.tarOptions()...)
	if err != nil {
		return err
	}
	out, err := util.CreateOutput(dest)
	if err != nil {
		return err
	}
	if opts.listOnly {
		size, err := tarindex.WriteListing(out, a)
		if err != nil {
			util.DiscardOutput(out)
			return err
		}
		logrus.WithFields(logrus.Fields{
			"entries": a.Len(),
			"size":    units.HumanSize(float64(size)),
		}).Info("Listed")
		return out.Close()
	}
	n, err := a.WriteTo(out)
	if err != nil {
		util.DiscardOutput(out)
		return err
	}
	logrus.WithFields(logrus.Fields{
		"entries": a.Len(),
		"size":    units.HumanSize(float64(n)),
	}).Info("Written")
	return out.Close()
}

func main() {
	if err := newMktarCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
