package tarserv

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/aurora-is-near/ustar/src/blob"
	"github.com/aurora-is-near/ustar/src/tarindex"
	"github.com/aurora-is-near/ustar/src/ustar"
)

type startFileOption struct {
	filename string
}

func (opt startFileOption) applyOption(option *activeConfig) {
	option.startFile = opt.filename
}

// OptStartFile drops every entry before the one with the given archive path.
func OptStartFile(firstFile string) Option {
	return &startFileOption{filename: firstFile}
}

type excludeOption struct {
	patterns []string
}

func (opt excludeOption) applyOption(option *activeConfig) {
	option.excludes = append(option.excludes, opt.patterns...)
}

// OptExclude leaves out everything whose path relative to the archived
// directory matches one of the doublestar patterns. Excluding a directory
// excludes its content.
func OptExclude(patterns ...string) Option {
	return &excludeOption{patterns: patterns}
}

type rebaseOption struct {
	dir string
}

func (opt rebaseOption) applyOption(option *activeConfig) {
	option.PathType = rebase(opt.dir)
}

// OptRebase returns an Option that rebases the tar entries to dir.
func OptRebase(dir string) Option {
	return &rebaseOption{dir: dir}
}

func rebase(dir string) PathFunc {
	return func(base string) PathRewriteFunc {
		return tarindex.PathMod{BaseDir: base, ModDir: dir}.FixPath
	}
}

// OptRelative will rebase the tar file to relative paths.
var OptRelative = new(optRelative)

type optRelative struct{}

func (opt optRelative) applyOption(option *activeConfig) {
	option.PathType = relativePath
}

func relativePath(base string) PathRewriteFunc {
	return tarindex.PathMod{BaseDir: base, ModDir: "./"}.FixPath
}

// OptAbsolute will rebase the tar file for absolute original paths.
var OptAbsolute = new(optAbsolute)

type optAbsolute struct{}

func (opt optAbsolute) applyOption(option *activeConfig) {
	option.PathType = absolutePath
}

// absolutePath will rebase the tar file for absolute original paths.
func absolutePath(base string) PathRewriteFunc {
	_ = base
	return func(d string) string { return d }
}

// owner is the ownership recorded for an entry.
type owner struct {
	uid, gid     int
	uname, gname string
}

type setUIDOption struct {
	uid int
}

func (opt setUIDOption) applyOption(option *activeConfig) {
	option.HeaderFixes = append(option.HeaderFixes,
		func(o *owner) {
			o.uid = opt.uid
			o.uname = ""
		})
}

// OptUID sets all file user IDs to uid.
func OptUID(uid int) Option {
	return setUIDOption{uid: uid}
}

// OptNumericIDs sets all IDs to numeric.
var OptNumericIDs = new(optNumericIDs)

type optNumericIDs struct{}

func (opt optNumericIDs) applyOption(option *activeConfig) {
	option.HeaderFixes = append(option.HeaderFixes,
		func(o *owner) {
			o.uname = ""
			o.gname = ""
		})
}

type setGIDOption struct {
	gid int
}

func (opt setGIDOption) applyOption(option *activeConfig) {
	option.HeaderFixes = append(option.HeaderFixes,
		func(o *owner) {
			o.gid = opt.gid
			o.gname = ""
		})
}

// OptGID sets all file group IDs to gid.
func OptGID(gid int) Option {
	return setGIDOption{gid: gid}
}

type appendFileOpt struct {
	name string
	r    io.Reader
	mode os.FileMode
}

func (opt appendFileOpt) applyOption(option *activeConfig) {
	option.Appends = append(option.Appends, opt)
}

// Append adds the file below dir. It takes the modification time modTime.
func (opt appendFileOpt) Append(dir string, modTime time.Time, a *ustar.Archive, options *activeConfig) error {
	content, err := io.ReadAll(opt.r)
	if err != nil {
		return err
	}
	o := options.fixOwner(owner{})
	return a.AddFile(options.ActivePathType(path.Join(dir, opt.name)),
		blob.NewFile(blob.Bytes(content), opt.name, modTime),
		ustar.OptMode(opt.mode),
		ustar.OptUID(o.uid), ustar.OptGID(o.gid),
		ustar.OptUname(o.uname), ustar.OptGname(o.gname))
}

// OptAppendFile appends a file to the tar with the given name and content read from r.
func OptAppendFile(name string, mode os.FileMode, r io.Reader) Option {
	return appendFileOpt{name: name, r: r, mode: mode}
}

// Option is an option for tarfile creation.
type Option interface {
	applyOption(option *activeConfig)
}

type headerFixFunc func(o *owner)

func newOptions() *activeConfig {
	return &activeConfig{
		PathType:    relativePath,
		HeaderFixes: make([]headerFixFunc, 0, 4),
	}
}

func (options *activeConfig) fixOwner(o owner) owner {
	for _, fix := range options.HeaderFixes {
		fix(&o)
	}
	return o
}
