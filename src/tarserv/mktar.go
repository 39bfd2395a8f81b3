package tarserv

import (
	"archive/tar"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/ustar/src/blob"
	"github.com/aurora-is-near/ustar/src/tarindex"
	"github.com/aurora-is-near/ustar/src/ustar"
)

var (
	// ErrNoDir is returned if a given path is not a directory.
	ErrNoDir = errors.New("no directory")
	// ErrNoStartFile is returned if the file given to OptStartFile is not in the archive.
	ErrNoStartFile = errors.New("start file not found")
)

// PathFunc creates a function for rewriting paths.
type PathFunc func(base string) PathRewriteFunc

// PathRewriteFunc rewrites a path.
type PathRewriteFunc func(d string) string

type activeConfig struct {
	PathType       PathFunc
	ActivePathType PathRewriteFunc
	HeaderFixes    []headerFixFunc
	Appends        []appendFileOpt
	startFile      string
	excludes       []string
}

type tarCreator struct {
	options  *activeConfig
	base     string
	out      *ustar.Archive
	excluded []string // excluded directories, relative to base
}

// NewTar creates a tar stream written to w that contains dir. It will have paths as determined by pathType.
func NewTar(dir string, w io.Writer, options ...Option) error {
	a, err := Build(dir, options...)
	if err != nil {
		return err
	}
	_, err = a.WriteTo(w)
	return err
}

// Build creates the archive of dir. File contents are read from dir when the
// archive is written.
func Build(dir string, options ...Option) (*ustar.Archive, error) {
	appliedOptions := newOptions()
	for _, opt := range options {
		opt.applyOption(appliedOptions)
	}
	for _, p := range appliedOptions.excludes {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Wrapf(doublestar.ErrBadPattern, "exclude %q", p)
		}
	}
	dir = path.Clean(dir)
	stat, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, errors.Wrap(ErrNoDir, dir)
	}
	appliedOptions.ActivePathType = appliedOptions.PathType(dir)
	creator := &tarCreator{
		options: appliedOptions,
		base:    dir,
		out:     ustar.New(),
	}
	if err := tarindex.ListToFunc(dir, creator.addEntry); err != nil {
		return nil, err
	}
	creator.addAppends(stat.ModTime())
	if appliedOptions.startFile != "" {
		if err := creator.seek(appliedOptions.startFile); err != nil {
			return nil, err
		}
	}
	return creator.out, nil
}

// seek drops every entry before name.
func (creator *tarCreator) seek(name string) error {
	p := strings.TrimPrefix(path.Clean("/"+name), "/")
	i := creator.out.IndexOf(p)
	if i < 0 {
		i = creator.out.IndexOf(p + "/")
	}
	if i < 0 {
		return errors.Wrapf(ErrNoStartFile, "%q", name)
	}
	creator.out.RemoveRange(0, i)
	return nil
}

func (creator *tarCreator) addAppends(modTime time.Time) {
	for _, ap := range creator.options.Appends {
		if err := ap.Append(creator.base, modTime, creator.out, creator.options); err != nil {
			logrus.WithError(err).WithField("name", ap.name).Error("Append failed")
		}
	}
}

// isExcluded reports whether the entry at rel, relative to the archived
// directory, is left out.
func (creator *tarCreator) isExcluded(rel string, isDir bool) bool {
	for _, d := range creator.excluded {
		if strings.HasPrefix(rel, d+"/") {
			return true
		}
	}
	for _, p := range creator.options.excludes {
		if match, _ := doublestar.Match(p, rel); match {
			if isDir {
				creator.excluded = append(creator.excluded, rel)
			}
			return true
		}
	}
	return false
}

// entryOptions returns the mode, time and ownership options for fi.
func (creator *tarCreator) entryOptions(fi os.FileInfo) []ustar.Option {
	var o owner
	// archive/tar resolves the owner names the way tar(1) does.
	if hdr, err := tar.FileInfoHeader(fi, ""); err == nil {
		o = owner{uid: hdr.Uid, gid: hdr.Gid, uname: hdr.Uname, gname: hdr.Gname}
	}
	o = creator.options.fixOwner(o)
	return []ustar.Option{
		ustar.OptMode(fi.Mode()),
		ustar.OptModTime(fi.ModTime()),
		ustar.OptUID(o.uid),
		ustar.OptGID(o.gid),
		ustar.OptUname(o.uname),
		ustar.OptGname(o.gname),
	}
}

func (creator *tarCreator) addEntry(e *tarindex.ListEntry) error {
	rel := strings.TrimPrefix(strings.TrimPrefix(e.Name, creator.base), "/")
	if rel != "" && creator.isExcluded(rel, e.Type == ustar.TypeDir) {
		return nil
	}
	name := creator.options.ActivePathType(e.Name)
	if e.Type == ustar.TypeDir && path.Clean(name) == "." {
		return nil
	}
	opts := creator.entryOptions(e.Info)
	var err error
	switch e.Type {
	case ustar.TypeDir:
		err = creator.out.AddDir(name, opts...)
	case ustar.TypeFile:
		err = creator.out.AddFile(name, blob.Path(e.Name, e.Size, e.Info.ModTime()), opts...)
	case ustar.TypeSymlink:
		err = creator.out.AddSymlink(name, e.Linkname, opts...)
	case ustar.TypeChar:
		err = creator.out.AddCharDevice(name, e.DevMajor, e.DevMinor, opts...)
	case ustar.TypeBlock:
		err = creator.out.AddBlockDevice(name, e.DevMajor, e.DevMinor, opts...)
	case ustar.TypeFifo:
		err = creator.out.AddFIFO(name, opts...)
	}
	if err != nil {
		logrus.WithError(err).WithField("path", e.Name).Warn("Failed to add entry")
	}
	return nil
}
