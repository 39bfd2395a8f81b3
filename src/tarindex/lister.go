// Package tarindex lists the content of a directory and its subdirectories as
// a stream of archive entries, and indexes the entries of tar files by the
// byte ranges they occupy.
package tarindex

import (
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/ustar/src/ustar"
)

type lister struct {
	c     chan any
	done  chan struct{}
	close atomic.Bool
	once  sync.Once
}

func (list *lister) closed() bool {
	return list.close.Load()
}

func (list *lister) exit() {
	list.close.Store(true)
	list.once.Do(func() { close(list.done) })
}

func newLister() *lister {
	return &lister{
		c:    make(chan any, 10),
		done: make(chan struct{}),
	}
}

func (list *lister) closeChan() {
	close(list.c)
}

func (list *lister) send(m any) {
	select {
	case list.c <- m:
	case <-list.done:
	}
}

func (list *lister) sendEntry(e *ListEntry) {
	if list.closed() {
		return
	}
	list.send(e)
}

func (list *lister) addDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()
	stat, err := d.Stat()
	if err != nil {
		return err
	}
	entries, err := d.Readdir(-1)
	if err != nil {
		return err
	}
	slices.SortFunc(entries, func(a, b os.FileInfo) int { return strings.Compare(a.Name(), b.Name()) })
	list.sendEntry(&ListEntry{Name: dir, Type: ustar.TypeDir, Info: stat})
	for _, e := range entries {
		if list.closed() {
			return nil
		}
		name := path.Join(dir, e.Name())
		if e.IsDir() {
			if err := list.addDir(name); err != nil {
				logrus.WithError(err).WithField("dir", name).Warn("Failed to list directory")
			}
			continue
		}
		if entry := mkListEntry(name, e); entry != nil {
			list.sendEntry(entry)
		}
	}
	return nil
}

// mkListEntry describes the non-directory object name. It returns nil for
// objects that cannot be archived.
func mkListEntry(name string, fi os.FileInfo) *ListEntry {
	t, ok := typeOf(fi)
	if !ok {
		logrus.WithField("path", name).Debug("Skipping unsupported file type")
		return nil
	}
	ret := &ListEntry{Name: name, Type: t, Info: fi}
	switch t {
	case ustar.TypeFile:
		ret.Size = fi.Size()
	case ustar.TypeSymlink:
		link, err := os.Readlink(name)
		if err != nil {
			logrus.WithError(err).WithField("path", name).Warn("Failed to read link")
			return nil
		}
		ret.Linkname = link
	case ustar.TypeChar, ustar.TypeBlock:
		if ret.DevMajor, ret.DevMinor, ok = deviceNumbers(fi); !ok {
			logrus.WithField("path", name).Debug("Skipping device without device numbers")
			return nil
		}
	}
	return ret
}
