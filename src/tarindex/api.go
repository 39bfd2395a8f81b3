package tarindex

import (
	"fmt"
	"io"
	"path"

	units "github.com/docker/go-units"

	"github.com/aurora-is-near/ustar/src/ustar"
)

func listToChan(dir string) (list *lister) {
	dir = path.Clean(dir)
	list = newLister()
	go func() {
		defer list.closeChan()
		if err := list.addDir(dir); err != nil {
			list.send(err)
		}
	}()
	return list
}

// ListToChan produces a flow of list entries send to chan entries.
// The channel is closed after listing has been completed.
// The channel will contain either *ListEntry or error entries.
func ListToChan(dir string) (entries <-chan any) {
	list := listToChan(dir)
	return list.c
}

// ListToFunc produces a flow of list entries that are given to entryFunc for processing.
// Directories come before their content, and the content of a directory is
// sorted by name.
func ListToFunc(dir string, entryFunc func(*ListEntry) error) error {
	list := listToChan(dir)
	defer list.exit()
	for m := range list.c {
		switch n := m.(type) {
		case *ListEntry:
			if err := entryFunc(n); err != nil {
				return err
			}
		case error:
			return n
		}
	}
	return nil
}

// Index returns the entries of a, with the byte range each occupies in the
// source it was read from.
func Index(a *ustar.Archive) []ListEntry {
	ret := make([]ListEntry, 0, a.Len())
	for _, e := range a.All() {
		le := ListEntry{
			Size:      e.Header.Size,
			Name:      e.Path(),
			Type:      e.Header.Typeflag,
			Linkname:  e.Header.Linkname,
			FirstByte: e.FirstByte,
			LastByte:  e.LastByte,
		}
		if e.Header.DevMajor != nil {
			le.DevMajor, le.DevMinor = *e.Header.DevMajor, *e.Header.DevMinor
		}
		ret = append(ret, le)
	}
	return ret
}

func writeLine(w io.Writer, e *ListEntry) error {
	_, err := fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n", e.FirstByte, e.LastByte, e.Type, units.HumanSize(float64(e.Size)), e.Name)
	return err
}

// WriteIndex writes one line per entry of a: first byte, last byte, type,
// size and path.
func WriteIndex(w io.Writer, a *ustar.Archive) error {
	for _, e := range Index(a) {
		if err := writeLine(w, &e); err != nil {
			return err
		}
	}
	return nil
}

// Layout returns the entries of a with the byte range each will occupy once
// a is written. Unlike Index it does not depend on a having been read from a
// source.
func Layout(a *ustar.Archive) []ListEntry {
	ret := Index(a)
	var off int64
	for i := range ret {
		ret[i].FirstByte = off
		off += ret[i].TarSize()
		ret[i].LastByte = off
	}
	return ret
}

// WriteListing writes the Layout of a in the format of WriteIndex. It returns
// the size a will have when written.
func WriteListing(w io.Writer, a *ustar.Archive) (size int64, err error) {
	for _, e := range Layout(a) {
		if err := writeLine(w, &e); err != nil {
			return 0, err
		}
	}
	return a.Size(), nil
}
