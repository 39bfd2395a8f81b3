// Package ustar reads and writes USTAR tar archives held as an ordered list of
// entries in memory.
//
// Entries are appended with the Add methods or parsed from a byte source with
// ReadArchive, and the archive is serialized with WriteTo or ToBlob. Paths are
// limited to what the 100 byte name and 155 byte prefix fields hold; there is
// no support for GNU or pax extensions.
//
// An Archive is not safe for concurrent mutation.
package ustar

import (
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/aurora-is-near/ustar/src/blob"
)

// Entry is one archived object. Content is set for files and for every entry
// read from a byte source.
type Entry struct {
	Header  Header
	Content *blob.File

	FirstByte int64 // Offset of the header block in the source. Only populated when reading.
	LastByte  int64 // Offset just past the padded content in the source. Only populated when reading.
}

// Path returns the full path of the entry.
func (e *Entry) Path() string {
	return e.Header.Path()
}

// Archive is an ordered list of entries with a path lookup cache.
// The zero value is an empty archive ready to use.
type Archive struct {
	entries []Entry
	// Most recent index per path. A missing path falls back to a scan.
	indexMap map[string]int
}

// New returns an empty archive.
func New() *Archive {
	return &Archive{indexMap: make(map[string]int)}
}

func (a *Archive) index() map[string]int {
	if a.indexMap == nil {
		a.indexMap = make(map[string]int)
	}
	return a.indexMap
}

func (a *Archive) add(path string, h Header, modTime time.Time, content *blob.File) error {
	name, prefix, err := splitFilename(path)
	if err != nil {
		return err
	}
	h.Name, h.Prefix = name, prefix
	a.index()[path] = len(a.entries)
	a.entries = append(a.entries, Entry{Header: NewHeader(h, modTime), Content: content})
	return nil
}

// AddFile appends a regular file. Size and modification time come from
// content. The mode defaults to 0644.
func (a *Archive) AddFile(path string, content *blob.File, opts ...Option) error {
	cfg := newEntryConfig(defaultFileMode, opts)
	if content == nil {
		content = blob.NewFile(blob.Bytes(nil), path, cfg.modTime)
	}
	h := cfg.header(TypeFile)
	h.Size = content.Size()
	return a.add(normalizePath(path), h, content.ModTime, content)
}

func (a *Archive) addLink(typeflag Typeflag, path, target string, opts []Option) error {
	cfg := newEntryConfig(defaultFileMode, opts)
	h := cfg.header(typeflag)
	h.Linkname = normalizePath(target)
	if strings.HasSuffix(target, "/") {
		h.Linkname += "/"
	}
	// Symbolic links resolve against the extraction root, so absolute targets
	// stay absolute.
	if typeflag == TypeSymlink && strings.HasPrefix(target, "/") && !strings.HasPrefix(h.Linkname, "/") {
		h.Linkname = "/" + h.Linkname
	}
	return a.add(normalizePath(path), h, cfg.modTime, nil)
}

// AddHardlink appends a hard link to target.
func (a *Archive) AddHardlink(path, target string, opts ...Option) error {
	return a.addLink(TypeLink, path, target, opts)
}

// AddSymlink appends a symbolic link to target. An absolute target keeps its
// leading slash.
func (a *Archive) AddSymlink(path, target string, opts ...Option) error {
	return a.addLink(TypeSymlink, path, target, opts)
}

// AddDir appends a directory. Its path is stored with a trailing slash and
// the mode defaults to 0775.
func (a *Archive) AddDir(path string, opts ...Option) error {
	cfg := newEntryConfig(defaultDirMode, opts)
	return a.add(normalizePath(path)+"/", cfg.header(TypeDir), cfg.modTime, nil)
}

func (a *Archive) addDevice(typeflag Typeflag, path string, major, minor int64, opts []Option) error {
	cfg := newEntryConfig(defaultFileMode, opts)
	h := cfg.header(typeflag)
	h.DevMajor, h.DevMinor = &major, &minor
	return a.add(normalizePath(path), h, cfg.modTime, nil)
}

// AddCharDevice appends a character device node.
func (a *Archive) AddCharDevice(path string, major, minor int64, opts ...Option) error {
	return a.addDevice(TypeChar, path, major, minor, opts)
}

// AddBlockDevice appends a block device node.
func (a *Archive) AddBlockDevice(path string, major, minor int64, opts ...Option) error {
	return a.addDevice(TypeBlock, path, major, minor, opts)
}

// AddFIFO appends a named pipe.
func (a *Archive) AddFIFO(path string, opts ...Option) error {
	cfg := newEntryConfig(defaultFileMode, opts)
	return a.add(normalizePath(path), cfg.header(TypeFifo), cfg.modTime, nil)
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// EntryAt returns the entry at index i. The header is a copy; the content is
// shared with the archive. ok is false when i is out of range.
func (a *Archive) EntryAt(i int) (e Entry, ok bool) {
	if i < 0 || i >= len(a.entries) {
		return Entry{}, false
	}
	e = a.entries[i]
	e.Header = e.Header.Clone()
	return e, true
}

// All iterates over the entries in archive order.
func (a *Archive) All() iter.Seq2[int, Entry] {
	return func(yield func(int, Entry) bool) {
		for i := 0; i < len(a.entries); i++ {
			e, _ := a.EntryAt(i)
			if !yield(i, e) {
				return
			}
		}
	}
}

// IndexOf returns the index of the most recent entry with the given full
// path, or -1.
func (a *Archive) IndexOf(path string) int {
	if i, ok := a.index()[path]; ok {
		return i
	}
	for i := len(a.entries) - 1; i >= 0; i-- {
		if a.entries[i].Path() == path {
			a.indexMap[path] = i
			return i
		}
	}
	return -1
}

// RemoveAt removes the entry at index i. Out of range indices are ignored.
func (a *Archive) RemoveAt(i int) {
	a.RemoveRange(i, i+1)
}

// RemoveRange removes the entries at indices [i, j). The range is clipped to
// the archive.
func (a *Archive) RemoveRange(i, j int) {
	i, j = max(i, 0), min(j, len(a.entries))
	if i >= j {
		return
	}
	a.entries = slices.Delete(a.entries, i, j)
	for path, k := range a.index() {
		switch {
		case k >= j:
			a.indexMap[path] = k - (j - i)
		case k >= i:
			delete(a.indexMap, path)
		}
	}
}

// RemoveEntry removes every entry with the given full path.
func (a *Archive) RemoveEntry(path string) {
	start, ok := a.index()[path]
	if !ok || start >= len(a.entries) {
		start = len(a.entries) - 1
	}
	for i := start; i >= 0; i-- {
		if a.entries[i].Path() == path {
			a.RemoveAt(i)
		}
	}
}

// Trim drops every entry whose path is written again later in the archive,
// so that the last write of each path wins. Survivors keep their order.
func (a *Archive) Trim() {
	seen := make(map[string]struct{}, len(a.entries))
	kept := make([]Entry, 0, len(a.entries))
	for i := len(a.entries) - 1; i >= 0; i-- {
		path := a.entries[i].Path()
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		kept = append(kept, a.entries[i])
	}
	slices.Reverse(kept)
	a.entries = kept
	a.indexMap = make(map[string]int, len(kept))
	for i := range kept {
		a.indexMap[kept[i].Path()] = i
	}
}
