// Package blob provides the byte ranges the ustar codec reads archives from
// and assembles archives into.
package blob

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Blob is a sized, random-access byte range.
type Blob interface {
	io.ReaderAt
	Size() int64
}

// Bytes wraps p. The slice is not copied.
func Bytes(p []byte) Blob {
	return bytes.NewReader(p)
}

// Section returns the bytes [start, end) of b without copying them.
// Nested sections collapse onto the outermost reader.
func Section(b Blob, start, end int64) Blob {
	if end < start {
		end = start
	}
	r := io.ReaderAt(b)
	for {
		t, ok := r.(*io.SectionReader)
		if !ok {
			break
		}
		outer, outerOff, outerN := t.Outer()
		if end > outerN {
			break
		}
		r = outer
		start, end = start+outerOff, end+outerOff
	}
	return io.NewSectionReader(r, start, end-start)
}

// ReadAll returns the whole content of b.
func ReadAll(b Blob) ([]byte, error) {
	p := make([]byte, b.Size())
	n, err := b.ReadAt(p, 0)
	if n == len(p) {
		return p, nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return p[:n], err
}

// File is a content handle: a byte range plus the name and modification time
// it is archived with.
type File struct {
	Blob
	Name    string
	ModTime time.Time
}

// NewFile tags b with name and modTime.
func NewFile(b Blob, name string, modTime time.Time) *File {
	return &File{Blob: b, Name: name, ModTime: modTime}
}

// FromOSFile wraps an open file. The caller keeps ownership of f and must not
// close it before the returned File has been read.
func FromOSFile(f *os.File) (*File, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return NewFile(io.NewSectionReader(f, 0, fi.Size()), fi.Name(), fi.ModTime()), nil
}

// zeros is a run of n zero bytes that occupies no memory.
type zeros int64

// Zeros returns a Blob of n zero bytes.
func Zeros(n int64) Blob {
	return zeros(n)
}

func (z zeros) Size() int64 { return int64(z) }

func (z zeros) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(z) {
		return 0, io.EOF
	}
	rem := int64(z) - off
	if int64(len(p)) > rem {
		clear(p[:rem])
		return int(rem), io.EOF
	}
	clear(p)
	return len(p), nil
}

// pathBlob reads a file by name, opening it for every read so that no file
// descriptor is held between reads.
type pathBlob struct {
	name string
	size int64
}

// Path returns a File reading size bytes of the named file. The file is
// opened on every read.
func Path(name string, size int64, modTime time.Time) *File {
	return NewFile(pathBlob{name: name, size: size}, filepath.Base(name), modTime)
}

func (p pathBlob) Size() int64 { return p.size }

func (p pathBlob) ReadAt(b []byte, off int64) (int, error) {
	if off >= p.size {
		return 0, io.EOF
	}
	f, err := os.Open(p.name)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	if rem := p.size - off; int64(len(b)) > rem {
		n, err := f.ReadAt(b[:rem], off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return f.ReadAt(b, off)
}
