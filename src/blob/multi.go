package blob

import (
	"io"
	"sort"

	"github.com/pkg/errors"
)

var errNegativeOffset = errors.New("blob: negative offset")

// Multi is an ordered concatenation of blobs, tagged with a media type.
// Parts are referenced, not copied.
type Multi struct {
	parts     []Blob
	offsets   []int64 // start of each part
	size      int64
	mediaType string
}

// NewMulti concatenates parts.
func NewMulti(mediaType string, parts ...Blob) *Multi {
	m := &Multi{mediaType: mediaType}
	for _, p := range parts {
		m.Append(p)
	}
	return m
}

// Append adds b to the end. Empty blobs are dropped.
func (m *Multi) Append(b Blob) {
	if b == nil || b.Size() == 0 {
		return
	}
	m.parts = append(m.parts, b)
	m.offsets = append(m.offsets, m.size)
	m.size += b.Size()
}

// Size returns the total length of all parts.
func (m *Multi) Size() int64 { return m.size }

// MediaType returns the media type given to NewMulti.
func (m *Multi) MediaType() string { return m.mediaType }

// Parts returns the number of parts.
func (m *Multi) Parts() int { return len(m.parts) }

func (m *Multi) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errNegativeOffset
	}
	if off >= m.size {
		return 0, io.EOF
	}
	// first part that ends after off
	i := sort.Search(len(m.parts), func(i int) bool {
		return m.offsets[i]+m.parts[i].Size() > off
	})
	var n int
	for ; i < len(m.parts) && n < len(p); i++ {
		part := m.parts[i]
		partOff := off + int64(n) - m.offsets[i]
		want := min(int64(len(p)-n), part.Size()-partOff)
		got, err := part.ReadAt(p[n:n+int(want)], partOff)
		n += got
		if int64(got) < want {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return n, err
		}
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// NewReader returns a reader over the whole concatenation, suitable for
// http.ServeContent.
func (m *Multi) NewReader() *io.SectionReader {
	return io.NewSectionReader(m, 0, m.size)
}

// WriteTo copies every part to w in order.
func (m *Multi) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, part := range m.parts {
		n, err := io.Copy(w, io.NewSectionReader(part, 0, part.Size()))
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
