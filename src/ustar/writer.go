package ustar

import (
	"io"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/ustar/src/blob"
)

type tarWriter struct {
	w       io.Writer
	written int64
}

func (tw *tarWriter) write(p []byte) error {
	n, err := tw.w.Write(p)
	tw.written += int64(n)
	return err
}

// writeEntry writes e's header block, content and padding.
func (tw *tarWriter) writeEntry(e *Entry) error {
	var hdr block
	e.Header.marshalChecked(hdr[:])
	if err := tw.write(hdr[:]); err != nil {
		return err
	}
	if e.Content == nil {
		return nil
	}
	size := e.Content.Size()
	n, err := io.Copy(tw.w, io.NewSectionReader(e.Content, 0, size))
	tw.written += n
	if err != nil {
		return err
	}
	if n < size {
		return errors.Wrapf(io.ErrUnexpectedEOF, "content of %s: %d of %d bytes", e.Path(), n, size)
	}
	if pad := paddingSize(size); pad > 0 {
		return tw.write(zeroBlock[:pad])
	}
	return nil
}

// close writes the two zero blocks that end the archive.
func (tw *tarWriter) close() error {
	for i := 0; i < 2; i++ {
		if err := tw.write(zeroBlock[:]); err != nil {
			return err
		}
	}
	return nil
}

// WriteTo serializes the archive to w.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	tw := &tarWriter{w: w}
	for i := range a.entries {
		if err := tw.writeEntry(&a.entries[i]); err != nil {
			return tw.written, err
		}
	}
	err := tw.close()
	return tw.written, err
}

// ToBlob assembles the serialized archive from header blocks, the entry
// contents and zero padding. Contents are referenced, not copied.
func (a *Archive) ToBlob() *blob.Multi {
	m := blob.NewMulti(MediaType)
	for i := range a.entries {
		e := &a.entries[i]
		hdr := new(block)
		e.Header.marshalChecked(hdr[:])
		m.Append(blob.Bytes(hdr[:]))
		if e.Content != nil {
			m.Append(e.Content)
			m.Append(blob.Zeros(paddingSize(e.Content.Size())))
		}
	}
	m.Append(blob.Zeros(footerSize))
	return m
}

// Size returns the length of the serialized archive.
func (a *Archive) Size() int64 {
	size := footerSize
	for i := range a.entries {
		size += BlockSize
		if c := a.entries[i].Content; c != nil {
			size += contentBlocks(c.Size()) * BlockSize
		}
	}
	return size
}
