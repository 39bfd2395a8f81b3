package ustar

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/aurora-is-near/ustar/src/blob"
)

// blockReader walks a source one block at a time. Blocks past the end of the
// source read as zeros, and a short final block is zero-extended.
type blockReader struct {
	ctx   context.Context
	src   blob.Blob
	size  int64
	index int64 // next block
}

func (br *blockReader) offset() int64 {
	return br.index * BlockSize
}

// peekBlock reads the next block into b without consuming it.
func (br *blockReader) peekBlock(b *block) error {
	if err := br.ctx.Err(); err != nil {
		return err
	}
	*b = zeroBlock
	start := br.offset()
	if start >= br.size {
		return nil
	}
	n := min(BlockSize, br.size-start)
	got, err := br.src.ReadAt(b[:n], start)
	if int64(got) < n {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}

// nextBlock reads the next block into b and consumes it.
func (br *blockReader) nextBlock(b *block) error {
	if err := br.peekBlock(b); err != nil {
		return err
	}
	br.index++
	return nil
}

// readHeader returns the next header block, or io.EOF at the end of archive
// marker of two zero blocks. A lone zero block is skipped.
func (br *blockReader) readHeader(b *block) error {
	var next block
	for {
		if err := br.nextBlock(b); err != nil {
			return err
		}
		if !b.isZero() {
			return nil
		}
		if err := br.peekBlock(&next); err != nil {
			return err
		}
		if next.isZero() {
			return io.EOF
		}
	}
}

// ReadArchive parses the archive in src. Entry contents are sections of src,
// so src must stay readable for as long as the archive is used.
//
// The whole parse fails with ErrMalformedArchive when an entry extends past
// the end of src; no partial archive is returned. Device numbers are dropped
// from entries that are not device nodes.
func ReadArchive(ctx context.Context, src blob.Blob, opts ...ReadOption) (*Archive, error) {
	cfg := new(readConfig)
	for _, opt := range opts {
		opt.applyReadOption(cfg)
	}
	br := &blockReader{ctx: ctx, src: src, size: src.Size()}
	a := New()
	var raw block
	for {
		err := br.readHeader(&raw)
		if err == io.EOF {
			return a, nil
		}
		if err != nil {
			return nil, err
		}
		first := br.offset() - BlockSize
		hdr := parseHeader(&raw)
		if cfg.verifyChecksum {
			if sum := generateChecksum(raw[:], chksumPrecision); sum != hdr.Checksum {
				return nil, errors.Wrapf(ErrChecksum, "header at offset %d: stored %o, computed %o", first, hdr.Checksum, sum)
			}
		}

		start := br.offset()
		end := start + hdr.Size
		if br.size < end {
			return nil, errors.Wrapf(ErrMalformedArchive, "expected size %d, got size %d", end, br.size)
		}
		if !hdr.Typeflag.IsDevice() {
			hdr.DevMajor, hdr.DevMinor = nil, nil
		}

		path := hdr.Path()
		content := blob.NewFile(blob.Section(src, start, end), path, hdr.LastModified())
		br.index += contentBlocks(hdr.Size)

		a.indexMap[path] = len(a.entries)
		a.entries = append(a.entries, Entry{
			Header:    hdr,
			Content:   content,
			FirstByte: first,
			LastByte:  br.offset(),
		})
	}
}

// ReadArchiveFrom reads all of r into memory and parses it with ReadArchive.
func ReadArchiveFrom(ctx context.Context, r io.Reader, opts ...ReadOption) (*Archive, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ReadArchive(ctx, blob.Bytes(p), opts...)
}
