// Package splitting cuts tar files at entry boundaries and hashes the files
// they contain.
package splitting

import (
	"context"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/aurora-is-near/ustar/src/blob"
	"github.com/aurora-is-near/ustar/src/ustar"
	"github.com/aurora-is-near/ustar/src/util"
)

var (
	// ErrNoSplitPoint is returned when no entry starts in the second half of a tar file.
	ErrNoSplitPoint = errors.New("no entry boundary past the middle")
	// ErrUnknownAlgorithm is returned for hash algorithms other than sha256 and xxhash.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
)

func readArchive(ctx context.Context, f *os.File) (*ustar.Archive, int64, error) {
	src, err := blob.FromOSFile(f)
	if err != nil {
		return nil, 0, err
	}
	a, err := ustar.ReadArchive(ctx, src)
	return a, src.Size(), err
}

// midpoint returns the end of the first entry whose header ends in the
// second half of the file.
func midpoint(ctx context.Context, filename string) (lastbyte int64, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	a, size, err := readArchive(ctx, f)
	if err != nil {
		return 0, err
	}
	stop := size / 2
	for _, e := range a.All() {
		if e.FirstByte+ustar.BlockSize >= stop {
			return e.LastByte, nil
		}
	}
	return 0, errors.Wrapf(ErrNoSplitPoint, "%s", filename)
}

// splitfile moves everything from midpoint on into <filename>.part2 and ends
// the truncated filename with two zero blocks.
func splitfile(filename string, midpoint int64) error {
	destF, err := util.CreateFile(filename + ".part2")
	if err != nil {
		return err
	}
	defer destF.Close()
	sourceF, err := os.OpenFile(filename, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer sourceF.Close()
	if _, err = io.Copy(destF, io.NewSectionReader(sourceF, midpoint, 1<<62)); err != nil {
		return err
	}
	if err := sourceF.Truncate(midpoint); err != nil {
		return err
	}
	_, err = sourceF.WriteAt(make([]byte, 2*ustar.BlockSize), midpoint)
	return err
}

// SplitTarMiddle splits a tarfile roughly at it's middle, preserving headers so that each part is a valid tar file.
// It truncates the input tarfile in place, and copies the remainder into a file called "<tarfile>.part2".
func SplitTarMiddle(ctx context.Context, tarfile string) error {
	mid, err := midpoint(ctx, tarfile)
	if err != nil {
		return err
	}
	return splitfile(tarfile, mid)
}

func newHash(algo string) (hash.Hash, error) {
	switch algo {
	case "sha256":
		return sha256.New(), nil
	case "xxhash":
		return xxhash.New(), nil
	}
	return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", algo)
}

// ReadHashes writes a line "<hex digest>  <path>" for every regular file in
// tarfile, hashed with algo: "sha256" or "xxhash".
func ReadHashes(ctx context.Context, tarfile string, w io.Writer, algo string) error {
	h, err := newHash(algo)
	if err != nil {
		return err
	}
	f, err := os.Open(tarfile)
	if err != nil {
		return err
	}
	defer f.Close()
	a, _, err := readArchive(ctx, f)
	if err != nil {
		return err
	}
	for _, e := range a.All() {
		if e.Header.Typeflag != ustar.TypeFile {
			continue
		}
		h.Reset()
		if _, err := io.Copy(h, io.NewSectionReader(e.Content, 0, e.Content.Size())); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%x  %s\n", h.Sum(nil), e.Path()); err != nil {
			return err
		}
	}
	return nil
}
