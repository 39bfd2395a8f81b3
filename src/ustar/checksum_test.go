package ustar

import (
	"archive/tar"
	"bytes"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestChecksumMatchesArchiveTar(t *testing.T) {
	buf := new(bytes.Buffer)
	w := tar.NewWriter(buf)
	err := w.WriteHeader(&tar.Header{
		Name:     "dir/a.txt",
		Mode:     0o600,
		Uid:      1000,
		Gid:      100,
		Uname:    "user",
		Gname:    "users",
		ModTime:  time.Unix(1600000000, 0),
		Typeflag: tar.TypeReg,
		Format:   tar.FormatUSTAR,
	})
	assert.NilError(t, err)
	assert.NilError(t, w.Flush())

	raw := buf.Bytes()[:BlockSize]
	stored := decodeOctal(raw, chksumPos, chksumLen)
	assert.Check(t, is.Equal(generateChecksum(raw, chksumPrecision), stored))
}

func TestChecksumBlanksOwnField(t *testing.T) {
	var b block
	copy(b[:], "name")
	sum := generateChecksum(b[:], chksumPrecision)
	assert.Check(t, is.Equal(sum, int64('n'+'a'+'m'+'e'+8*' ')))

	copy(b[chksumPos:], "7777777\x00")
	assert.Check(t, is.Equal(generateChecksum(b[:], chksumPrecision), sum))
}

func TestChecksumIgnoresBlockTail(t *testing.T) {
	var b block
	b[headerLen] = 0xff
	assert.Check(t, is.Equal(generateChecksum(b[:], chksumPrecision), int64(8*' ')))
}

func TestChecksumMask(t *testing.T) {
	var b block
	for i := range b {
		b[i] = 0xff
	}
	// 3 bits of precision keep the sum below 16.
	assert.Check(t, generateChecksum(b[:], 3) < 16)
}
