package ustar

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"pgregory.net/rapid"

	"github.com/aurora-is-near/ustar/src/blob"
)

// fataler is satisfied by *testing.T, *testing.F and *rapid.T.
type fataler interface {
	Fatalf(format string, args ...any)
}

func serialize(t fataler, a *Archive) []byte {
	buf := new(bytes.Buffer)
	if _, err := a.WriteTo(buf); err != nil {
		t.Fatalf("WriteTo: %s", err)
	}
	return buf.Bytes()
}

func content(t fataler, e Entry) string {
	p, err := blob.ReadAll(e.Content)
	if err != nil {
		t.Fatalf("ReadAll: %s", err)
	}
	return string(p)
}

func TestReadExample(t *testing.T) {
	a := New()
	assert.NilError(t, a.AddFile("a/b.txt", testFile("b.txt", "hello")))

	parsed, err := ReadArchive(context.Background(), a.ToBlob())
	assert.NilError(t, err)
	assert.Assert(t, is.Equal(parsed.Len(), 1))
	e, _ := parsed.EntryAt(0)
	assert.Check(t, is.Equal(e.Path(), "a/b.txt"))
	assert.Check(t, is.Equal(content(t, e), "hello"))
	assert.Check(t, is.Equal(e.Content.Name, "a/b.txt"))
	assert.Check(t, e.Content.ModTime.Equal(testTime))
	assert.Check(t, is.Equal(e.FirstByte, int64(0)))
	assert.Check(t, is.Equal(e.LastByte, 2*BlockSize))
	assert.Check(t, is.Equal(parsed.IndexOf("a/b.txt"), 0))
}

func TestReadEmpty(t *testing.T) {
	for _, src := range [][]byte{nil, make([]byte, footerSize), make([]byte, BlockSize)} {
		a, err := ReadArchive(context.Background(), blob.Bytes(src))
		assert.NilError(t, err)
		assert.Check(t, is.Equal(a.Len(), 0))
	}
}

func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		type want struct {
			path     string
			typeflag Typeflag
			content  string
		}
		var wants []want
		a := New()
		n := rapid.IntRange(0, 8).Draw(t, "entries")
		for i := 0; i < n; i++ {
			p := rapid.StringMatching(`[a-z]{1,8}(/[a-z]{1,8}){0,3}`).Draw(t, "path")
			var err error
			switch kind := rapid.SampledFrom([]Typeflag{TypeFile, TypeDir, TypeSymlink, TypeFifo, TypeChar}).Draw(t, "kind"); kind {
			case TypeFile:
				data := rapid.SliceOfN(rapid.Byte(), 0, 1500).Draw(t, "content")
				err = a.AddFile(p, blob.NewFile(blob.Bytes(data), p, testTime))
				wants = append(wants, want{p, kind, string(data)})
			case TypeDir:
				err = a.AddDir(p)
				wants = append(wants, want{p + "/", kind, ""})
			case TypeSymlink:
				err = a.AddSymlink(p, "target")
				wants = append(wants, want{p, kind, ""})
			case TypeFifo:
				err = a.AddFIFO(p)
				wants = append(wants, want{p, kind, ""})
			case TypeChar:
				err = a.AddCharDevice(p, 1, 5)
				wants = append(wants, want{p, kind, ""})
			}
			if err != nil {
				t.Fatalf("add %q: %s", p, err)
			}
		}

		parsed, err := ReadArchive(context.Background(), blob.Bytes(serialize(t, a)))
		if err != nil {
			t.Fatalf("ReadArchive: %s", err)
		}
		if parsed.Len() != len(wants) {
			t.Fatalf("got %d entries, want %d", parsed.Len(), len(wants))
		}
		var offset int64
		for i, e := range parsed.All() {
			w := wants[i]
			if e.Path() != w.path || e.Header.Typeflag != w.typeflag {
				t.Fatalf("entry %d: got %s %q, want %s %q", i, e.Header.Typeflag, e.Path(), w.typeflag, w.path)
			}
			if e.Header.Size != int64(len(w.content)) || content(t, e) != w.content {
				t.Fatalf("entry %d: content mismatch", i)
			}
			if !e.Header.ValidChecksum() {
				t.Fatalf("entry %d: invalid checksum", i)
			}
			if e.FirstByte != offset {
				t.Fatalf("entry %d: starts at %d, want %d", i, e.FirstByte, offset)
			}
			offset = e.LastByte
		}
	})
}

func TestReadWithArchiveTar(t *testing.T) {
	a := New()
	opts := []Option{OptModTime(testTime), OptUname("root"), OptGname("wheel")}
	assert.NilError(t, a.AddDir("d", opts...))
	assert.NilError(t, a.AddFile("d/f.txt", testFile("f.txt", "some content"), OptMode(0o600)))
	assert.NilError(t, a.AddSymlink("d/sym", "d/f.txt", opts...))
	assert.NilError(t, a.AddHardlink("d/hard", "d/f.txt", opts...))
	assert.NilError(t, a.AddCharDevice("d/null", 1, 3, opts...))
	assert.NilError(t, a.AddFIFO("d/pipe", opts...))

	tr := tar.NewReader(bytes.NewReader(serialize(t, a)))
	for _, want := range []struct {
		name     string
		typeflag byte
		linkname string
		body     string
	}{
		{"d/", tar.TypeDir, "", ""},
		{"d/f.txt", tar.TypeReg, "", "some content"},
		{"d/sym", tar.TypeSymlink, "d/f.txt", ""},
		{"d/hard", tar.TypeLink, "d/f.txt", ""},
		{"d/null", tar.TypeChar, "", ""},
		{"d/pipe", tar.TypeFifo, "", ""},
	} {
		hdr, err := tr.Next()
		if err != nil {
			t.Fatalf("Next: %s", err)
		}
		assert.Check(t, is.Equal(hdr.Name, want.name))
		assert.Check(t, is.Equal(hdr.Typeflag, want.typeflag))
		assert.Check(t, is.Equal(hdr.Linkname, want.linkname))
		assert.Check(t, hdr.ModTime.Equal(testTime), "%s: %s", hdr.Name, hdr.ModTime)
		body, err := io.ReadAll(tr)
		assert.NilError(t, err)
		assert.Check(t, is.Equal(string(body), want.body))
		switch want.typeflag {
		case tar.TypeReg:
			assert.Check(t, is.Equal(hdr.Mode, int64(0o600)))
		case tar.TypeChar:
			assert.Check(t, is.Equal(hdr.Devmajor, int64(1)))
			assert.Check(t, is.Equal(hdr.Devminor, int64(3)))
			assert.Check(t, is.Equal(hdr.Uname, "root"))
			assert.Check(t, is.Equal(hdr.Gname, "wheel"))
		}
	}
	_, err := tr.Next()
	assert.Check(t, is.Equal(err, io.EOF))
}

func TestReadArchiveTarOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)
	for _, f := range []struct {
		hdr  tar.Header
		body string
	}{
		{tar.Header{Name: "dir/", Typeflag: tar.TypeDir, Mode: 0o755}, ""},
		{tar.Header{Name: "dir/file", Typeflag: tar.TypeReg, Mode: 0o644, Size: 600, Uid: 42}, string(bytes.Repeat([]byte("x"), 600))},
		{tar.Header{Name: "dir/link", Typeflag: tar.TypeSymlink, Linkname: "file"}, ""},
	} {
		f.hdr.ModTime = testTime
		f.hdr.Format = tar.FormatUSTAR
		assert.NilError(t, tw.WriteHeader(&f.hdr))
		_, err := tw.Write([]byte(f.body))
		assert.NilError(t, err)
	}
	assert.NilError(t, tw.Close())

	a, err := ReadArchiveFrom(context.Background(), buf, OptVerifyChecksum)
	assert.NilError(t, err)
	assert.Assert(t, is.DeepEqual(paths(a), []string{"dir/", "dir/file", "dir/link"}))

	e, _ := a.EntryAt(1)
	assert.Check(t, is.Equal(e.Header.UID, 42))
	assert.Check(t, is.Equal(e.Header.Size, int64(600)))
	assert.Check(t, is.Len(content(t, e), 600))
	assert.Check(t, is.Equal(e.FirstByte, BlockSize))
	assert.Check(t, is.Equal(e.LastByte, 4*BlockSize))

	e, _ = a.EntryAt(2)
	assert.Check(t, is.Equal(e.Header.Typeflag, TypeSymlink))
	assert.Check(t, is.Equal(e.Header.Linkname, "file"))
	assert.Check(t, is.Nil(e.Header.DevMajor))
}

func TestReadTerminator(t *testing.T) {
	a := New()
	assert.NilError(t, a.AddFile("one", testFile("one", "1")))
	first := serialize(t, a)
	b := New()
	assert.NilError(t, b.AddFile("two", testFile("two", "2")))
	second := serialize(t, b)

	// entry, lone zero block, entry, terminator
	var src []byte
	src = append(src, first[:2*BlockSize]...)
	src = append(src, zeroBlock[:]...)
	src = append(src, second...)
	parsed, err := ReadArchive(context.Background(), blob.Bytes(src))
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(paths(parsed), []string{"one", "two"}))
	e, _ := parsed.EntryAt(1)
	assert.Check(t, is.Equal(e.FirstByte, 3*BlockSize))

	// Data after the terminator is not read.
	src = append(first, second...)
	parsed, err = ReadArchive(context.Background(), blob.Bytes(src))
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(paths(parsed), []string{"one"}))

	// A missing terminator reads as zeros.
	parsed, err = ReadArchive(context.Background(), blob.Bytes(first[:2*BlockSize]))
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(paths(parsed), []string{"one"}))
}

func TestReadTruncated(t *testing.T) {
	a := New()
	assert.NilError(t, a.AddFile("f", testFile("f", "hello")))
	src := serialize(t, a)

	parsed, err := ReadArchive(context.Background(), blob.Bytes(src[:BlockSize+5]))
	assert.NilError(t, err)
	e, _ := parsed.EntryAt(0)
	assert.Check(t, is.Equal(content(t, e), "hello"))

	_, err = ReadArchive(context.Background(), blob.Bytes(src[:BlockSize+3]))
	assert.Check(t, is.ErrorIs(err, ErrMalformedArchive))
	assert.Check(t, is.ErrorContains(err, "expected size 517, got size 515"))
}

func TestReadDropsDeviceOfNonDevice(t *testing.T) {
	a := New()
	assert.NilError(t, a.AddFIFO("pipe"))
	src := serialize(t, a)
	writeOctal(7, src, devMajorPos, devMajorLen)
	writeOctal(9, src, devMinorPos, devMinorLen)

	parsed, err := ReadArchive(context.Background(), blob.Bytes(src))
	assert.NilError(t, err)
	e, _ := parsed.EntryAt(0)
	assert.Check(t, is.Nil(e.Header.DevMajor))
	assert.Check(t, is.Nil(e.Header.DevMinor))
}

func TestReadVerifyChecksum(t *testing.T) {
	a := New()
	assert.NilError(t, a.AddFile("f", testFile("f", "hello")))
	src := serialize(t, a)
	src[0] = 'g'

	parsed, err := ReadArchive(context.Background(), blob.Bytes(src))
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(paths(parsed), []string{"g"}))

	_, err = ReadArchive(context.Background(), blob.Bytes(src), OptVerifyChecksum)
	assert.Check(t, is.ErrorIs(err, ErrChecksum))
}

func TestReadCancelled(t *testing.T) {
	a := New()
	assert.NilError(t, a.AddFile("f", testFile("f", "hello")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	parsed, err := ReadArchive(ctx, a.ToBlob())
	assert.Check(t, is.ErrorIs(err, context.Canceled))
	assert.Check(t, is.Nil(parsed))
}

func TestRewriteArchiveTarOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)
	for _, hdr := range []*tar.Header{
		{Name: "dir/", Typeflag: tar.TypeDir, Mode: 0o755, Format: tar.FormatUSTAR},
		{Name: "dir/file", Typeflag: tar.TypeReg, Mode: 0o644, Size: 3, Format: tar.FormatUSTAR},
		{Name: "dir/gnu", Typeflag: tar.TypeReg, Mode: 0o644, Size: 3, Format: tar.FormatGNU},
		{Name: "dir/file", Typeflag: tar.TypeReg, Mode: 0o600, Size: 3, Format: tar.FormatUSTAR},
	} {
		hdr.ModTime = testTime
		assert.NilError(t, tw.WriteHeader(hdr))
		_, err := tw.Write([]byte("abc")[:hdr.Size])
		assert.NilError(t, err)
	}
	assert.NilError(t, tw.Close())

	a, err := ReadArchiveFrom(context.Background(), buf)
	assert.NilError(t, err)
	a.Trim()
	out := serialize(t, a)
	fromBlob, err := blob.ReadAll(a.ToBlob())
	assert.NilError(t, err)
	assert.Check(t, bytes.Equal(fromBlob, out))

	tr := tar.NewReader(bytes.NewReader(out))
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		assert.NilError(t, err)
		names = append(names, hdr.Name)
		if hdr.Name == "dir/file" {
			assert.Check(t, is.Equal(hdr.Mode, int64(0o600)))
		}
	}
	assert.Check(t, is.DeepEqual(names, []string{"dir/", "dir/gnu", "dir/file"}))

	reparsed, err := ReadArchive(context.Background(), blob.Bytes(out), OptVerifyChecksum)
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual(paths(reparsed), []string{"dir/", "dir/gnu", "dir/file"}))
}
