package tarmidsplit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aurora-is-near/ustar/src/splitting"
	"github.com/aurora-is-near/ustar/src/tarserv"
)

// mkTar writes a tar file of a generated directory tree and returns its name.
func mkTar(t *testing.T) string {
	src := t.TempDir()
	for i := 0; i < 20; i++ {
		dir := filepath.Join(src, fmt.Sprintf("dir%02d", i%4))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("MkdirAll: %s", err)
		}
		content := bytes.Repeat([]byte{byte('a' + i)}, 300*i)
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("file%02d", i)), content, 0o644); err != nil {
			t.Fatalf("WriteFile: %s", err)
		}
	}
	fn := filepath.Join(t.TempDir(), "tree.tar")
	f, err := os.Create(fn)
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	defer f.Close()
	if err := tarserv.NewTar(src, f, tarserv.OptNumericIDs); err != nil {
		t.Fatalf("NewTar: %s", err)
	}
	return fn
}

func hashes(t *testing.T, fn string) string {
	buf := new(bytes.Buffer)
	if err := splitting.ReadHashes(context.Background(), fn, buf, "sha256"); err != nil {
		t.Fatalf("ReadHashes: %s", err)
	}
	return buf.String()
}

func TestTar(t *testing.T) {
	fn := mkTar(t)
	before := hashes(t, fn)
	if err := splitting.SplitTarMiddle(context.Background(), fn); err != nil {
		t.Fatalf("SplitTarMiddle: %s", err)
	}
	first, second := hashes(t, fn), hashes(t, fn+".part2")
	if first == "" || second == "" {
		t.Fatalf("empty part: %q %q", first, second)
	}
	if first+second != before {
		t.Errorf("parts hold different files:\n%s\n%s", first+second, before)
	}
}

func TestHash(t *testing.T) {
	fn := mkTar(t)
	out, err := os.Create(fn + ".hashes")
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	defer out.Close()
	if err := splitting.ReadHashes(context.Background(), fn, out, "xxhash"); err != nil {
		t.Fatalf("ReadHashes: %s", err)
	}
}
