package tarindex

import (
	"os"

	"github.com/aurora-is-near/ustar/src/ustar"
)

func isRegular(fi os.FileInfo) bool {
	mode := fi.Mode()
	return mode & ^os.ModeType == mode
}

func isLink(fi os.FileInfo) bool {
	mode := fi.Mode()
	return mode&os.ModeSymlink != 0
}

// typeOf maps a file mode onto the archive entry kind. ok is false for
// sockets and other objects an archive cannot hold.
func typeOf(fi os.FileInfo) (t ustar.Typeflag, ok bool) {
	mode := fi.Mode()
	switch {
	case fi.IsDir():
		return ustar.TypeDir, true
	case isLink(fi):
		return ustar.TypeSymlink, true
	case isRegular(fi):
		return ustar.TypeFile, true
	case mode&os.ModeNamedPipe != 0:
		return ustar.TypeFifo, true
	case mode&os.ModeCharDevice != 0:
		return ustar.TypeChar, true
	case mode&os.ModeDevice != 0:
		return ustar.TypeBlock, true
	}
	return 0, false
}
