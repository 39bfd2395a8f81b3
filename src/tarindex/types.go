package tarindex

import (
	"io/fs"

	"github.com/aurora-is-near/ustar/src/ustar"
)

// ListEntry describes an entry in a list of tar file entries.
type ListEntry struct {
	Size      int64          // Size of the entry.
	Name      string         // Path of filesystem object.
	Type      ustar.Typeflag // Directory, link, regular file, device node or fifo.
	Linkname  string         // Target of a symbolic link.
	DevMajor  int64          // Major device number of device nodes.
	DevMinor  int64          // Minor device number of device nodes.
	Info      fs.FileInfo    // Only populated when listing.
	FirstByte int64          // First byte occupied in the tar file.
	LastByte  int64          // First byte after the entry in the tar file.
}

// TarSize returns the number of bytes the entry occupies in a tar file: its
// header block plus its content padded to whole blocks.
func (entry *ListEntry) TarSize() int64 {
	if entry.Type != ustar.TypeFile {
		return ustar.BlockSize
	}
	return ustar.BlockSize + (entry.Size+ustar.BlockSize-1)/ustar.BlockSize*ustar.BlockSize
}
