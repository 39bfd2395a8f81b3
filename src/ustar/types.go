package ustar

import "strconv"

const (
	// BlockSize is the unit every header and content region is aligned to.
	BlockSize int64 = 512
	// MediaType is the media type of serialized archives.
	MediaType = "application/x-tar"
	// MaxTimestamp is the largest modification time, in seconds, the header holds.
	MaxTimestamp int64 = 0o777777777777
	// MaxPathLen is the longest path the name and prefix fields hold together.
	MaxPathLen = prefixLen + nameLen

	footerSize = BlockSize * 2
	headerLen  = 500

	magic = "ustar"

	defaultFileMode = 0o644
	defaultDirMode  = 0o775

	modeSUID   = 0o4000
	modeSGID   = 0o2000
	modeSticky = 0o1000
)

// Field layout of the defined 500 bytes of a header block.
const (
	namePos     = 0
	nameLen     = 100
	modePos     = 100
	modeLen     = 8
	uidPos      = 108
	uidLen      = 8
	gidPos      = 116
	gidLen      = 8
	sizePos     = 124
	sizeLen     = 12
	mtimePos    = 136
	mtimeLen    = 12
	chksumPos   = 148
	chksumLen   = 8 // six digits, NUL, space
	typePos     = 156
	typeLen     = 1
	linkPos     = 157
	linkLen     = 100
	magicPos    = 257
	magicLen    = 6
	versionPos  = 263
	versionLen  = 2
	unamePos    = 265
	unameLen    = 32
	gnamePos    = 297
	gnameLen    = 32
	devMajorPos = 329
	devMajorLen = 8
	devMinorPos = 337
	devMinorLen = 8
	prefixPos   = 345
	prefixLen   = 155

	// Up to seven octal digits, three bits each.
	chksumPrecision = 7 * 3
)

type block [BlockSize]byte

var zeroBlock block

func (b *block) isZero() bool {
	return *b == zeroBlock
}

// Typeflag is the kind of an archive entry.
type Typeflag int

const (
	TypeFile    Typeflag = 0 // regular file
	TypeLink    Typeflag = 1 // hard link
	TypeSymlink Typeflag = 2 // symbolic link
	TypeChar    Typeflag = 3 // character device node
	TypeBlock   Typeflag = 4 // block device node
	TypeDir     Typeflag = 5 // directory
	TypeFifo    Typeflag = 6 // named pipe
)

var typeNames = [...]string{
	TypeFile:    "file",
	TypeLink:    "hardlink",
	TypeSymlink: "symlink",
	TypeChar:    "chardev",
	TypeBlock:   "blockdev",
	TypeDir:     "directory",
	TypeFifo:    "fifo",
}

func (t Typeflag) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// IsDevice reports whether entries of this kind carry device numbers.
func (t Typeflag) IsDevice() bool {
	return t == TypeChar || t == TypeBlock
}

// paddingSize is the number of zero bytes following size bytes of content.
func paddingSize(size int64) int64 {
	r := size % BlockSize
	if r == 0 {
		return 0
	}
	return BlockSize - r
}

// contentBlocks is the number of blocks size bytes of content occupy.
func contentBlocks(size int64) int64 {
	return (size + BlockSize - 1) / BlockSize
}
