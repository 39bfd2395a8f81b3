package ustar

import "time"

// A Header is the metadata record of one archive entry. Its fields map one to
// one onto the USTAR header block; see marshal for the layout.
type Header struct {
	Name     string   // last 100 bytes of the path
	Mode     int64    // permission and mode bits
	UID      int      // user id of owner
	GID      int      // group id of owner
	Size     int64    // content length, 0 for everything but files
	ModTime  int64    // modification time in seconds since the Unix epoch
	Checksum int64    // header checksum
	Typeflag Typeflag // entry kind
	Linkname string   // target of hard and symbolic links
	Version  int64    // format version, masked to 6 bits when written
	Uname    string   // user name of owner
	Gname    string   // group name of owner
	DevMajor *int64   // major device number, only for device nodes
	DevMinor *int64   // minor device number, only for device nodes
	Prefix   string   // leading part of paths longer than 100 bytes
}

// NewHeader returns h with ModTime set from modTime, truncated to whole
// seconds and clamped to [0, MaxTimestamp], and with the checksum of the
// resulting header block.
func NewHeader(h Header, modTime time.Time) Header {
	h.ModTime = clampTimestamp(modTime.Unix())
	h.Checksum = h.computeChecksum()
	return h
}

func clampTimestamp(sec int64) int64 {
	switch {
	case sec < 0:
		return 0
	case sec > MaxTimestamp:
		return MaxTimestamp
	}
	return sec
}

func (h *Header) computeChecksum() int64 {
	var scratch [headerLen]byte
	h.marshal(scratch[:])
	return generateChecksum(scratch[:], chksumPrecision)
}

// Path returns the full path of the entry.
func (h *Header) Path() string {
	return h.Prefix + h.Name
}

// LastModified returns ModTime as a time.
func (h *Header) LastModified() time.Time {
	return time.Unix(h.ModTime, 0)
}

// Clone returns a copy of h that shares no memory with it.
func (h *Header) Clone() Header {
	c := *h
	if h.DevMajor != nil {
		v := *h.DevMajor
		c.DevMajor = &v
	}
	if h.DevMinor != nil {
		v := *h.DevMinor
		c.DevMinor = &v
	}
	return c
}

// ValidChecksum reports whether the stored checksum matches the header bytes.
func (h *Header) ValidChecksum() bool {
	return h.Checksum == h.computeChecksum()
}

// marshal writes the 500 defined header bytes to b.
func (h *Header) marshal(b []byte) {
	b = b[:headerLen]
	writeString(h.Name, b, namePos, nameLen)
	writeOctal(h.Mode, b, modePos, modeLen)
	writeOctal(int64(h.UID), b, uidPos, uidLen)
	writeOctal(int64(h.GID), b, gidPos, gidLen)
	writeOctal(h.Size, b, sizePos, sizeLen)
	writeOctal(h.ModTime, b, mtimePos, mtimeLen)
	writeOctal(h.Checksum, b, chksumPos, chksumLen-1)
	b[chksumPos+chksumLen-1] = ' '
	writeOctal(int64(h.Typeflag), b, typePos, typeLen)
	writeString(h.Linkname, b, linkPos, linkLen)
	writeString(magic, b, magicPos, magicLen)
	// The version terminator lands on the first byte of uname, which is
	// written next, leaving the conventional "00".
	writeOctal(h.Version&0o77, b, versionPos, versionLen+1)
	writeString(h.Uname, b, unamePos, unameLen)
	writeString(h.Gname, b, gnamePos, gnameLen)
	writeDevice(h.DevMajor, b, devMajorPos, devMajorLen)
	writeDevice(h.DevMinor, b, devMinorPos, devMinorLen)
	writeString(h.Prefix, b, prefixPos, prefixLen)
}

// marshalChecked writes h to b like marshal, with the checksum of the bytes
// actually written. A parsed header keeps the checksum of its source block,
// which differs from the marshalled one when the source used GNU magic or
// filled the device fields of a non-device entry.
func (h *Header) marshalChecked(b []byte) {
	h.marshal(b)
	writeOctal(generateChecksum(b, chksumPrecision), b, chksumPos, chksumLen-1)
}

// parseHeader decodes every field of a header block. The stored checksum is
// taken as is.
func parseHeader(b *block) Header {
	devMajor := decodeOctal(b[:], devMajorPos, devMajorLen)
	devMinor := decodeOctal(b[:], devMinorPos, devMinorLen)
	return Header{
		Name:     decodeString(b[:], namePos, nameLen),
		Mode:     decodeOctal(b[:], modePos, modeLen),
		UID:      int(decodeOctal(b[:], uidPos, uidLen)),
		GID:      int(decodeOctal(b[:], gidPos, gidLen)),
		Size:     decodeOctal(b[:], sizePos, sizeLen),
		ModTime:  decodeOctal(b[:], mtimePos, mtimeLen),
		Checksum: decodeOctal(b[:], chksumPos, chksumLen),
		Typeflag: Typeflag(decodeOctal(b[:], typePos, typeLen)),
		Linkname: decodeString(b[:], linkPos, linkLen),
		Version:  decodeOctal(b[:], versionPos, versionLen),
		Uname:    decodeString(b[:], unamePos, unameLen),
		Gname:    decodeString(b[:], gnamePos, gnameLen),
		DevMajor: &devMajor,
		DevMinor: &devMinor,
		Prefix:   decodeString(b[:], prefixPos, prefixLen),
	}
}
