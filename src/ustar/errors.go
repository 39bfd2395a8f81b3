package ustar

import "github.com/pkg/errors"

var (
	// ErrPathTooLong is returned when a normalized path does not fit the
	// name and prefix fields.
	ErrPathTooLong = errors.New("path is too long")
	// ErrMalformedArchive is returned when an entry extends past the end of
	// the source.
	ErrMalformedArchive = errors.New("malformed archive")
	// ErrChecksum is returned by readers configured with OptVerifyChecksum
	// when a stored header checksum does not match the header bytes.
	ErrChecksum = errors.New("header checksum mismatch")
)
