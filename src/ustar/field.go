package ustar

import (
	"bytes"
	"strconv"
	"unicode/utf8"
)

// decodeString returns the text of the field b[off:off+n] up to its first NUL.
func decodeString(b []byte, off, n int) string {
	f := b[off : off+n]
	if i := bytes.IndexByte(f, 0); i >= 0 {
		f = f[:i]
	}
	return string(f)
}

// decodeOctal parses the octal digits of the field b[off:off+n] up to its
// first NUL. Bytes that are not octal digits are skipped.
func decodeOctal(b []byte, off, n int) int64 {
	var v int64
	for _, c := range b[off : off+n] {
		if c == 0 {
			break
		}
		if c < '0' || c > '7' {
			continue
		}
		v = v<<3 | int64(c-'0')
	}
	return v
}

// writeString stores v left-justified in b[off:off+n] and NUL-fills the rest.
// A value longer than the field is cut at the last complete character that fits.
func writeString(v string, b []byte, off, n int) {
	f := b[off : off+n]
	w := len(v)
	if w > n {
		w = n
		for w > 0 && !utf8.RuneStart(v[w]) {
			w--
		}
	}
	copy(f, v[:w])
	clear(f[w:])
}

// writeOctal stores v as zero-padded octal digits in b[off:off+n]. When the
// digits need fewer than n bytes the last byte of the field is a NUL;
// otherwise every byte is a digit and high-order digits that do not fit are
// dropped.
func writeOctal(v int64, b []byte, off, n int) {
	if v < 0 {
		v = 0
	}
	f := b[off : off+n]
	if len(strconv.FormatInt(v, 8)) < n {
		f[n-1] = 0
		f = f[:n-1]
	}
	for i := len(f) - 1; i >= 0; i-- {
		f[i] = '0' + byte(v&7)
		v >>= 3
	}
}

// writeDevice stores a device number, or zero-fills the field when there is none.
func writeDevice(v *int64, b []byte, off, n int) {
	if v == nil {
		clear(b[off : off+n])
		return
	}
	writeOctal(*v, b, off, n)
}
