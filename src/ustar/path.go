package ustar

import (
	"strings"

	"github.com/pkg/errors"
)

// normalizePath drops empty and "." segments and folds each ".." into the
// segment before it. A ".." with nothing to fold into is kept.
func normalizePath(p string) string {
	segs := strings.Split(p, "/")
	out := segs[:0]
	for _, s := range segs {
		switch s {
		case "", ".":
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else {
				out = append(out, s)
			}
		default:
			out = append(out, s)
		}
	}
	return strings.Join(out, "/")
}

// splitFilename splits p into the name and prefix header fields. Paths of up
// to 100 bytes go into name alone; longer ones keep their last 100 bytes in
// name and the rest in prefix, wherever that cut falls.
func splitFilename(p string) (name, prefix string, err error) {
	if len(p) > MaxPathLen {
		return "", "", errors.Wrapf(ErrPathTooLong, "%d > %d", len(p), MaxPathLen)
	}
	if len(p) <= nameLen {
		return p, "", nil
	}
	cut := len(p) - nameLen
	return p[cut:], p[:cut], nil
}
