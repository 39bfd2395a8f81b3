//go:build linux || darwin || freebsd || netbsd || openbsd

package tarindex

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

func deviceNumbers(fi os.FileInfo) (major, minor int64, ok bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	rdev := uint64(st.Rdev)
	return int64(unix.Major(rdev)), int64(unix.Minor(rdev)), true
}
