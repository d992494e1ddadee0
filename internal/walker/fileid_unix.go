//go:build unix

package walker

import (
	"io/fs"
	"syscall"
)

type fileID struct {
	dev, ino uint64
}

// hardlinkID returns the identity of the file behind fi if it has more than
// one link.
func hardlinkID(fi fs.FileInfo) (fileID, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok || st.Nlink < 2 {
		return fileID{}, false
	}
	return fileID{dev: uint64(st.Dev), ino: st.Ino}, true
}
