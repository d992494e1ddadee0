//go:build !unix

package walker

import "io/fs"

type fileID struct{}

func hardlinkID(fs.FileInfo) (fileID, bool) {
	return fileID{}, false
}
