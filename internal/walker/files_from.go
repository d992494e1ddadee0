package walker

import (
	"github.com/xattrkit/xattrkit/internal/errors"
	"github.com/xattrkit/xattrkit/internal/textfile"
)

// ReadFilesFrom returns the paths listed in files. Each file holds one path
// per line, or NUL-terminated paths with nulSeparated set. The name "-"
// reads standard input.
func ReadFilesFrom(files []string, nulSeparated bool) ([]string, error) {
	read := textfile.ReadLines
	if nulSeparated {
		read = textfile.ReadNulSeparated
	}

	var paths []string
	for _, fn := range files {
		list, err := read(fn)
		if err != nil {
			return nil, errors.Fatalf("failed to read paths from %q: %v", fn, err)
		}
		paths = append(paths, list...)
	}
	return paths, nil
}
