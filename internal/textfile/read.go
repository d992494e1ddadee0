// Package textfile reads lists of patterns or paths from text files. It
// detects UTF-16 by its byte order mark, converts it to UTF-8 and strips
// any BOM.
package textfile

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/xattrkit/xattrkit/internal/errors"
)

var (
	bomUTF8              = []byte{0xef, 0xbb, 0xbf}
	bomUTF16BigEndian    = []byte{0xfe, 0xff}
	bomUTF16LittleEndian = []byte{0xff, 0xfe}
)

// Decode removes a byte order mark and converts the bytes to UTF-8.
func Decode(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, bomUTF8) {
		return data[len(bomUTF8):], nil
	}

	if !bytes.HasPrefix(data, bomUTF16BigEndian) && !bytes.HasPrefix(data, bomUTF16LittleEndian) {
		return data, nil
	}

	e := unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	return e.NewDecoder().Bytes(data)
}

// Read returns the decoded contents of filename. The name "-" reads
// standard input.
func Read(filename string) ([]byte, error) {
	var data []byte
	var err error
	if filename == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(filename)
	}
	if err != nil {
		return nil, err
	}

	return Decode(data)
}

// ReadLines returns the lines of filename with surrounding white space
// removed. Empty lines and lines starting with # are skipped.
func ReadLines(filename string) ([]string, error) {
	data, err := Read(filename)
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "read %v", filename)
	}

	return lines, nil
}

// ReadNulSeparated returns the NUL-terminated entries of filename verbatim,
// as written by `find -print0`. Empty entries are skipped.
func ReadNulSeparated(filename string) ([]string, error) {
	data, err := Read(filename)
	if err != nil {
		return nil, err
	}

	var entries []string
	for _, entry := range bytes.Split(data, []byte{0}) {
		if len(entry) > 0 {
			entries = append(entries, string(entry))
		}
	}
	return entries, nil
}
