package textfile

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	rtest "github.com/xattrkit/xattrkit/internal/test"
)

func writeTempfile(t testing.TB, data []byte) string {
	t.Helper()

	fn := filepath.Join(rtest.TempDir(t), "list")
	rtest.OK(t, os.WriteFile(fn, data, 0o600))
	return fn
}

func dec(s string) []byte {
	data, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return data
}

func TestRead(t *testing.T) {
	var tests = []struct {
		data []byte
		want []byte
	}{
		{data: []byte("foo bar baz")},
		{data: []byte("Ööbär")},
		{
			data: []byte("\xef\xbb\xbffööbär"),
			want: []byte("fööbär"),
		},
		{
			data: dec("feff006600f600f6006200e40072"),
			want: []byte("fööbär"),
		},
		{
			data: dec("fffe6600f600f6006200e4007200"),
			want: []byte("fööbär"),
		},
	}

	for _, test := range tests {
		t.Run("", func(t *testing.T) {
			want := test.want
			if want == nil {
				want = test.data
			}

			data, err := Read(writeTempfile(t, test.data))
			rtest.OK(t, err)
			rtest.Equals(t, want, data)
		})
	}
}

func TestReadLines(t *testing.T) {
	fn := writeTempfile(t, []byte("\xef\xbb\xbf# comment\nuser.*\n\n  security.selinux  \r\n#another\ntrusted.**"))

	lines, err := ReadLines(fn)
	rtest.OK(t, err)
	rtest.Equals(t, []string{"user.*", "security.selinux", "trusted.**"}, lines)
}

func TestReadLinesUTF16(t *testing.T) {
	// "a\nb" in UTF-16LE with BOM
	fn := writeTempfile(t, dec("fffe61000a006200"))

	lines, err := ReadLines(fn)
	rtest.OK(t, err)
	rtest.Equals(t, []string{"a", "b"}, lines)
}

func TestReadNulSeparated(t *testing.T) {
	fn := writeTempfile(t, []byte("/tmp/a b\x00/tmp/#c\x00\x00/tmp/ d \x00"))

	entries, err := ReadNulSeparated(fn)
	rtest.OK(t, err)
	rtest.Equals(t, []string{"/tmp/a b", "/tmp/#c", "/tmp/ d "}, entries)
}

func TestReadMissing(t *testing.T) {
	_, err := ReadLines(filepath.Join(rtest.TempDir(t), "missing"))
	rtest.Assert(t, os.IsNotExist(err), "expected not exist error, got %v", err)
}
