package xattr

import (
	"testing"

	rtest "github.com/xattrkit/xattrkit/internal/test"
)

func TestFlagsString(t *testing.T) {
	var tests = []struct {
		flags Flags
		want  string
	}{
		{0, "0"},
		{NoFollow, "nofollow"},
		{Create | Replace, "create|replace"},
		{NoFollow | ShowCompression, "nofollow|showcompression"},
		{NoFollow | Create | 0x40, "nofollow|create|0x40"},
		{0x100, "0x100"},
	}

	for _, test := range tests {
		rtest.Equals(t, test.want, test.flags.String())
	}
}
