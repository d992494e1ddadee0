package xattr

import (
	"fmt"
	"strings"
)

// Flags is the option bitmask passed to the syscalls. Bits are forwarded to
// the platform layer as-is; combinations are validated by the kernel, not
// here.
type Flags uint32

const (
	// NoFollow operates on a symlink itself instead of its target.
	NoFollow Flags = 0x0001
	// Create fails a Set if the attribute already exists.
	Create Flags = 0x0002
	// Replace fails a Set if the attribute does not exist yet.
	Replace Flags = 0x0004
	// ShowCompression exposes the HFS+ compression attributes on darwin.
	ShowCompression Flags = 0x0020

	knownFlags = NoFollow | Create | Replace | ShowCompression
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{NoFollow, "nofollow"},
	{Create, "create"},
	{Replace, "replace"},
	{ShowCompression, "showcompression"},
}

func (f Flags) String() string {
	if f == 0 {
		return "0"
	}

	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	if rest := f &^ knownFlags; rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}

	return strings.Join(parts, "|")
}
