package options

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/xattrkit/xattrkit/internal/errors"
)

// ByteSize is a size in bytes. As an option value it accepts an optional
// binary unit suffix: "64K", "64KiB" and "65536" are the same size.
type ByteSize uint64

func (s ByteSize) String() string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}

	v, unit := uint64(s), 0
	for v >= 1024 && v%1024 == 0 && unit < len(units)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%d%s", v, units[unit])
}

// ParseByteSize parses a size such as "512", "4k", "64MiB" or "1G".
func ParseByteSize(s string) (ByteSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("expected size, got empty string")
	}

	num := strings.TrimSuffix(strings.TrimSuffix(s, "iB"), "B")
	if num == "" {
		return 0, errors.Errorf("invalid size %q", s)
	}

	var unit uint64 = 1
	switch num[len(num)-1] {
	case 'k', 'K':
		unit = 1 << 10
	case 'm', 'M':
		unit = 1 << 20
	case 'g', 'G':
		unit = 1 << 30
	case 't', 'T':
		unit = 1 << 40
	}
	if unit != 1 {
		num = num[:len(num)-1]
	} else if len(num) != len(s) && strings.HasSuffix(s, "iB") {
		return 0, errors.Errorf("invalid size %q", s)
	}

	value, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, err
	}

	hi, lo := bits.Mul64(value, unit)
	if hi != 0 {
		return 0, fmt.Errorf("size %q: %w", s, strconv.ErrRange)
	}

	return ByteSize(lo), nil
}
