package dump

import (
	"encoding/binary"
	"strconv"

	"github.com/xattrkit/xattrkit/internal/errors"
)

const (
	aclPermRead    = 0x4
	aclPermWrite   = 0x2
	aclPermExecute = 0x1

	aclTagUserObj  = 0x01
	aclTagUser     = 0x02
	aclTagGroupObj = 0x04
	aclTagGroup    = 0x08
	aclTagMask     = 0x10
	aclTagOther    = 0x20

	aclVersion   = 2
	aclEntrySize = 8
)

// formatLinuxACL converts the value of system.posix_acl_access or
// system.posix_acl_default into the POSIX.1e long text form, one entry per
// line. Qualifiers are numeric IDs, since the archive may be restored on
// another machine.
//
// See acl(5) for both formats.
func formatLinuxACL(acl []byte) (string, error) {
	if len(acl) < 4 || (len(acl)-4)%aclEntrySize != 0 {
		return "", errors.Errorf("invalid ACL length %d", len(acl))
	}
	if v := binary.LittleEndian.Uint32(acl); v != aclVersion {
		return "", errors.Errorf("unsupported ACL version %d", v)
	}

	var text []byte
	for entries := acl[4:]; len(entries) >= aclEntrySize; entries = entries[aclEntrySize:] {
		tag := binary.LittleEndian.Uint16(entries)
		perm := binary.LittleEndian.Uint16(entries[2:])
		id := binary.LittleEndian.Uint32(entries[4:])

		switch tag {
		case aclTagUserObj:
			text = append(text, "user::"...)
		case aclTagUser:
			text = append(text, "user:"...)
			text = strconv.AppendUint(text, uint64(id), 10)
			text = append(text, ':')
		case aclTagGroupObj:
			text = append(text, "group::"...)
		case aclTagGroup:
			text = append(text, "group:"...)
			text = strconv.AppendUint(text, uint64(id), 10)
			text = append(text, ':')
		case aclTagMask:
			text = append(text, "mask::"...)
		case aclTagOther:
			text = append(text, "other::"...)
		default:
			return "", errors.Errorf("unknown ACL tag %#x", tag)
		}

		text = append(text, aclPerm(perm, aclPermRead, 'r'), aclPerm(perm, aclPermWrite, 'w'), aclPerm(perm, aclPermExecute, 'x'), '\n')
	}

	return string(text), nil
}

func aclPerm(perm, bit uint16, c byte) byte {
	if perm&bit != 0 {
		return c
	}
	return '-'
}
