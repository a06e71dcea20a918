package data

import "strings"

// OpenFlags represents the mode a file handle is opened with.
// The low two bits select read (00), write (01) or append (11).
type OpenFlags uint8

const (
	OpenWrite    OpenFlags = 1
	OpenAppend   OpenFlags = 3
	OpenReadPlus OpenFlags = 4
	OpenBinary   OpenFlags = 8
)

// IsRead checks if the base mode is "r".
func (f OpenFlags) IsRead() bool {
	return f&3 == 0
}

// IsWrite checks if the base mode is "w".
func (f OpenFlags) IsWrite() bool {
	return f&3 == 1
}

// IsAppend checks if the base mode is "a".
func (f OpenFlags) IsAppend() bool {
	return f&3 == 3
}

// IsReadWrite checks if "+" was requested.
func (f OpenFlags) IsReadWrite() bool {
	return f&OpenReadPlus != 0
}

// IsBinary checks if "b" was requested.
func (f OpenFlags) IsBinary() bool {
	return f&OpenBinary != 0
}

// IsReadable checks if a handle opened with f can be read from.
func (f OpenFlags) IsReadable() bool {
	return f.IsReadWrite() || f&OpenWrite == 0
}

// IsWritable checks if a handle opened with f can be written to.
func (f OpenFlags) IsWritable() bool {
	return f.IsReadWrite() || f&OpenWrite != 0
}

func (f OpenFlags) String() string {
	var sb strings.Builder
	switch {
	case f.IsAppend():
		sb.WriteByte('a')
	case f.IsWrite():
		sb.WriteByte('w')
	default:
		sb.WriteByte('r')
	}
	if f.IsReadWrite() {
		sb.WriteByte('+')
	}
	if f.IsBinary() {
		sb.WriteByte('b')
	}
	return sb.String()
}

// ParseMode parses an open mode such as "r", "wb" or "a+".
// Exactly one of r, w or a must be present; + and b may each appear once.
func ParseMode(mode string) (OpenFlags, error) {
	var flags OpenFlags
	var base, plus, binary int

	for _, c := range mode {
		switch c {
		case 'r':
			base++
		case 'w':
			base++
			flags |= OpenWrite
		case 'a':
			base++
			flags |= OpenAppend
		case '+':
			plus++
			flags |= OpenReadPlus
		case 'b':
			binary++
			flags |= OpenBinary
		default:
			return 0, ErrInvalidMode
		}
	}

	if base != 1 || plus > 1 || binary > 1 {
		return 0, ErrInvalidMode
	}

	return flags, nil
}
