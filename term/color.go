package term

import (
	"errors"
	"math/bits"
)

var (
	ErrColorRange   = errors.New("color out of range")
	ErrBlitLength   = errors.New("Arguments must be the same length")
	ErrInvalidColor = errors.New("invalid color")
)

// ColorIndex converts a color bit mask (colors.white = 1 ... colors.black = 32768)
// to a palette index. The lowest set bit wins.
func ColorIndex(mask int) (uint8, error) {
	if mask <= 0 {
		return 0, ErrColorRange
	}

	index := bits.TrailingZeros(uint(mask))
	if index > 15 {
		return 0, ErrColorRange
	}
	return uint8(index), nil
}

// ColorMask is the inverse of ColorIndex.
func ColorMask(index uint8) int {
	return 1 << (index & 0x0F)
}

// Pack combines a text and a background palette index into a cell color.
func Pack(fg, bg uint8) uint8 {
	return fg&0x0F | (bg&0x0F)<<4
}

// Unpack splits a cell color into text and background palette indices.
func Unpack(colors uint8) (fg, bg uint8) {
	return colors & 0x0F, colors >> 4
}

// HexIndex parses a single blit color digit.
func HexIndex(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// ParseBlit turns the text and background digit strings of a blit call into
// packed cell colors.
func ParseBlit(text, fg, bg string) ([]byte, error) {
	if len(fg) != len(text) || len(bg) != len(text) {
		return nil, ErrBlitLength
	}

	colors := make([]byte, len(text))
	for i := range len(text) {
		f, ok := HexIndex(fg[i])
		if !ok {
			return nil, ErrInvalidColor
		}
		b, ok := HexIndex(bg[i])
		if !ok {
			return nil, ErrInvalidColor
		}
		colors[i] = Pack(f, b)
	}
	return colors, nil
}
