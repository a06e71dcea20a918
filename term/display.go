package term

// Default terminal size in characters.
const (
	DefaultWidth  = 51
	DefaultHeight = 19
)

// DefaultColors is white text on a black background. The low nibble is the
// text color index, the high nibble the background color index.
const DefaultColors uint8 = 0xF0

// ErrorColors is yellow text on a black background, used for boot failures.
const ErrorColors uint8 = 0xFE

// Point is a 1-based cell position.
type Point struct {
	X int
	Y int
}

// Size of a display in cells.
type Size struct {
	Width  int
	Height int
}

// RGB is a packed 0xRRGGBB color.
type RGB uint32

func (c RGB) Components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// DefaultPalette holds the native colors for indices 0 (white) to 15 (black).
var DefaultPalette = [16]RGB{
	0xF0F0F0, 0xF2B233, 0xE57FD8, 0x99B2F2,
	0xDEDE6C, 0x7FCC19, 0xF2B2CC, 0x4C4C4C,
	0x999999, 0x4C99B2, 0xB266E5, 0x3366CC,
	0x7F664C, 0x57A64E, 0xCC4C4C, 0x111111,
}

// Display is the drawing surface of a computer. Positions are 1-based;
// cells outside the surface are ignored.
type Display interface {
	// ID identifies the surface; input produced by it is routed by this value.
	ID() string

	Size() Size

	Cursor() Point
	SetCursor(p Point)

	CursorBlink() bool
	SetCursorBlink(blink bool)

	// Colors returns the packed current text and background colors.
	Colors() uint8
	SetTextColor(index uint8)
	SetBackgroundColor(index uint8)

	IsColor() bool

	Palette(index uint8) RGB
	SetPalette(index uint8, color RGB)

	// Write draws text with one packed color per byte at a position.
	// It does not move the cursor.
	Write(text []byte, colors []byte, at Point)

	Clear(colors uint8)
	ClearLine(line int, colors uint8)

	// Scroll moves the content up by lines (down if negative) and fills
	// the uncovered rows with blanks.
	Scroll(lines int, colors uint8)
}
