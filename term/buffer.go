package term

import (
	"bytes"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Buffer is an in-memory Display. Front-ends render its Snapshot whenever
// Changed fires.
type Buffer struct {
	mu      sync.RWMutex
	id      string
	size    Size
	cursor  Point
	blink   bool
	colors  uint8
	color   bool
	palette [16]RGB
	text    [][]byte
	cells   [][]byte
	changed chan struct{}
}

// Screen is a copy of the state of a Buffer.
type Screen struct {
	Size    Size
	Cursor  Point
	Blink   bool
	Colors  uint8
	Palette [16]RGB
	Text    [][]byte
	Cells   [][]byte
}

func NewBuffer(width, height int) *Buffer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	b := &Buffer{
		id:      uuid.NewString(),
		size:    Size{Width: width, Height: height},
		cursor:  Point{X: 1, Y: 1},
		blink:   true,
		colors:  DefaultColors,
		color:   true,
		palette: DefaultPalette,
		changed: make(chan struct{}, 1),
	}
	b.clear(DefaultColors)
	return b
}

// Changed is signalled after a modification. Signals coalesce.
func (b *Buffer) Changed() <-chan struct{} {
	return b.changed
}

func (b *Buffer) notify() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

func (b *Buffer) ID() string {
	return b.id
}

func (b *Buffer) Size() Size {
	return b.size
}

func (b *Buffer) Cursor() Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cursor
}

func (b *Buffer) SetCursor(p Point) {
	b.mu.Lock()
	b.cursor = p
	b.mu.Unlock()

	b.notify()
}

func (b *Buffer) CursorBlink() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.blink
}

func (b *Buffer) SetCursorBlink(blink bool) {
	b.mu.Lock()
	b.blink = blink
	b.mu.Unlock()

	b.notify()
}

func (b *Buffer) Colors() uint8 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.colors
}

func (b *Buffer) SetTextColor(index uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.colors = b.colors&0xF0 | index&0x0F
}

func (b *Buffer) SetBackgroundColor(index uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.colors = b.colors&0x0F | (index&0x0F)<<4
}

func (b *Buffer) IsColor() bool {
	return b.color
}

// SetGrayscale makes IsColor report false.
func (b *Buffer) SetGrayscale(grayscale bool) {
	b.color = !grayscale
}

func (b *Buffer) Palette(index uint8) RGB {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.palette[index&0x0F]
}

func (b *Buffer) SetPalette(index uint8, color RGB) {
	if index > 15 {
		return
	}

	b.mu.Lock()
	b.palette[index] = color & 0xFFFFFF
	b.mu.Unlock()

	b.notify()
}

func (b *Buffer) Write(text []byte, colors []byte, at Point) {
	b.mu.Lock()
	defer b.notify()
	defer b.mu.Unlock()

	if at.Y < 1 || at.Y > b.size.Height {
		return
	}

	x, start := at.X-1, 0
	if x < 0 {
		start, x = -x, 0
	}
	end := min(len(text), len(colors), start+b.size.Width-x)
	if start >= end {
		return
	}

	copy(b.text[at.Y-1][x:], text[start:end])
	copy(b.cells[at.Y-1][x:], colors[start:end])
}

func (b *Buffer) Clear(colors uint8) {
	b.mu.Lock()
	b.clear(colors)
	b.mu.Unlock()

	b.notify()
}

func (b *Buffer) clear(colors uint8) {
	b.text = make([][]byte, b.size.Height)
	b.cells = make([][]byte, b.size.Height)
	for y := range b.size.Height {
		b.text[y], b.cells[y] = b.blankRow(colors)
	}
}

func (b *Buffer) blankRow(colors uint8) ([]byte, []byte) {
	return bytes.Repeat([]byte{' '}, b.size.Width), bytes.Repeat([]byte{colors}, b.size.Width)
}

func (b *Buffer) ClearLine(line int, colors uint8) {
	if line < 1 || line > b.size.Height {
		return
	}

	b.mu.Lock()
	b.text[line-1], b.cells[line-1] = b.blankRow(colors)
	b.mu.Unlock()

	b.notify()
}

func (b *Buffer) Scroll(lines int, colors uint8) {
	if lines == 0 {
		return
	}

	b.mu.Lock()
	height := b.size.Height
	text := make([][]byte, height)
	cells := make([][]byte, height)
	for y := range height {
		source := y + lines
		if source >= 0 && source < height {
			text[y], cells[y] = b.text[source], b.cells[source]
		} else {
			text[y], cells[y] = b.blankRow(colors)
		}
	}
	b.text, b.cells = text, cells
	b.mu.Unlock()

	b.notify()
}

// Snapshot returns a deep copy of the current state.
func (b *Buffer) Snapshot() Screen {
	b.mu.RLock()
	defer b.mu.RUnlock()

	screen := Screen{
		Size:    b.size,
		Cursor:  b.cursor,
		Blink:   b.blink,
		Colors:  b.colors,
		Palette: b.palette,
		Text:    make([][]byte, len(b.text)),
		Cells:   make([][]byte, len(b.cells)),
	}
	for y := range b.text {
		screen.Text[y] = bytes.Clone(b.text[y])
		screen.Cells[y] = bytes.Clone(b.cells[y])
	}
	return screen
}

// Line returns the text of row y (1-based) without trailing blanks.
func (s Screen) Line(y int) string {
	if y < 1 || y > len(s.Text) {
		return ""
	}
	return strings.TrimRight(string(s.Text[y-1]), " ")
}

// Dump renders the text rows followed by the text and background color
// rows as hex digits, one character per cell.
func (s Screen) Dump() string {
	const hex = "0123456789abcdef"

	var sb strings.Builder
	for _, row := range s.Text {
		sb.WriteString("|" + string(row) + "|\n")
	}

	sb.WriteString("fg\n")
	for _, row := range s.Cells {
		for _, c := range row {
			sb.WriteByte(hex[c&0x0F])
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("bg\n")
	for _, row := range s.Cells {
		for _, c := range row {
			sb.WriteByte(hex[c>>4])
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
