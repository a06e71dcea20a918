package computer

import (
	"bytes"
	"fmt"

	"github.com/mwantia/craftos/term"
)

// Term is the terminal API of a guest. Colors are passed as bit masks
// (white = 1 ... black = 32768).
type Term struct {
	display term.Display
}

func NewTerm(display term.Display) *Term {
	return &Term{
		display: display,
	}
}

func badColor(err error) error {
	return fmt.Errorf("bad argument #1 (%w)", err)
}

// Write draws text at the cursor in the current colors and advances the cursor.
func (t *Term) Write(text string) {
	cursor := t.display.Cursor()
	colors := bytes.Repeat([]byte{t.display.Colors()}, len(text))

	t.display.Write([]byte(text), colors, cursor)
	t.display.SetCursor(term.Point{X: cursor.X + len(text), Y: cursor.Y})
}

// Blit draws text with one text and background color digit per character.
func (t *Term) Blit(text, fg, bg string) error {
	colors, err := term.ParseBlit(text, fg, bg)
	if err != nil {
		return err
	}

	cursor := t.display.Cursor()
	t.display.Write([]byte(text), colors, cursor)
	t.display.SetCursor(term.Point{X: cursor.X + len(text), Y: cursor.Y})
	return nil
}

func (t *Term) Scroll(lines int) {
	t.display.Scroll(lines, t.display.Colors())
}

func (t *Term) GetCursorPos() (int, int) {
	cursor := t.display.Cursor()
	return cursor.X, cursor.Y
}

func (t *Term) SetCursorPos(x, y int) {
	t.display.SetCursor(term.Point{X: x, Y: y})
}

func (t *Term) GetCursorBlink() bool {
	return t.display.CursorBlink()
}

func (t *Term) SetCursorBlink(blink bool) {
	t.display.SetCursorBlink(blink)
}

func (t *Term) GetSize() (int, int) {
	size := t.display.Size()
	return size.Width, size.Height
}

func (t *Term) Clear() {
	t.display.Clear(t.display.Colors())
}

// ClearLine clears the line of the cursor.
func (t *Term) ClearLine() {
	t.display.ClearLine(t.display.Cursor().Y, t.display.Colors())
}

func (t *Term) GetTextColor() int {
	fg, _ := term.Unpack(t.display.Colors())
	return term.ColorMask(fg)
}

func (t *Term) SetTextColor(mask int) error {
	index, err := term.ColorIndex(mask)
	if err != nil {
		return badColor(err)
	}
	t.display.SetTextColor(index)
	return nil
}

func (t *Term) GetBackgroundColor() int {
	_, bg := term.Unpack(t.display.Colors())
	return term.ColorMask(bg)
}

func (t *Term) SetBackgroundColor(mask int) error {
	index, err := term.ColorIndex(mask)
	if err != nil {
		return badColor(err)
	}
	t.display.SetBackgroundColor(index)
	return nil
}

func (t *Term) IsColor() bool {
	return t.display.IsColor()
}

// GetPaletteColor returns the red, green and blue components in [0, 1].
func (t *Term) GetPaletteColor(mask int) (float64, float64, float64, error) {
	index, err := term.ColorIndex(mask)
	if err != nil {
		return 0, 0, 0, badColor(err)
	}

	r, g, b := components(t.display.Palette(index))
	return r, g, b, nil
}

// SetPaletteColor accepts either a single packed 0xRRGGBB value or red,
// green and blue components in [0, 1].
func (t *Term) SetPaletteColor(mask int, values ...float64) error {
	index, err := term.ColorIndex(mask)
	if err != nil {
		return badColor(err)
	}

	switch len(values) {
	case 1:
		t.display.SetPalette(index, term.RGB(uint32(values[0])))
	case 3:
		r, g, b := channel(values[0]), channel(values[1]), channel(values[2])
		t.display.SetPalette(index, term.RGB(uint32(r)<<16|uint32(g)<<8|uint32(b)))
	default:
		return fmt.Errorf("bad argument #%d (number expected, got nil)", len(values)+2)
	}
	return nil
}

// NativePaletteColor returns the default palette entry for mask.
func (t *Term) NativePaletteColor(mask int) (float64, float64, float64, error) {
	index, err := term.ColorIndex(mask)
	if err != nil {
		return 0, 0, 0, badColor(err)
	}

	r, g, b := components(term.DefaultPalette[index])
	return r, g, b, nil
}

func components(c term.RGB) (float64, float64, float64) {
	r, g, b := c.Components()
	return float64(r) / 255, float64(g) / 255, float64(b) / 255
}

func channel(v float64) uint8 {
	return uint8(min(max(v, 0), 1) * 255)
}
