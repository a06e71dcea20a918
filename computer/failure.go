package computer

import (
	"bytes"

	"github.com/mwantia/craftos/term"
)

// RenderFailure replaces the display content with the boot failure screen.
func RenderFailure(display term.Display, be *BootError) {
	if display == nil {
		return
	}

	display.Clear(term.ErrorColors)
	display.SetCursorBlink(false)

	lines := []string{
		"Error running computer",
		be.Error(),
		"CraftOS may be installed incorrectly",
	}
	for i, line := range lines {
		text := []byte(line)
		display.Write(text, bytes.Repeat([]byte{term.ErrorColors}, len(text)), term.Point{X: 1, Y: i + 1})
	}
}
