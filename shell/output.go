package shell

import (
	"strings"

	"github.com/mwantia/craftos/computer"
)

// Output writes text to a terminal like a teletype. Lines wrap at the
// terminal width and the screen scrolls once the cursor passes the last row.
type Output struct {
	term *computer.Term
}

func NewOutput(term *computer.Term) *Output {
	return &Output{
		term: term,
	}
}

func (o *Output) Write(p []byte) (int, error) {
	text := string(p)
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			o.write(text)
			break
		}

		o.write(text[:i])
		o.Newline()
		text = text[i+1:]
	}
	return len(p), nil
}

// Print writes text in the color given as bit mask and restores the
// previous text color afterwards.
func (o *Output) Print(mask int, text string) {
	previous := o.term.GetTextColor()
	if err := o.term.SetTextColor(mask); err == nil {
		defer o.term.SetTextColor(previous)
	}
	o.Write([]byte(text))
}

// Newline moves the cursor to the start of the next line.
func (o *Output) Newline() {
	_, height := o.term.GetSize()
	_, y := o.term.GetCursorPos()

	if y >= height {
		o.term.Scroll(y - height + 1)
		o.term.SetCursorPos(1, height)
		return
	}
	o.term.SetCursorPos(1, y+1)
}

func (o *Output) write(text string) {
	width, _ := o.term.GetSize()
	for len(text) > 0 {
		x, y := o.term.GetCursorPos()
		if x < 1 {
			x = 1
			o.term.SetCursorPos(x, y)
		}
		if x > width {
			o.Newline()
			x = 1
		}

		n := min(width-x+1, len(text))
		o.term.Write(text[:n])
		text = text[n:]
	}
}

// Backspace erases the character left of the cursor, stepping back onto
// the previous line when the cursor is at the start of a wrapped line.
func (o *Output) Backspace() {
	width, _ := o.term.GetSize()
	x, y := o.term.GetCursorPos()

	switch {
	case x > 1:
		x--
	case y > 1:
		x, y = width, y-1
	default:
		return
	}

	o.term.SetCursorPos(x, y)
	o.term.Write(" ")
	o.term.SetCursorPos(x, y)
}
