package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwantia/craftos/term"
)

func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.theme.BorderStyle.Render(RenderScreen(m.screen, m.blinkOn)),
		m.renderStatus(),
		m.theme.HelpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderTitle() string {
	title := fmt.Sprintf("Computer #%d", m.computer.ID())
	if label := m.computer.Label(); label != "" {
		title += " - " + label
	}
	return m.theme.TitleStyle.Render(title)
}

func (m *Model) renderStatus() string {
	if m.err != nil {
		return m.theme.ErrorStyle.Render(m.err.Error())
	}
	if failure := m.computer.Failure(); failure != nil {
		return m.theme.ErrorStyle.Render(failure.Error())
	}
	if m.stopped {
		return m.theme.StatusStyle.Render("Computer is off, press ctrl+c to quit")
	}

	return m.theme.StatusStyle.Render(m.computer.State().String())
}

// RenderScreen renders the cells of screen with their palette colors.
// A blinking cursor is drawn as underscore while cursorOn is set.
func RenderScreen(screen term.Screen, cursorOn bool) string {
	rows := make([]string, len(screen.Text))
	for y := range screen.Text {
		text := screen.Text[y]
		cells := screen.Cells[y]

		cursorX := -1
		if screen.Blink && cursorOn && screen.Cursor.Y == y+1 {
			cursorX = screen.Cursor.X - 1
		}

		var sb strings.Builder
		for x := 0; x < len(text); {
			end := x + 1
			for end < len(text) && cells[end] == cells[x] && end != cursorX && x != cursorX {
				end++
			}

			segment := string(text[x:end])
			if x == cursorX {
				segment = "_"
			}
			sb.WriteString(style(screen, cells[x]).Render(segment))
			x = end
		}
		rows[y] = sb.String()
	}
	return strings.Join(rows, "\n")
}

func style(screen term.Screen, colors uint8) lipgloss.Style {
	fg, bg := term.Unpack(colors)
	return lipgloss.NewStyle().
		Foreground(hex(screen.Palette[fg])).
		Background(hex(screen.Palette[bg]))
}

func hex(c term.RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06x", uint32(c)))
}
