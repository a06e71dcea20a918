package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/craftos/computer"
	"github.com/mwantia/craftos/event"
	"github.com/mwantia/craftos/log"
	"github.com/mwantia/craftos/term"
)

// BlinkInterval is the cursor blink period.
const BlinkInterval = 400 * time.Millisecond

type screenChangedMsg struct{}

type blinkMsg struct{}

// StoppedMsg tells the model that the computer loop has returned.
type StoppedMsg struct {
	Err error
}

// Model renders one computer display and forwards keyboard input to it.
type Model struct {
	ctx      context.Context
	computer *computer.Computer
	registry *computer.Registry
	buffer   *term.Buffer
	theme    *Theme
	keys     KeyMap
	help     help.Model
	log      *log.Logger

	screen  term.Screen
	width   int
	height  int
	blinkOn bool
	stopped bool
	err     error
}

// NewModel creates a model for c, whose display must be buffer. Input is
// routed through registry by the identity of buffer.
func NewModel(ctx context.Context, c *computer.Computer, registry *computer.Registry, buffer *term.Buffer, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.Nop()
	}

	return &Model{
		ctx:      ctx,
		computer: c,
		registry: registry,
		buffer:   buffer,
		theme:    DefaultTheme(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		log:      logger,
		screen:   buffer.Snapshot(),
		blinkOn:  true,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForChange(),
		blink(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case screenChangedMsg:
		m.screen = m.buffer.Snapshot()
		return m, m.waitForChange()

	case blinkMsg:
		m.blinkOn = !m.blinkOn
		return m, blink()

	case StoppedMsg:
		m.stopped = true
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// waitForChange delivers a screenChangedMsg once the buffer was modified.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.buffer.Changed():
			return screenChangedMsg{}
		case <-m.ctx.Done():
			return nil
		}
	}
}

func blink() tea.Cmd {
	return tea.Tick(BlinkInterval, func(time.Time) tea.Msg {
		return blinkMsg{}
	})
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Terminate):
		m.post(event.New(event.Terminate))
		return m, nil

	case key.Matches(msg, m.keys.Reboot):
		m.log.Info("Reboot requested from the terminal")
		m.computer.Reboot()
		return m, nil

	case key.Matches(msg, m.keys.Shutdown):
		m.log.Info("Shutdown requested from the terminal")
		m.computer.Shutdown()
		return m, nil
	}

	if m.stopped {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		if msg.Paste {
			m.post(event.New("paste", string(msg.Runes)))
			return m, nil
		}
		for _, r := range msg.Runes {
			m.typeRune(r)
		}

	default:
		if code, ok := specialKeys[msg.Type]; ok {
			m.post(event.New("key", code, false))
			m.post(event.New("key_up", code))
		}
	}

	return m, nil
}

// typeRune emits the key press, the character and the key release of r.
// Terminals report no releases, so key_up follows immediately.
func (m *Model) typeRune(r rune) {
	code, ok := term.RuneKey(r)
	if ok {
		m.post(event.New("key", code, false))
	}
	if term.IsPrintable(r) {
		m.post(event.New("char", string(r)))
	}
	if ok {
		m.post(event.New("key_up", code))
	}
}

func (m *Model) post(e event.Event) {
	if !m.registry.PostToDisplay(m.buffer.ID(), e) {
		m.log.Debug("Dropped input event %s", e)
	}
}
