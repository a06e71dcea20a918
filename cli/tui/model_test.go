package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/craftos/computer"
	"github.com/mwantia/craftos/event"
	"github.com/mwantia/craftos/guest"
	"github.com/mwantia/craftos/mount"
	"github.com/mwantia/craftos/mount/backend/ephemeral"
	"github.com/mwantia/craftos/term"
	"github.com/mwantia/craftos/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderScreen(t *testing.T) {
	buffer := term.NewBuffer(5, 2)
	buffer.Write([]byte("hi"), []byte{0xF0, 0xFE}, term.Point{X: 1, Y: 1})
	buffer.SetCursor(term.Point{X: 3, Y: 1})

	assert.Equal(t, "hi_  \n     ", RenderScreen(buffer.Snapshot(), true))
	assert.Equal(t, "hi   \n     ", RenderScreen(buffer.Snapshot(), false))

	buffer.SetCursorBlink(false)
	assert.Equal(t, "hi   \n     ", RenderScreen(buffer.Snapshot(), true))
}

type harness struct {
	model  *Model
	events chan event.Event
	done   chan error
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	root, err := mount.NewObjectMount(t.Context(), ephemeral.NewEphemeralBackend())
	require.NoError(t, err)
	fs, err := vfs.NewManager(root)
	require.NoError(t, err)

	ready := make(chan struct{})
	events := make(chan event.Event, 32)
	boot := func(env *computer.Environment) (guest.Program, error) {
		return func(ctx context.Context, co *guest.Coroutine) error {
			close(ready)
			for {
				events <- co.PullEventRaw("")
			}
		}, nil
	}

	buffer := term.NewBuffer(0, 0)
	c, err := computer.NewComputer(9, fs, buffer, boot, computer.WithLabel("desk"))
	require.NoError(t, err)

	registry := computer.NewRegistry()
	require.NoError(t, registry.Register(c))

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		done <- c.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-finished
	})

	select {
	case <-ready:
	case <-time.After(2 * time.Second):
		t.Fatal("computer did not boot")
	}

	return &harness{
		model:  NewModel(ctx, c, registry, buffer, nil),
		events: events,
		done:   done,
	}
}

func (h *harness) next(t *testing.T) event.Event {
	t.Helper()

	select {
	case ev := <-h.events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return nil
	}
}

func TestModel_Input(t *testing.T) {
	h := newHarness(t)

	h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("A")})
	assert.Equal(t, event.New("key", term.KeyA, false), h.next(t))
	assert.Equal(t, event.New("char", "A"), h.next(t))
	assert.Equal(t, event.New("key_up", term.KeyA), h.next(t))

	h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, event.New("key", term.KeyEnter, false), h.next(t))
	assert.Equal(t, event.New("key_up", term.KeyEnter), h.next(t))

	h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ls"), Paste: true})
	assert.Equal(t, event.New("paste", "ls"), h.next(t))

	h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, event.Terminate, h.next(t).Name())
}

func TestModel_Shutdown(t *testing.T) {
	h := newHarness(t)

	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)

	select {
	case err := <-h.done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("computer did not stop")
	}

	h.model.Update(StoppedMsg{})
	assert.Contains(t, h.model.View(), "Computer is off")
	assert.Contains(t, h.model.View(), "Computer #9 - desk")

	_, cmd = h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
