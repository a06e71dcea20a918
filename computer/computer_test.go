package computer_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mwantia/craftos/computer"
	"github.com/mwantia/craftos/event"
	"github.com/mwantia/craftos/guest"
	"github.com/mwantia/craftos/mount"
	"github.com/mwantia/craftos/mount/backend/ephemeral"
	"github.com/mwantia/craftos/term"
	"github.com/mwantia/craftos/vfs"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second
const tick = 5 * time.Millisecond

func newComputer(t *testing.T, display term.Display, boot computer.BootFunc) *computer.Computer {
	t.Helper()

	root, err := mount.NewObjectMount(t.Context(), ephemeral.NewEphemeralBackend())
	require.NoError(t, err)

	fs, err := vfs.NewManager(root)
	require.NoError(t, err)

	if display == nil {
		display = term.NewBuffer(0, 0)
	}

	c, err := computer.NewComputer(1, fs, display, boot, computer.WithLabel("test"))
	require.NoError(t, err)
	return c
}

// start runs c in the background and returns the channel receiving the result of Run.
func start(t *testing.T, c *computer.Computer) <-chan error {
	t.Helper()

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
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(waitFor):
		t.Fatal("computer did not stop")
		return nil
	}
}

func receive(t *testing.T, events <-chan event.Event) event.Event {
	t.Helper()

	select {
	case ev := <-events:
		return ev
	case <-time.After(waitFor):
		t.Fatal("no event received")
		return nil
	}
}

func TestComputer_RequiresBoot(t *testing.T) {
	root, err := mount.NewObjectMount(t.Context(), ephemeral.NewEphemeralBackend())
	require.NoError(t, err)
	fs, err := vfs.NewManager(root)
	require.NoError(t, err)

	_, err = computer.NewComputer(0, fs, term.NewBuffer(0, 0), nil)
	assert.ErrorIs(t, err, computer.ErrNoBoot)
}

func TestComputer_EventFilter(t *testing.T) {
	ready := make(chan struct{})
	events := make(chan event.Event, 8)

	c := newComputer(t, nil, func(env *computer.Environment) (guest.Program, error) {
		return func(ctx context.Context, co *guest.Coroutine) error {
			close(ready)
			for {
				events <- co.Yield(event.String("key"))
			}
		}, nil
	})
	done := start(t, c)
	<-ready

	assert.Equal(t, computer.Running, c.State())

	c.Push(event.New("char", "a"))
	c.Push(event.New("key", term.KeyA, false))
	assert.Equal(t, event.New("key", term.KeyA, false), receive(t, events))

	c.Push(event.New("char", "b"))
	c.Push(event.New(event.Terminate))
	assert.Equal(t, event.New(event.Terminate), receive(t, events))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %s", ev)
	default:
	}

	c.Shutdown()
	require.NoError(t, wait(t, done))
	assert.Equal(t, computer.Off, c.State())
}

func TestComputer_ProgramReturns(t *testing.T) {
	c := newComputer(t, nil, func(env *computer.Environment) (guest.Program, error) {
		return func(ctx context.Context, co *guest.Coroutine) error {
			return nil
		}, nil
	})

	require.NoError(t, wait(t, start(t, c)))
	assert.Equal(t, computer.Off, c.State())
	assert.Nil(t, c.Failure())
}

func TestComputer_Reboot(t *testing.T) {
	var boots atomic.Int32
	envs := make(chan *computer.Environment, 4)

	c := newComputer(t, nil, func(env *computer.Environment) (guest.Program, error) {
		boots.Add(1)
		return func(ctx context.Context, co *guest.Coroutine) error {
			env.OS.StartTimer(60)
			envs <- env
			for {
				co.Yield(event.Nil())
			}
		}, nil
	})
	done := start(t, c)

	first := <-envs
	assert.Equal(t, 1, c.Timers().Pending())

	c.Reboot()
	second := <-envs
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), boots.Load())
	assert.Equal(t, computer.Running, c.State())
	assert.Equal(t, 1, c.Timers().Pending())

	c.Shutdown()
	require.NoError(t, wait(t, done))
	assert.Zero(t, c.Timers().Pending())

	// Requests are ignored once the computer is off.
	c.Reboot()
	assert.Equal(t, computer.Off, c.State())
}

func TestComputer_ShutdownFromGuest(t *testing.T) {
	c := newComputer(t, nil, func(env *computer.Environment) (guest.Program, error) {
		return func(ctx context.Context, co *guest.Coroutine) error {
			env.OS.Shutdown()
			for {
				co.Yield(event.Nil())
			}
		}, nil
	})

	require.NoError(t, wait(t, start(t, c)))
	assert.Equal(t, computer.Off, c.State())
}

func TestComputer_BootFailure(t *testing.T) {
	display := term.NewBuffer(40, 3)
	c := newComputer(t, display, func(env *computer.Environment) (guest.Program, error) {
		return func(ctx context.Context, co *guest.Coroutine) error {
			return errors.New("bios.lua:1: boom")
		}, nil
	})
	done := start(t, c)

	require.Eventually(t, func() bool {
		return c.Failure() != nil
	}, waitFor, tick)

	failure := c.Failure()
	assert.Equal(t, computer.CategoryGuest, failure.Category)

	// The computer stays halted and ignores input.
	c.Push(event.New("key", term.KeyEnter, false))
	assert.Equal(t, computer.Running, c.State())

	screen := display.Snapshot()
	assert.False(t, screen.Blink)
	goldie.New(t).Assert(t, "boot_failure", []byte(screen.Dump()))

	c.Shutdown()
	require.NoError(t, wait(t, done))
}

func TestComputer_Panic(t *testing.T) {
	var boots atomic.Int32
	display := term.NewBuffer(0, 0)
	c := newComputer(t, display, func(env *computer.Environment) (guest.Program, error) {
		boots.Add(1)
		return func(ctx context.Context, co *guest.Coroutine) error {
			var m map[string]int
			m["x"] = 1
			return nil
		}, nil
	})
	done := start(t, c)

	require.Eventually(t, func() bool {
		return c.Failure() != nil
	}, waitFor, tick)
	assert.Equal(t, computer.CategoryPanic, c.Failure().Category)

	var pe *guest.PanicError
	assert.ErrorAs(t, c.Failure(), &pe)
	assert.Equal(t, "Error running computer", display.Snapshot().Line(1))

	c.Reboot()
	require.Eventually(t, func() bool {
		return boots.Load() == 2 && c.Failure() != nil
	}, waitFor, tick)

	c.Shutdown()
	require.NoError(t, wait(t, done))
}

func TestComputer_BootError(t *testing.T) {
	c := newComputer(t, nil, func(env *computer.Environment) (guest.Program, error) {
		return nil, errors.New("bios.lua not found")
	})
	done := start(t, c)

	require.Eventually(t, func() bool {
		return c.Failure() != nil
	}, waitFor, tick)
	assert.Equal(t, computer.CategoryBoot, c.Failure().Category)
	assert.Equal(t, "boot: bios.lua not found", c.Failure().Error())

	c.Shutdown()
	require.NoError(t, wait(t, done))
}

func TestComputer_RunTwice(t *testing.T) {
	ready := make(chan struct{})
	c := newComputer(t, nil, func(env *computer.Environment) (guest.Program, error) {
		return func(ctx context.Context, co *guest.Coroutine) error {
			close(ready)
			for {
				co.Yield(event.Nil())
			}
		}, nil
	})
	done := start(t, c)
	<-ready

	assert.ErrorIs(t, c.Run(t.Context()), computer.ErrRunning)

	c.Shutdown()
	require.NoError(t, wait(t, done))
}

func TestComputer_ContextCancel(t *testing.T) {
	ready := make(chan struct{})
	c := newComputer(t, nil, func(env *computer.Environment) (guest.Program, error) {
		return func(ctx context.Context, co *guest.Coroutine) error {
			close(ready)
			for {
				co.Yield(event.Nil())
			}
		}, nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx)
	}()
	<-ready

	cancel()
	assert.ErrorIs(t, wait(t, done), context.Canceled)
	assert.Equal(t, computer.Off, c.State())
}
