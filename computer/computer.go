package computer

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/mwantia/craftos/event"
	"github.com/mwantia/craftos/guest"
	"github.com/mwantia/craftos/log"
	"github.com/mwantia/craftos/term"
	"github.com/mwantia/craftos/timer"
	"github.com/mwantia/craftos/vfs"
)

// BootFunc builds the boot program for a freshly prepared environment.
// It is called on every boot.
type BootFunc func(env *Environment) (guest.Program, error)

// Computer runs one guest program against its filesystem, display, event
// queue and timers. Only Run resumes the guest; every other method may be
// called from any goroutine.
type Computer struct {
	mu      sync.Mutex
	id      int
	label   string
	state   State
	env     *Environment
	failure *BootError

	boot    BootFunc
	fs      *vfs.Manager
	display term.Display
	queue   *event.Queue
	timers  *timer.Scheduler
	handles *HandleTable
	clock   timer.Clock
	log     *log.Logger
}

func NewComputer(id int, fs *vfs.Manager, display term.Display, boot BootFunc, opts ...ComputerOption) (*Computer, error) {
	options := newDefaultComputerOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	if boot == nil {
		return nil, ErrNoBoot
	}

	queue := event.NewQueue()
	timers, err := timer.NewScheduler(queue,
		timer.WithClock(options.Clock),
		timer.WithLogger(options.Logger))
	if err != nil {
		return nil, err
	}

	return &Computer{
		id:      id,
		label:   options.Label,
		boot:    boot,
		fs:      fs,
		display: display,
		queue:   queue,
		timers:  timers,
		handles: NewHandleTable(),
		clock:   options.Clock,
		log:     options.Logger.Named("computer"),
	}, nil
}

func (c *Computer) ID() int {
	return c.id
}

func (c *Computer) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.label
}

func (c *Computer) SetLabel(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.label = label
}

func (c *Computer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

func (c *Computer) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = state
}

func (c *Computer) FS() *vfs.Manager {
	return c.fs
}

func (c *Computer) Display() term.Display {
	return c.display
}

func (c *Computer) Timers() *timer.Scheduler {
	return c.timers
}

func (c *Computer) Handles() *HandleTable {
	return c.handles
}

// Environment returns the environment of the current boot, or nil before the first boot.
func (c *Computer) Environment() *Environment {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.env
}

// Failure returns the error that halted the computer, if any.
func (c *Computer) Failure() *BootError {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.failure
}

// Push queues an event for the guest. It reports whether the event was retained.
func (c *Computer) Push(e event.Event) bool {
	ok := c.queue.Push(e)
	if !ok {
		c.log.Warn("Event queue full, dropped %s", e)
	}
	return ok
}

// Shutdown asks a running computer to stop.
func (c *Computer) Shutdown() {
	c.transition(Shutdown)
}

// Reboot asks a running computer to restart its boot program.
func (c *Computer) Reboot() {
	c.transition(Reboot)
}

func (c *Computer) transition(state State) {
	c.mu.Lock()
	if c.state != Running {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.mu.Unlock()

	c.log.Debug("Computer %d requested %s", c.id, state)
	c.queue.Wake()
}

// Run boots the computer and drives the guest until the computer is shut
// down, the boot program finishes or ctx is done. A failing boot program
// is rendered to the display and keeps the computer halted until it is
// shut down or rebooted.
func (c *Computer) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Off {
		c.mu.Unlock()
		return ErrRunning
	}
	c.state = Running
	c.mu.Unlock()

	defer c.teardown()

	for {
		c.log.Info("Booting computer %d", c.id)

		err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var be *BootError
		if errors.As(err, &be) {
			c.fail(be)
			if err := c.halt(ctx); err != nil {
				return err
			}
		}

		if c.State() != Reboot {
			c.log.Info("Computer %d shut down", c.id)
			return nil
		}

		c.log.Info("Rebooting computer %d", c.id)
		c.mu.Lock()
		c.state = Running
		c.failure = nil
		c.mu.Unlock()
	}
}

func (c *Computer) teardown() {
	c.timers.CancelAll()
	c.queue.Clear()
	if err := c.handles.CloseAll(); err != nil {
		c.log.Warn("Failed to close handles: %v", err)
	}
	c.setState(Off)
}

// prepare resets the per-boot state and returns a fresh environment.
func (c *Computer) prepare() *Environment {
	c.timers.Reset()
	c.queue.Clear()
	if err := c.handles.CloseAll(); err != nil {
		c.log.Warn("Failed to close handles: %v", err)
	}

	env := &Environment{
		Host:     HostString,
		Rand:     rand.New(rand.NewSource(c.clock.Now().UnixNano())),
		Settings: make(map[string]string),
		computer: c,
	}
	env.FS = &FS{computer: c}
	env.OS = &OS{computer: c}
	env.Term = NewTerm(c.display)
	env.Peripheral = &Peripheral{}
	env.Redstone = NewRedstone()

	c.mu.Lock()
	c.env = env
	c.mu.Unlock()

	return env
}

// session runs the boot program once.
func (c *Computer) session(ctx context.Context) error {
	env := c.prepare()

	program, err := c.boot(env)
	if err != nil {
		return &BootError{Category: CategoryBoot, Err: err}
	}

	thread := guest.Start(program)
	defer thread.Close()

	alive, filter, err := thread.Resume(ctx, nil)
	for alive && err == nil {
		ev, ok := c.next(ctx, filter)
		if !ok {
			return nil
		}
		alive, filter, err = thread.Resume(ctx, ev)
	}

	if err != nil {
		if ctx.Err() != nil {
			return nil
		}

		var pe *guest.PanicError
		if errors.As(err, &pe) {
			c.log.Debug("Guest panic: %v\n%s", pe.Value, pe.Stack)
			return &BootError{Category: CategoryPanic, Err: err}
		}
		return &BootError{Category: CategoryGuest, Err: err}
	}

	// A boot program that returns turns the computer off.
	c.transition(Shutdown)
	return nil
}

// next blocks until an event matching filter is queued. Non-matching events
// are discarded. It returns false once the computer leaves Running or ctx is done.
func (c *Computer) next(ctx context.Context, filter event.Value) (event.Event, bool) {
	for {
		if c.State() != Running {
			return nil, false
		}

		if ev, ok := c.queue.TryPop(); ok {
			if ev.Matches(filter) {
				return ev, true
			}
			continue
		}

		select {
		case <-c.queue.Wait():
		case <-ctx.Done():
			return nil, false
		}
	}
}

// halt keeps a failed computer visible until it leaves Running.
func (c *Computer) halt(ctx context.Context) error {
	for c.State() == Running {
		select {
		case <-c.queue.Wait():
			c.queue.Clear()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *Computer) fail(be *BootError) {
	c.log.Error("Computer %d failed: %v", c.id, be)

	c.timers.CancelAll()
	RenderFailure(c.display, be)

	c.mu.Lock()
	c.failure = be
	c.mu.Unlock()
}
