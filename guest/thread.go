package guest

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/mwantia/craftos/event"
)

// ErrTerminated is returned by PullEvent when a "terminate" event arrives.
var ErrTerminated = errors.New("Terminated")

// ErrDead is returned when resuming a computation that already finished.
var ErrDead = errors.New("cannot resume dead coroutine")

// Program is a guest computation. It runs on its own goroutine, but only
// between a Resume and the following Yield, so it never runs concurrently
// with the code driving it. ctx is the context of the first Resume.
type Program func(ctx context.Context, co *Coroutine) error

// PanicError is a panic recovered from a Program.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprint(e.Value)
}

// killed unwinds a Program that is closed while suspended.
type killed struct{}

type result struct {
	filter event.Value
	done   bool
	err    error
}

// Thread drives a Program as a resumable computation.
type Thread struct {
	mu      sync.Mutex
	program Program
	started bool
	dead    bool

	resume chan event.Event
	yield  chan result
	kill   chan struct{}
	exited chan struct{}
}

// Start prepares program. It does not run until the first Resume.
func Start(program Program) *Thread {
	return &Thread{
		program: program,
		resume:  make(chan event.Event),
		yield:   make(chan result),
		kill:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

// Resume runs the computation until it yields or finishes. The first call
// ignores ev. It returns whether the computation is still alive and the
// filter it is waiting for. A returned error means the computation finished
// with that error.
func (t *Thread) Resume(ctx context.Context, ev event.Event) (bool, event.Value, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dead {
		return false, event.Nil(), ErrDead
	}

	if !t.started {
		t.started = true
		go t.run(ctx)
	} else {
		select {
		case t.resume <- ev:
		case <-ctx.Done():
			return true, event.Nil(), ctx.Err()
		}
	}

	select {
	case res := <-t.yield:
		if res.done {
			t.dead = true
			return false, event.Nil(), res.err
		}
		return true, res.filter, nil
	case <-ctx.Done():
		return true, event.Nil(), ctx.Err()
	}
}

func (t *Thread) run(ctx context.Context) {
	defer close(t.exited)

	res := result{done: true}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(killed); ok {
				return
			}
			res.err = &PanicError{Value: r, Stack: debug.Stack()}
		}

		select {
		case t.yield <- res:
		case <-t.kill:
		}
	}()

	res.err = t.program(ctx, &Coroutine{thread: t})
}

// Alive reports whether the computation has not finished.
func (t *Thread) Alive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return !t.dead
}

// Close kills a suspended computation and waits for its goroutine to exit.
// Deferred functions of the Program still run.
func (t *Thread) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dead {
		return
	}
	t.dead = true

	close(t.kill)
	if t.started {
		<-t.exited
	}
}

// Coroutine is the handle a Program uses to suspend itself.
type Coroutine struct {
	thread *Thread
}

// Yield suspends the computation until it is resumed and returns the
// event it was resumed with. A nil filter accepts any event.
func (co *Coroutine) Yield(filter event.Value) event.Event {
	t := co.thread

	select {
	case t.yield <- result{filter: filter}:
	case <-t.kill:
		panic(killed{})
	}

	select {
	case ev := <-t.resume:
		return ev
	case <-t.kill:
		panic(killed{})
	}
}

// PullEventRaw waits for the next event named filter, or any event if
// filter is empty. "terminate" events are returned like any other.
func (co *Coroutine) PullEventRaw(filter string) event.Event {
	value := event.Nil()
	if filter != "" {
		value = event.String(filter)
	}

	for {
		ev := co.Yield(value)
		if filter == "" || ev.Name() == filter || ev.Name() == event.Terminate {
			return ev
		}
	}
}

// PullEvent is PullEventRaw failing with ErrTerminated on "terminate".
func (co *Coroutine) PullEvent(filter string) (event.Event, error) {
	ev := co.PullEventRaw(filter)
	if ev.Name() == event.Terminate {
		return nil, ErrTerminated
	}
	return ev, nil
}
