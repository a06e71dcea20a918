package guest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mwantia/craftos/event"
	"github.com/mwantia/craftos/guest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThread_ResumeYield(t *testing.T) {
	ctx := t.Context()

	var received []event.Event
	thread := guest.Start(func(_ context.Context, co *guest.Coroutine) error {
		received = append(received, co.Yield(event.String("key")))
		received = append(received, co.Yield(event.Nil()))
		return nil
	})

	alive, filter, err := thread.Resume(ctx, nil)
	require.NoError(t, err)
	assert.True(t, alive)
	assert.Equal(t, event.String("key"), filter)

	alive, filter, err = thread.Resume(ctx, event.New("key", 30, false))
	require.NoError(t, err)
	assert.True(t, alive)
	assert.True(t, filter.IsNil())

	alive, _, err = thread.Resume(ctx, event.New("char", "a"))
	require.NoError(t, err)
	assert.False(t, alive)
	assert.False(t, thread.Alive())

	require.Len(t, received, 2)
	assert.Equal(t, "key", received[0].Name())
	assert.Equal(t, "char", received[1].Name())

	_, _, err = thread.Resume(ctx, nil)
	assert.ErrorIs(t, err, guest.ErrDead)
}

func TestThread_Error(t *testing.T) {
	failure := errors.New("bios.lua:1: boom")
	thread := guest.Start(func(_ context.Context, co *guest.Coroutine) error {
		return failure
	})

	alive, _, err := thread.Resume(t.Context(), nil)
	assert.False(t, alive)
	assert.ErrorIs(t, err, failure)
}

func TestThread_Panic(t *testing.T) {
	thread := guest.Start(func(_ context.Context, co *guest.Coroutine) error {
		co.Yield(event.Nil())
		panic("attempt to index nil")
	})

	_, _, err := thread.Resume(t.Context(), nil)
	require.NoError(t, err)

	alive, _, err := thread.Resume(t.Context(), event.New("timer", 1))
	assert.False(t, alive)

	var pe *guest.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "attempt to index nil", pe.Error())
	assert.NotEmpty(t, pe.Stack)
}

func TestThread_Close(t *testing.T) {
	cleaned := make(chan struct{})
	thread := guest.Start(func(_ context.Context, co *guest.Coroutine) error {
		defer close(cleaned)
		for {
			co.Yield(event.Nil())
		}
	})

	_, _, err := thread.Resume(t.Context(), nil)
	require.NoError(t, err)

	thread.Close()
	assert.False(t, thread.Alive())

	select {
	case <-cleaned:
	default:
		t.Fatal("deferred cleanup did not run")
	}

	// Closing twice and closing an unstarted thread are no-ops.
	thread.Close()
	guest.Start(func(_ context.Context, co *guest.Coroutine) error { return nil }).Close()
}

func TestCoroutine_PullEvent(t *testing.T) {
	ctx := t.Context()

	var got event.Event
	var pullErr error
	thread := guest.Start(func(_ context.Context, co *guest.Coroutine) error {
		got, pullErr = co.PullEvent("key")
		if pullErr != nil {
			return pullErr
		}
		_, pullErr = co.PullEvent("")
		return pullErr
	})

	_, filter, err := thread.Resume(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, event.String("key"), filter)

	// Non-matching events are skipped by PullEvent itself.
	alive, _, err := thread.Resume(ctx, event.New("char", "a"))
	require.NoError(t, err)
	assert.True(t, alive)
	assert.Nil(t, got)

	_, filter, err = thread.Resume(ctx, event.New("key", 30, false))
	require.NoError(t, err)
	assert.True(t, filter.IsNil())
	assert.Equal(t, "key", got.Name())

	alive, _, err = thread.Resume(ctx, event.New(event.Terminate))
	assert.False(t, alive)
	assert.ErrorIs(t, err, guest.ErrTerminated)
}
