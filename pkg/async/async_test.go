package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subsync/pkg/async"
)

func TestGo(t *testing.T) {
	t.Parallel()

	t.Run("returns result", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (string, error) {
			return "token", nil
		})
		v, err := f.Await()
		require.NoError(t, err)
		assert.Equal(t, "token", v)
		assert.True(t, f.IsComplete())
	})

	t.Run("propagates error", func(t *testing.T) {
		t.Parallel()
		want := errors.New("boom")
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			return 0, want
		})
		_, err := f.Await()
		assert.ErrorIs(t, err, want)
	})

	t.Run("recovers panic", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			panic("kaboom")
		})
		_, err := f.Await()
		require.ErrorIs(t, err, async.ErrPanic)
		assert.Contains(t, err.Error(), "kaboom")
	})

	t.Run("skips function on cancelled context", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		called := false
		f := async.Go(ctx, func(context.Context) (int, error) {
			called = true
			return 1, nil
		})
		_, err := f.Await()
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestAwaitContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	f := async.Go(context.Background(), func(context.Context) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.AwaitContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.IsComplete())
}

func TestResolved(t *testing.T) {
	t.Parallel()

	f := async.Resolved(42, nil)
	select {
	case <-f.Done():
	default:
		t.Fatal("resolved future must be complete")
	}
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	want := errors.New("second failed")
	res, err := async.WaitAll(
		async.Resolved(1, nil),
		async.Resolved(0, want),
		async.Resolved(3, nil),
	)
	assert.ErrorIs(t, err, want)
	assert.Equal(t, []int{1, 0, 0}, res)

	res, err = async.WaitAll(async.Resolved(1, nil), async.Resolved(2, nil))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res)
}
