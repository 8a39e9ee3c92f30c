package pump

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueueOrderAndClose(t *testing.T) {
	q := NewQueue[int](context.Background())
	for i := 1; i <= 100; i++ {
		assert.True(t, q.Push(i))
	}
	q.Close()
	assert.False(t, q.Push(101))

	var got []int
	for v := range q.Out() {
		got = append(got, v)
	}
	assert.Len(t, got, 100)
	for i, v := range got {
		assert.Equal(t, i+1, v)
	}
	assert.Zero(t, q.Len())
}

func TestQueueCancelDropsPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewQueue[string](ctx)
	q.Push("a")
	q.Push("b")
	assert.Equal(t, "a", <-q.Out())

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-q.Out():
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestQueuePushNeverBlocks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewQueue[int](ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			q.Push(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("push blocked without a reader")
	}
	assert.Equal(t, 0, <-q.Out())
}
