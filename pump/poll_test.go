package pump

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziyi233/mirai-tui/mirai"
)

// scriptedFetcher 按顺序返回预设的批次，用完后一直返回空
type scriptedFetcher struct {
	mu      sync.Mutex
	batches [][]mirai.Envelope
	errs    []error
	calls   int
	counts  []*int32
}

func (f *scriptedFetcher) FetchMessage(ctx context.Context, args mirai.CountArgs) ([]mirai.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.counts = append(f.counts, args.Count)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func online(qq int64) mirai.Envelope { return &mirai.BotOnline{ID: qq} }

func receive(t *testing.T, ch <-chan mirai.Envelope) mirai.Envelope {
	t.Helper()
	select {
	case env, ok := <-ch:
		require.True(t, ok, "channel closed")
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
		return nil
	}
}

func TestPollBackPressure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &scriptedFetcher{batches: [][]mirai.Envelope{
		{online(1), online(2)},
		{online(3)},
	}}

	out := Poll(ctx, src, PollOptions{Buffer: 1, BatchSize: 2, Interval: 10 * time.Millisecond}, nil)

	// 第一批的第二条卡在发送上，不会再去取第二批
	assert.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return src.callCount() > 1 }, 100*time.Millisecond, 10*time.Millisecond)

	assert.Equal(t, online(1), receive(t, out))
	assert.Eventually(t, func() bool { return src.callCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, online(2), receive(t, out))
	assert.Equal(t, online(3), receive(t, out))

	src.mu.Lock()
	require.NotNil(t, src.counts[0])
	assert.Equal(t, int32(2), *src.counts[0])
	src.mu.Unlock()
}

func TestPollReportsErrorsAndContinues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	boom := errors.New("connection refused")
	src := &scriptedFetcher{
		errs:    []error{boom},
		batches: [][]mirai.Envelope{{online(7)}},
	}
	var mu sync.Mutex
	var errs []error

	out := Poll(ctx, src, PollOptions{Interval: 5 * time.Millisecond}, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	})

	assert.Equal(t, online(7), receive(t, out))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []error{boom}, errs)
}

func TestPollDefaultBatchSize(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &scriptedFetcher{batches: [][]mirai.Envelope{{online(1)}}}

	out := Poll(ctx, src, DefaultPollOptions(), nil)
	receive(t, out)

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Nil(t, src.counts[0])
}

func TestPollStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedFetcher{batches: [][]mirai.Envelope{{online(1), online(2), online(3)}}}
	out := Poll(ctx, src, PollOptions{Buffer: 0, Interval: 5 * time.Millisecond}, nil)

	receive(t, out)
	cancel()
	assert.Eventually(t, func() bool {
		for range out {
		}
		return true
	}, time.Second, 10*time.Millisecond)
}

func TestPollRejectsOversizedBatch(t *testing.T) {
	assert.Panics(t, func() {
		Poll(context.Background(), &scriptedFetcher{}, PollOptions{BatchSize: math.MaxInt32 + 1}, nil)
	})
}
