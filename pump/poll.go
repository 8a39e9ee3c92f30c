// Package pump 把 mirai-api-http 的推送变成一个按顺序读取的 channel。
// 轮询、webhook 与 websocket 三种来源的输出形式相同，消费者通过取消 ctx 结束读取。
package pump

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ziyi233/mirai-tui/mirai"
)

// Fetcher 从服务端消息队列中取出一批推送
type Fetcher interface {
	FetchMessage(ctx context.Context, args mirai.CountArgs) ([]mirai.Envelope, error)
}

type PollOptions struct {
	// Buffer 输出 channel 的容量，消费者跟不上时轮询会停在发送上
	Buffer int
	// BatchSize 每次最多取多少条，0 表示使用服务端默认值
	BatchSize int64
	// Interval 队列为空或出错后等待的时间
	Interval time.Duration
}

func DefaultPollOptions() PollOptions {
	return PollOptions{Buffer: 1, Interval: 50 * time.Millisecond}
}

// Poll 启动轮询并返回输出 channel。
// 每个错误都会交给 onError，之后照常等待下一轮；ctx 结束后输出关闭。
func Poll(ctx context.Context, src Fetcher, opts PollOptions, onError func(error)) <-chan mirai.Envelope {
	if opts.BatchSize > math.MaxInt32 {
		panic(fmt.Sprintf("pump: batch size %d exceeds %d", opts.BatchSize, math.MaxInt32))
	}
	if opts.Buffer < 0 {
		opts.Buffer = 0
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollOptions().Interval
	}
	if onError == nil {
		onError = func(error) {}
	}
	var args mirai.CountArgs
	if opts.BatchSize > 0 {
		n := int32(opts.BatchSize)
		args.Count = &n
	}

	out := make(chan mirai.Envelope, opts.Buffer)
	go func() {
		defer close(out)
		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()
		for {
			batch, err := src.FetchMessage(ctx, args)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				onError(err)
			}
			if len(batch) == 0 {
				timer.Reset(opts.Interval)
				select {
				case <-timer.C:
					continue
				case <-ctx.Done():
					return
				}
			}
			for _, env := range batch {
				select {
				case out <- env:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
