package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestCollect(t *testing.T) {
	t.Run("gathers one result per item", func(t *testing.T) {
		items := []int{1, 2, 3, 4, 5}
		got := Collect(context.Background(), 3, items, func(_ context.Context, v int) int {
			return v * 2
		})
		if len(got) != len(items) {
			t.Fatalf("expected %d results, got %d", len(items), len(got))
		}
		var sum int
		for _, v := range got {
			sum += v
		}
		if sum != 30 {
			t.Fatalf("expected result sum 30, got %d", sum)
		}
	})

	t.Run("failure results do not stop the pool", func(t *testing.T) {
		items := []int{1, 2, 3, 4}
		got := Collect(context.Background(), 2, items, func(_ context.Context, v int) bool {
			return v%2 == 0
		})
		if len(got) != len(items) {
			t.Fatalf("expected %d results, got %d", len(items), len(got))
		}
	})

	t.Run("bounds concurrency at workerCount", func(t *testing.T) {
		var active, peak int32
		items := make([]int, 32)
		Collect(context.Background(), 4, items, func(_ context.Context, _ int) struct{} {
			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
			return struct{}{}
		})
		if peak > 4 {
			t.Fatalf("expected at most 4 concurrent workers, saw %d", peak)
		}
	})

	t.Run("canceled context stops feeding the queue", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		items := make([]int, 100)
		got := Collect(ctx, 2, items, func(_ context.Context, v int) int {
			return v
		})
		if len(got) == len(items) {
			t.Fatalf("expected canceled run to process fewer than %d items", len(items))
		}
	})

	t.Run("empty items returns nil", func(t *testing.T) {
		got := Collect(context.Background(), 4, nil, func(_ context.Context, v int) int { return v })
		if got != nil {
			t.Fatalf("expected nil results, got %v", got)
		}
	})
}
