package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestHandle_Err(t *testing.T) {
	wantErr := errors.New("boom")
	q := NewQueue(0)

	h := q.Start(t.Context(), func(ctx context.Context) error {
		return wantErr
	})

	if err := h.Err(); !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
}

func TestQueue_WaitJoinsErrors(t *testing.T) {
	err1 := errors.New("error one")
	err2 := errors.New("error two")
	q := NewQueue(0)

	q.Start(t.Context(), func(ctx context.Context) error { return err1 })
	q.Start(t.Context(), func(ctx context.Context) error { return nil })
	q.Start(t.Context(), func(ctx context.Context) error { return err2 })

	err := q.Wait()
	if !errors.Is(err, err1) || !errors.Is(err, err2) {
		t.Errorf("expected joined error with both causes, got %v", err)
	}
}

func TestQueue_WaitNilWhenAllSucceed(t *testing.T) {
	q := NewQueue(2)

	for range 4 {
		q.Start(t.Context(), func(ctx context.Context) error { return nil })
	}

	if err := q.Wait(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestQueue_ConcurrencyLimit(t *testing.T) {
	testCases := []struct {
		name    string
		limit   int
		total   int
		expPeak func(peak int32) bool
	}{
		{name: "bounded", limit: 2, total: 6, expPeak: func(peak int32) bool { return peak <= 2 }},
		{name: "unbounded", limit: 0, total: 8, expPeak: func(peak int32) bool { return peak == 8 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQueue(tc.limit)

			var running, peak atomic.Int32
			barrier := make(chan struct{})

			for range tc.total {
				q.Start(t.Context(), func(ctx context.Context) error {
					cur := running.Add(1)
					for {
						old := peak.Load()
						if cur <= old || peak.CompareAndSwap(old, cur) {
							break
						}
					}
					<-barrier
					running.Add(-1)
					return nil
				})
			}

			time.Sleep(50 * time.Millisecond)
			close(barrier)

			if err := q.Wait(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.expPeak(peak.Load()) {
				t.Errorf("unexpected peak concurrency %d", peak.Load())
			}
		})
	}
}

func TestQueue_CancelledWhileWaitingForSlot(t *testing.T) {
	q := NewQueue(1)

	release := make(chan struct{})
	q.Start(t.Context(), func(ctx context.Context) error {
		<-release
		return nil
	})

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var ran atomic.Bool
	h := q.Start(ctx, func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})

	if err := h.Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	close(release)
	_ = q.Wait()

	if ran.Load() {
		t.Error("work function should not have run")
	}
}

func TestQueue_Shutdown(t *testing.T) {
	q := NewQueue(1)

	release := make(chan struct{})
	q.Start(t.Context(), func(ctx context.Context) error {
		<-release
		return nil
	})

	time.Sleep(20 * time.Millisecond)
	q.Shutdown()
	close(release)

	h := q.Start(t.Context(), func(ctx context.Context) error {
		t.Error("work function should not have run after shutdown")
		return nil
	})

	if err := h.Err(); !errors.Is(err, ErrShutdown) {
		t.Errorf("expected ErrShutdown, got %v", err)
	}
}

func TestQueue_RecoversPanic(t *testing.T) {
	q := NewQueue(1)

	h := q.Start(t.Context(), func(ctx context.Context) error {
		panic("kaboom")
	})

	if err := h.Err(); err == nil || err.Error() != "panic: kaboom" {
		t.Errorf("expected recovered panic, got %v", err)
	}
}
