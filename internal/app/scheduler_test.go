package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestScheduler_RunsTasksUntilStopped(t *testing.T) {
	var ok, failing atomic.Int32

	s := NewScheduler(zap.NewNop(),
		Task{Name: "count", Interval: time.Millisecond, Run: func(context.Context) error {
			ok.Add(1)
			return nil
		}},
		Task{Name: "fail", Interval: time.Millisecond, Run: func(context.Context) error {
			failing.Add(1)
			return errors.New("boom")
		}},
	)

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return ok.Load() >= 3 && failing.Load() >= 3 }, time.Second, time.Millisecond)

	s.Stop()
	s.Stop()

	stopped := ok.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, stopped, ok.Load())
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(zap.NewNop(), Task{Name: "idle", Interval: time.Hour, Run: func(context.Context) error { return nil }})

	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after context cancel")
	}
}
