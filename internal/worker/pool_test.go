package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// queueSyncer hands out a fixed number of due accounts.
type queueSyncer struct {
	remaining atomic.Int64
	calls     atomic.Int64
	err       error
}

func (q *queueSyncer) SyncDue(ctx context.Context) (bool, error) {
	q.calls.Add(1)
	if q.err != nil {
		return false, q.err
	}
	if q.remaining.Add(-1) < 0 {
		q.remaining.Add(1)
		return false, nil
	}
	return true, nil
}

func TestPool_DrainsDueAccounts(t *testing.T) {
	s := &queueSyncer{}
	s.remaining.Store(10)

	p := NewPool(s, zap.NewNop(), 3, 10*time.Millisecond)
	p.Start(context.Background())

	done := waitFor(2*time.Second, func() bool { return s.remaining.Load() == 0 })
	p.Stop()

	assert.True(t, done, "every due account should be synced")
	assert.Equal(t, int64(0), s.remaining.Load())
}

func TestPool_KeepsPollingAfterErrors(t *testing.T) {
	s := &queueSyncer{err: errors.New("db down")}

	p := NewPool(s, zap.NewNop(), 1, 5*time.Millisecond)
	p.Start(context.Background())

	polled := waitFor(2*time.Second, func() bool { return s.calls.Load() >= 3 })
	p.Stop()

	assert.True(t, polled)
}

func TestPool_StopsOnContextCancel(t *testing.T) {
	s := &queueSyncer{}
	ctx, cancel := context.WithCancel(context.Background())

	p := NewPool(s, zap.NewNop(), 4, time.Hour)
	p.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		p.Stop()
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker pool did not stop after cancel")
	}
}

func waitFor(timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return condition()
}
