package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Syncer runs one unit of background work. It reports whether anything was due.
type Syncer interface {
	SyncDue(ctx context.Context) (bool, error)
}

// Pool runs count workers that poll the syncer on every tick. A worker that found work polls again
// right away instead of waiting for the next tick.
type Pool struct {
	syncer   Syncer
	logger   *zap.Logger
	count    int
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
	once     sync.Once
}

func NewPool(syncer Syncer, logger *zap.Logger, count int, interval time.Duration) *Pool {
	return &Pool{
		syncer:   syncer,
		logger:   logger,
		count:    count,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("workers", p.count), zap.Duration("interval", p.interval))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals every worker and waits for them to return. It is safe to call more than once.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.logger.Info("Stopping worker pool...")
		close(p.stop)
	})
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx, id)
		}
	}
}

func (p *Pool) drain(ctx context.Context, id int) {
	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		default:
		}

		ran, err := p.syncer.SyncDue(ctx)
		if err != nil {
			p.logger.Error("worker error", zap.Int("worker", id), zap.Error(err))
			return
		}
		if !ran {
			return
		}
		p.logger.Debug("mail account synced", zap.Int("worker", id))
	}
}
