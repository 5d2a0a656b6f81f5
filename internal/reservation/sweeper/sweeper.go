package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/pkg/logger"
)

// Expirer runs one expiry pass and reports how many holds it expired.
type Expirer interface {
	Handle(ctx context.Context) (int, error)
}

// Config controls the sweep loop.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
	LeaseTTL time.Duration
}

// Sweeper runs the expiry pass on a ticker, independent of request handling.
type Sweeper struct {
	expirer Expirer
	lease   Lease
	metrics *metrics.Metrics
	cfg     Config

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a sweeper. A nil lease lets every replica sweep.
func New(expirer Expirer, lease Lease, m *metrics.Metrics, cfg Config) *Sweeper {
	if lease == nil {
		lease = NoopLease{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = cfg.Timeout
	}
	return &Sweeper{expirer: expirer, lease: lease, metrics: m, cfg: cfg}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	logger.Info(ctx).
		Dur("interval", s.cfg.Interval).
		Msg("Expiry sweeper started")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.tick(ctx)

		select {
		case <-ctx.Done():
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
			if err := s.lease.Release(releaseCtx); err != nil {
				logger.Warn(ctx).Err(err).Msg("Failed to release sweeper lease")
			}
			cancel()
			logger.Info(ctx).Msg("Expiry sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Start runs the loop in the background until Stop.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		_ = s.Run(ctx)
	}(s.done)
}

// Stop cancels the loop and waits for the running tick to return.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RunOnce performs a single sweep if this replica holds the lease.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	ok, err := s.lease.Acquire(ctx, s.cfg.LeaseTTL)
	if err != nil {
		// Sweeps are safe to run concurrently; an unreachable lease store
		// must not stop expiry.
		logger.Warn(ctx).Err(err).Msg("Sweeper lease unavailable, sweeping anyway")
	} else if !ok {
		logger.Debug(ctx).Msg("Sweeper lease held elsewhere, skipping tick")
		return 0, nil
	}

	started := time.Now()
	n, err := s.expirer.Handle(ctx)
	s.metrics.ObserveSweep(n, time.Since(started), err)
	return n, err
}

func (s *Sweeper) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		logger.Error(ctx).Err(err).Msg("Expiry sweep failed")
	}
}
