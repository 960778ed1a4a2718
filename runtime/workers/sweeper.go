package workers

import (
	"chat-room/contract"
	"context"
	"log/slog"
	"time"
)

// Sweeper evicts participants whose heartbeat has expired.
type Sweeper interface {
	SweepExpired(ctx context.Context, now time.Time, expiry time.Duration) ([]string, error)
}

// SweeperWorker runs one sweep cycle per interval.
// Cycles never overlap: the ticker drops the ticks that fall during a cycle,
// so a slow cycle defers the next one instead of running it concurrently.
type SweeperWorker struct {
	log      *slog.Logger
	sweeper  Sweeper
	health   contract.HealthReporter
	clock    func() time.Time
	interval time.Duration
	timeout  time.Duration
	expiry   time.Duration
}

func NewSweeperWorker(
	log *slog.Logger,
	sweeper Sweeper,
	health contract.HealthReporter,
	clock func() time.Time,
	interval, timeout, expiry time.Duration,
) *SweeperWorker {
	return &SweeperWorker{
		log:      log,
		sweeper:  sweeper,
		health:   health,
		clock:    clock,
		interval: interval,
		timeout:  timeout,
		expiry:   expiry,
	}
}

func (w *SweeperWorker) Run(ctx context.Context) error {
	w.log.Info("Starting sweeper worker", "interval", w.interval, "expiry", w.expiry)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping sweeper worker")
			return nil
		case <-ticker.C:
			w.cycle(ctx)
		}
	}
}

// cycle runs a single sweep. A failure is logged and the cycle skipped,
// the next tick retries.
func (w *SweeperWorker) cycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	start := time.Now()
	evicted, err := w.sweeper.SweepExpired(cycleCtx, w.clock(), w.expiry)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.Warn("Sweep cycle failed", "error", err, "evicted", len(evicted))
		w.report(false)
		return
	}
	w.report(true)
	if len(evicted) > 0 {
		w.log.Info("Sweep cycle done", "evicted", evicted, "took", time.Since(start))
	}
}

func (w *SweeperWorker) report(serving bool) {
	if w.health != nil {
		w.health.SetServing(serving)
	}
}
