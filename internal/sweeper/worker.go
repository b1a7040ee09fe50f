package sweeper

import (
	"context"
	"io"
	"time"

	"quill/internal/service"

	"github.com/sirupsen/logrus"
)

type orphanSweeper interface {
	SweepOrphans(context.Context, service.SweepOptions) (service.SweepResult, error)
}

type Config struct {
	Enabled      bool
	StartupDelay time.Duration
	Interval     time.Duration
	MinAge       time.Duration
}

// Worker periodically removes media files no post references.
type Worker struct {
	sweeper orphanSweeper
	cfg     Config
	logger  logrus.FieldLogger
	trigger chan struct{}
}

func NewWorker(sweeper orphanSweeper, cfg Config, logger logrus.FieldLogger) *Worker {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	if cfg.StartupDelay < 0 {
		cfg.StartupDelay = 0
	}
	if cfg.Interval < 0 {
		cfg.Interval = 0
	}
	if cfg.MinAge < 0 {
		cfg.MinAge = 0
	}
	return &Worker{
		sweeper: sweeper,
		cfg:     cfg,
		logger:  logger.WithField("component", "sweeper"),
		trigger: make(chan struct{}, 1),
	}
}

// Trigger asks a running worker for an extra pass. It never blocks; a pass
// already pending absorbs the request.
func (w *Worker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done. With no interval it sweeps once after the
// startup delay and then only on Trigger.
func (w *Worker) Run(ctx context.Context) {
	if !w.cfg.Enabled || w.sweeper == nil {
		return
	}
	if w.cfg.StartupDelay > 0 {
		timer := time.NewTimer(w.cfg.StartupDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	w.runOnce(ctx)

	var tick <-chan time.Time
	if w.cfg.Interval > 0 {
		ticker := time.NewTicker(w.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			w.runOnce(ctx)
		case <-w.trigger:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	start := time.Now()
	res, err := w.sweeper.SweepOrphans(ctx, service.SweepOptions{MinAge: w.cfg.MinAge})
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.WithError(err).WithField("elapsed", elapsed.String()).Error("media sweep failed")
		return
	}
	w.logger.WithFields(logrus.Fields{
		"elapsed": elapsed.String(),
		"scanned": res.Scanned,
		"orphans": len(res.Orphans),
		"removed": res.Removed,
	}).Info("media sweep finished")
}
