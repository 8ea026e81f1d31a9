// Package scheduler runs the optional periodic index reload: the same
// path /reload-patterns drives, triggered on a cron schedule instead of a
// request.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kailas-cloud/patternengine/internal/loader"
	"github.com/kailas-cloud/patternengine/internal/metrics"
)

// Scheduler periodically invokes a Loader's Reload on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	loader  *loader.Loader
	log     *zap.Logger
	running atomic.Bool
}

// New constructs a Scheduler. spec is a standard 5-field cron expression
// or one of the robfig/cron descriptors (e.g. "@every 5m").
func New(ldr *loader.Loader, spec string, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{cron: cron.New(), loader: ldr, log: log}

	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the cron scheduler. Non-blocking.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for the currently running reload, if any, then stops.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runOnce() {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Info("scheduled reload skipped: previous reload still running")
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	s.log.Info("scheduled reload started")

	snap, err := s.loader.Reload(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		metrics.ReloadTotal.WithLabelValues("failure").Inc()
		metrics.ReloadDuration.WithLabelValues("failure").Observe(elapsed.Seconds())
		s.log.Error("scheduled reload failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return
	}

	metrics.ReloadTotal.WithLabelValues("success").Inc()
	metrics.ReloadDuration.WithLabelValues("success").Observe(elapsed.Seconds())
	metrics.IndexPatternsLoaded.Set(float64(snap.Len()))
	s.log.Info("scheduled reload finished", zap.Duration("elapsed", elapsed), zap.Int("pattern_count", snap.Len()))
}
