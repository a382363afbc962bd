// Package monitor produces health reports on a fixed interval.
package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/dashu-baba/docker-service-manager/internal/types"
)

// DefaultInterval is used when Loop.Interval is not set.
const DefaultInterval = time.Minute

// Reporter builds reports. *collector.Reporter satisfies it.
type Reporter interface {
	Quick(ctx context.Context) (*types.HealthReport, error)
	Full(ctx context.Context) (*types.HealthReport, error)
}

// Observer receives every report the loop produces.
type Observer interface {
	Observe(r *types.HealthReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(r *types.HealthReport)

func (f ObserverFunc) Observe(r *types.HealthReport) { f(r) }

// Loop runs a report immediately and then once per Interval until the
// context is done. A report that was cut short by cancellation is dropped.
type Loop struct {
	Interval  time.Duration
	Full      bool
	Reporter  Reporter
	Observers []Observer

	logger zerolog.Logger
}

func NewLoop(reporter Reporter, interval time.Duration, full bool, logger zerolog.Logger, observers ...Observer) *Loop {
	return &Loop{
		Interval:  interval,
		Full:      full,
		Reporter:  reporter,
		Observers: observers,
		logger:    logger,
	}
}

// Run blocks until ctx is done and returns nil on a clean shutdown.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	l.logger.Info().Dur("interval", interval).Bool("full", l.Full).Msg("starting periodic health reports")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := l.tick(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return err
		}
		select {
		case <-ctx.Done():
			l.logger.Info().Msg("periodic health reports stopped")
			return nil
		case <-ticker.C:
		}
	}
	l.logger.Info().Msg("periodic health reports stopped")
	return nil
}

func (l *Loop) tick(ctx context.Context) error {
	ctx = l.logger.WithContext(ctx)
	start := time.Now()

	var (
		report *types.HealthReport
		err    error
	)
	if l.Full {
		report, err = l.Reporter.Full(ctx)
	} else {
		report, err = l.Reporter.Quick(ctx)
	}
	if err != nil {
		return err
	}

	l.summarize(report, time.Since(start))
	for _, o := range l.Observers {
		o.Observe(report)
	}
	return nil
}

func (l *Loop) summarize(r *types.HealthReport, took time.Duration) {
	event := l.logger.Info()
	if !r.Service.Reachable || len(r.Errors) > 0 {
		event = l.logger.Warn()
	}
	high := 0
	for _, is := range r.Issues {
		if is.Severity == "high" {
			high++
		}
	}
	event.
		Str("kind", string(r.Kind)).
		Str("state", string(r.Service.State)).
		Bool("reachable", r.Service.Reachable).
		Int("containers_running", r.Counts.ContainersRunning).
		Int("containers_stopped", r.Counts.ContainersStopped).
		Int("containers_unhealthy", r.Counts.ContainersUnhealthy).
		Int("images", r.Counts.Images).
		Int("dangling_images", r.Counts.DanglingImages).
		Int("issues", len(r.Issues)).
		Int("issues_high", high).
		Strs("errors", r.Errors).
		Int64("took_ms", took.Milliseconds()).
		Msg("health report")
}
