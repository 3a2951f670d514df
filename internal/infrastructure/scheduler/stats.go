// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/kyzmat/marketplace/internal/api/metrics"
	"github.com/kyzmat/marketplace/internal/core/domain"
)

const (
	DefaultStatsSchedule = "@every 1m"
	refreshTimeout       = 30 * time.Second
)

// StatsSource computes the dashboard statistics.
type StatsSource interface {
	Statistics(ctx context.Context) (domain.Statistics, error)
}

// StatsRefresher periodically recomputes the marketplace statistics and
// exports them as Prometheus gauges.
type StatsRefresher struct {
	cron *cron.Cron
	src  StatsSource
	log  zerolog.Logger

	mu   sync.RWMutex
	last domain.Statistics
	at   time.Time
}

// NewStatsRefresher schedules a refresh according to schedule (standard 5-field
// cron syntax or descriptors such as "@every 30s"). An empty schedule uses
// DefaultStatsSchedule.
func NewStatsRefresher(schedule string, src StatsSource, log zerolog.Logger) (*StatsRefresher, error) {
	if schedule == "" {
		schedule = DefaultStatsSchedule
	}
	r := &StatsRefresher{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		src:  src,
		log:  log,
	}
	if _, err := r.cron.AddFunc(schedule, func() { r.Refresh(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid stats schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start refreshes once immediately and then runs on schedule.
func (r *StatsRefresher) Start(ctx context.Context) {
	r.Refresh(ctx)
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish or ctx to expire.
func (r *StatsRefresher) Stop(ctx context.Context) {
	select {
	case <-r.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Refresh recomputes the statistics now.
func (r *StatsRefresher) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	stats, err := r.src.Statistics(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("statistics refresh failed")
		return
	}

	metrics.UsersGauge.WithLabelValues("total").Set(float64(stats.TotalUsers))
	metrics.UsersGauge.WithLabelValues("active").Set(float64(stats.ActiveUsers))
	metrics.UsersGauge.WithLabelValues("blocked").Set(float64(stats.BlockedUsers))
	metrics.JobsGauge.WithLabelValues("total").Set(float64(stats.TotalJobs))
	metrics.JobsGauge.WithLabelValues("completed").Set(float64(stats.CompletedJobs))
	metrics.JobsGauge.WithLabelValues("blocked").Set(float64(stats.BlockedJobs))
	metrics.ReportsGauge.Set(float64(stats.TotalReports))

	r.mu.Lock()
	r.last, r.at = stats, time.Now().UTC()
	r.mu.Unlock()

	r.log.Debug().Int("users", stats.TotalUsers).Int("jobs", stats.TotalJobs).Msg("statistics refreshed")
}

// Last returns the most recent snapshot and when it was taken.
func (r *StatsRefresher) Last() (domain.Statistics, time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.at
}
