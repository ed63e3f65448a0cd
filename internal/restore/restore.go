// Package restore recreates monitors, groups, and notification channels from
// an Uptime Kuma backup export on a running server.
//
// A run is three sequential phases, each on its own short-lived session:
// notifications, then groups (parents before children), then monitors. The
// notification and group phases build old-id -> new-id maps that the monitor
// phase reads to rewire parent and notification references. Nothing persists
// between runs; re-runs stay idempotent for notifications and groups through
// exact-name existence checks against the server.
package restore

import (
	"context"
	"fmt"
	"log"

	"github.com/dean-jl/kuma-restore/internal/backup"
	"github.com/dean-jl/kuma-restore/internal/kuma"
	"golang.org/x/time/rate"
)

// Restorer drives the restore phases against one target server.
type Restorer struct {
	dial              kuma.Dialer
	logger            *log.Logger
	rateLimiter       *rate.Limiter
	dryRun            bool
	onlyActive        bool
	skipNotifications bool
}

// Options configures a Restorer.
type Options struct {
	Dialer            kuma.Dialer
	Logger            *log.Logger
	RateLimiter       *rate.Limiter // outbound call pacing, golang.org/x/time/rate
	DryRun            bool
	OnlyActive        bool
	SkipNotifications bool
}

// New creates a Restorer with the given options, filling in defaults for the
// logger and rate limiter.
func New(opts Options) *Restorer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.RateLimiter == nil {
		// 2 calls/sec, burst 1: slow enough that a busy server won't
		// throttle the run.
		opts.RateLimiter = rate.NewLimiter(rate.Limit(2.0), 1)
	}
	return &Restorer{
		dial:              opts.Dialer,
		logger:            opts.Logger,
		rateLimiter:       opts.RateLimiter,
		dryRun:            opts.DryRun,
		onlyActive:        opts.OnlyActive,
		skipNotifications: opts.SkipNotifications,
	}
}

// Summary reports what one run did.
type Summary struct {
	GroupsInBackup   int
	MonitorsInBackup int
	Monitors         MonitorResult
	DryRun           bool
}

// MonitorResult aggregates the monitor phase counters.
type MonitorResult struct {
	Created int
	Paused  int
	Skipped int
}

// Run executes the full restore: notifications, groups, monitors. Each phase
// gets its own authenticated session. A phase-level failure aborts the run;
// per-monitor rejections are counted, not fatal.
func (r *Restorer) Run(ctx context.Context, doc *backup.Document) (*Summary, error) {
	summary := &Summary{
		GroupsInBackup:   len(doc.Groups()),
		MonitorsInBackup: len(doc.Checks()),
		DryRun:           r.dryRun,
	}

	notifIDs := map[int]int{}
	if r.skipNotifications {
		r.logger.Printf("[INFO] Skipping notifications as requested")
	} else {
		var err error
		notifIDs, err = r.RestoreNotifications(ctx, doc.NotificationList)
		if err != nil {
			return summary, fmt.Errorf("notification phase failed: %w", err)
		}
	}

	groupIDs, err := r.RestoreGroups(ctx, doc.MonitorList)
	if err != nil {
		return summary, fmt.Errorf("group phase failed: %w", err)
	}

	result, err := r.RestoreMonitors(ctx, doc.MonitorList, groupIDs, notifIDs)
	if err != nil {
		return summary, fmt.Errorf("monitor phase failed: %w", err)
	}
	summary.Monitors = result

	return summary, nil
}
