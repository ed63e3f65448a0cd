package restore

import (
	"context"
	"errors"
	"strings"

	"github.com/dean-jl/kuma-restore/internal/backup"
	"github.com/dean-jl/kuma-restore/internal/kuma"
)

// RestoreMonitors creates the backup's non-group monitors in backup order,
// rewriting parent and notification references through the id maps built by
// the earlier phases. A monitor the server rejects is logged and counted as
// skipped; a single bad monitor never aborts the batch. Connection-level
// failures (past the one-shot retry) still abort.
func (r *Restorer) RestoreMonitors(ctx context.Context, monitors []backup.Monitor, groupIDs, notifIDs map[int]int) (MonitorResult, error) {
	var result MonitorResult
	if len(monitors) == 0 {
		return result, nil
	}

	p, err := r.beginPhase(ctx)
	if err != nil {
		return result, err
	}
	defer p.end()

	for i := range monitors {
		m := &monitors[i]
		if m.IsGroup() {
			continue
		}

		name := m.DisplayName()
		typ := strings.ToLower(strings.TrimSpace(m.Type))

		if r.onlyActive && !m.IsActive() {
			result.Skipped++
			r.logger.Printf("[SKIP] Inactive monitor '%s' (only-active enabled)", name)
			continue
		}

		if !knownMonitorTypes[typ] {
			result.Skipped++
			r.logger.Printf("[WARN] Unknown monitor type '%s' for '%s', skipping", typ, name)
			continue
		}

		var parent *int
		if m.Parent != nil {
			if newID, ok := groupIDs[*m.Parent]; ok {
				parent = &newID
			}
		}

		// Unresolved notification references are dropped, not substituted.
		var notifications []int
		for _, oldID := range m.NotificationIDList {
			if newID, ok := notifIDs[oldID]; ok {
				notifications = append(notifications, newID)
			}
		}

		payload := buildMonitorPayload(m, typ, parent, notifications, r.logger)
		active := m.IsActive()

		if r.dryRun {
			r.logger.Printf("[DRY] Would create monitor '%s' (type=%s, parent=%s, active=%t)",
				name, typ, describeParent(parent), active)
			continue
		}

		res, err := p.call(func(s kuma.Session) (interface{}, error) {
			return s.AddMonitor(payload)
		})
		if err != nil {
			var serverErr *kuma.ServerError
			if errors.As(err, &serverErr) {
				result.Skipped++
				r.logger.Printf("[FAIL] Could not create monitor '%s': %v", name, err)
				continue
			}
			return result, err
		}

		newID, err := kuma.ExtractMonitorID(res, name, p)
		if err != nil {
			return result, err
		}

		result.Created++
		r.logger.Printf("[OK] Created monitor '%s' -> id %d", name, newID)

		if !active {
			_, err := p.call(func(s kuma.Session) (interface{}, error) {
				return nil, s.PauseMonitor(newID)
			})
			if err != nil {
				var serverErr *kuma.ServerError
				if !errors.As(err, &serverErr) {
					return result, err
				}
				r.logger.Printf("[WARN] Created monitor '%s' but could not pause it: %v", name, err)
				continue
			}
			result.Paused++
			r.logger.Printf("[OK] Paused monitor '%s'", name)
		}
	}

	return result, nil
}
