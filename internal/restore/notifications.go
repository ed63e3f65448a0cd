package restore

import (
	"context"

	"github.com/dean-jl/kuma-restore/internal/backup"
	"github.com/dean-jl/kuma-restore/internal/kuma"
)

// defaultProvider is assumed when a backup's notification config carries no
// provider type at all.
const defaultProvider = "pushover"

// backupOnlyConfigKeys never belong in the provider config sent to the
// server; they are either top-level call arguments or backup bookkeeping.
var backupOnlyConfigKeys = map[string]bool{
	"type":          true,
	"name":          true,
	"applyExisting": true,
	"isDefault":     true,
}

// RestoreNotifications creates the notification channels missing from the
// server, in backup order, and returns the backup-id -> server-id map. A
// channel whose exact name already exists is recorded under its existing id
// and skipped.
func (r *Restorer) RestoreNotifications(ctx context.Context, list []backup.Notification) (map[int]int, error) {
	idMap := map[int]int{}
	if len(list) == 0 {
		return idMap, nil
	}

	p, err := r.beginPhase(ctx)
	if err != nil {
		return nil, err
	}
	defer p.end()

	existing, err := p.Notifications()
	if err != nil {
		return nil, err
	}
	existingByName := make(map[string]int, len(existing))
	for _, n := range existing {
		existingByName[n.Name] = n.ID
	}

	for i := range list {
		notif := &list[i]
		name := notif.DisplayName()

		if id, ok := existingByName[name]; ok {
			idMap[notif.ID] = id
			r.logger.Printf("[SKIP] Notification '%s' already exists -> id %d", name, id)
			continue
		}

		cfg, err := notif.ParsedConfig()
		if err != nil {
			r.logger.Printf("[WARN] Notification '%s': %v; using empty config", name, err)
			cfg = map[string]interface{}{}
		}

		provider, _ := cfg["type"].(string)
		if provider == "" {
			// Some backups put the provider tag in the config's name field.
			provider, _ = cfg["name"].(string)
		}
		if provider == "" {
			r.logger.Printf("[WARN] Notification '%s' missing provider type, defaulting to %s", name, defaultProvider)
			provider = defaultProvider
		}

		payload := map[string]interface{}{}
		for k, v := range cfg {
			if !backupOnlyConfigKeys[k] {
				payload[k] = v
			}
		}
		payload["type"] = provider
		payload["name"] = name
		payload["isDefault"] = bool(notif.IsDefault)
		payload["applyExisting"] = applyExisting(cfg)

		if r.dryRun {
			r.logger.Printf("[DRY] Would create notification '%s' (provider: %s)", name, provider)
			idMap[notif.ID] = -notif.ID
			continue
		}

		res, err := p.call(func(s kuma.Session) (interface{}, error) {
			return s.AddNotification(payload)
		})
		if err != nil {
			return nil, err
		}
		newID, err := kuma.ExtractNotificationID(res)
		if err != nil {
			return nil, err
		}

		r.logger.Printf("[OK] Created notification '%s' -> id %d", name, newID)
		idMap[notif.ID] = newID
	}

	return idMap, nil
}

func applyExisting(cfg map[string]interface{}) bool {
	switch v := cfg["applyExisting"].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	}
	return false
}
