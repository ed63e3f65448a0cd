package backup

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads and decodes a backup export from path. Unreadable files and
// invalid JSON are reported as distinct wrapped errors; both are fatal to a
// restore run.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse backup file %s: %w", path, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("backup file %s: %w", path, err)
	}

	return &doc, nil
}

// Validate rejects documents that contain nothing to restore.
func (d *Document) Validate() error {
	if len(d.MonitorList) == 0 && len(d.NotificationList) == 0 {
		return fmt.Errorf("backup has no monitors or notifications")
	}
	return nil
}

// Groups returns the monitors that are grouping nodes, in backup order.
func (d *Document) Groups() []Monitor {
	var groups []Monitor
	for _, m := range d.MonitorList {
		if m.IsGroup() {
			groups = append(groups, m)
		}
	}
	return groups
}

// Checks returns the non-group monitors, in backup order.
func (d *Document) Checks() []Monitor {
	var checks []Monitor
	for _, m := range d.MonitorList {
		if !m.IsGroup() {
			checks = append(checks, m)
		}
	}
	return checks
}

// ParsedConfig decodes the notification's embedded provider configuration.
// The export format stores it either as an object or as a JSON-encoded
// string; both decode to the same map. An error here is recoverable: callers
// degrade to an empty configuration with a warning.
func (n *Notification) ParsedConfig() (map[string]interface{}, error) {
	if len(n.Config) == 0 {
		return map[string]interface{}{}, nil
	}

	raw := n.Config
	var embedded string
	if err := json.Unmarshal(raw, &embedded); err == nil {
		if embedded == "" {
			return map[string]interface{}{}, nil
		}
		raw = json.RawMessage(embedded)
	}

	var cfg map[string]interface{}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("invalid JSON in notification config: %w", err)
	}
	if cfg == nil {
		cfg = map[string]interface{}{}
	}
	return cfg, nil
}
