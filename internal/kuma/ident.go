package kuma

import (
	"fmt"
	"strconv"
)

// The add calls return different shapes depending on server and protocol
// version: a bare id, {monitorId: n}, {id: n}, or the created object nested
// under "monitor"/"notification"/"data". Rather than pinning one schema,
// ids are extracted by trying an ordered list of candidates.

var (
	monitorIDKeys       = []string{"monitorId", "monitorID", "id"}
	nestedMonitorIDKeys = []string{"id", "monitorId", "monitorID"}
	notificationIDKeys  = []string{"id", "notificationId", "notificationID"}
	monitorContainers   = []string{"monitor", "data"}
	notificationNesting = []string{"notification", "data"}
)

// MonitorLister is the part of a Session the name-based id fallback needs.
type MonitorLister interface {
	Monitors() ([]MonitorInfo, error)
}

// ExtractMonitorID pulls the new monitor id out of an add-monitor response.
// When no id field is present and both a name and a live session were
// supplied, it falls back to an exact-name lookup against the server's
// monitor list. Exhausting every strategy yields ErrIDNotFound.
func ExtractMonitorID(res interface{}, name string, lister MonitorLister) (int, error) {
	if id, ok := scalarID(res); ok {
		return id, nil
	}
	if m, ok := res.(map[string]interface{}); ok {
		if id, ok := mapID(m, monitorIDKeys); ok {
			return id, nil
		}
		for _, container := range monitorContainers {
			if nested, ok := m[container].(map[string]interface{}); ok {
				if id, ok := mapID(nested, nestedMonitorIDKeys); ok {
					return id, nil
				}
			}
		}
	}

	if name != "" && lister != nil {
		monitors, err := lister.Monitors()
		if err != nil {
			return 0, fmt.Errorf("id fallback lookup failed: %w", err)
		}
		for _, m := range monitors {
			if m.Name == name {
				return m.ID, nil
			}
		}
	}

	return 0, fmt.Errorf("%w: add monitor returned %v", ErrIDNotFound, res)
}

// ExtractNotificationID pulls the new channel id out of an add-notification
// response. There is no name fallback: the server has no notification list
// call cheap enough to justify one.
func ExtractNotificationID(res interface{}) (int, error) {
	if id, ok := scalarID(res); ok {
		return id, nil
	}
	if m, ok := res.(map[string]interface{}); ok {
		if id, ok := mapID(m, notificationIDKeys); ok {
			return id, nil
		}
		for _, container := range notificationNesting {
			if nested, ok := m[container].(map[string]interface{}); ok {
				if id, ok := mapID(nested, notificationIDKeys); ok {
					return id, nil
				}
			}
		}
	}
	return 0, fmt.Errorf("%w: add notification returned %v", ErrIDNotFound, res)
}

// scalarID converts a bare numeric or string response into an id.
func scalarID(res interface{}) (int, bool) {
	switch x := res.(type) {
	case float64:
		return int(x), true
	case int:
		return x, true
	case string:
		if id, err := strconv.Atoi(x); err == nil {
			return id, true
		}
	}
	return 0, false
}

// mapID tries the candidate keys in order against one decoded JSON object.
func mapID(m map[string]interface{}, keys []string) (int, bool) {
	for _, k := range keys {
		v, present := m[k]
		if !present || v == nil {
			continue
		}
		if id, ok := scalarID(v); ok {
			return id, true
		}
	}
	return 0, false
}
