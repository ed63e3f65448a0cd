package kuma

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister struct {
	monitors []MonitorInfo
	err      error
}

func (l *staticLister) Monitors() ([]MonitorInfo, error) {
	return l.monitors, l.err
}

func TestExtractMonitorID(t *testing.T) {
	tests := []struct {
		name string
		res  interface{}
		want int
	}{
		{"monitorId key", map[string]interface{}{"monitorId": float64(42)}, 42},
		{"monitorID key", map[string]interface{}{"monitorID": float64(13)}, 13},
		{"plain id key", map[string]interface{}{"id": float64(5)}, 5},
		{"nested under data", map[string]interface{}{"data": map[string]interface{}{"id": float64(7)}}, 7},
		{"nested under monitor", map[string]interface{}{"monitor": map[string]interface{}{"monitorId": float64(8)}}, 8},
		{"bare number", float64(9), 9},
		{"numeric string", "11", 11},
		{"nil candidate skipped", map[string]interface{}{"monitorId": nil, "id": float64(3)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExtractMonitorID(tt.res, "", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestExtractMonitorID_NameFallback(t *testing.T) {
	lister := &staticLister{monitors: []MonitorInfo{
		{ID: 3, Name: "Other", Type: "http"},
		{ID: 6, Name: "Website", Type: "http"},
		{ID: 9, Name: "Website", Type: "http"},
	}}

	id, err := ExtractMonitorID(map[string]interface{}{"ok": true}, "Website", lister)
	require.NoError(t, err)
	assert.Equal(t, 6, id, "first exact-name match wins")
}

func TestExtractMonitorID_NotFound(t *testing.T) {
	_, err := ExtractMonitorID(map[string]interface{}{}, "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIDNotFound))

	// Name given but no match on the server.
	lister := &staticLister{monitors: []MonitorInfo{{ID: 1, Name: "Other"}}}
	_, err = ExtractMonitorID(map[string]interface{}{"ok": true}, "Website", lister)
	assert.True(t, errors.Is(err, ErrIDNotFound))
}

func TestExtractMonitorID_ListerError(t *testing.T) {
	lister := &staticLister{err: errors.New("boom")}
	_, err := ExtractMonitorID(map[string]interface{}{"ok": true}, "Website", lister)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrIDNotFound))
}

func TestExtractNotificationID(t *testing.T) {
	tests := []struct {
		name string
		res  interface{}
		want int
	}{
		{"plain id", map[string]interface{}{"id": float64(4)}, 4},
		{"notificationId key", map[string]interface{}{"notificationId": float64(12)}, 12},
		{"nested under notification", map[string]interface{}{"notification": map[string]interface{}{"id": float64(2)}}, 2},
		{"nested under data", map[string]interface{}{"data": map[string]interface{}{"notificationID": float64(15)}}, 15},
		{"bare number", float64(21), 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ExtractNotificationID(tt.res)
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}

	_, err := ExtractNotificationID(map[string]interface{}{"ok": true})
	assert.True(t, errors.Is(err, ErrIDNotFound))

	_, err = ExtractNotificationID(nil)
	assert.True(t, errors.Is(err, ErrIDNotFound))
}
