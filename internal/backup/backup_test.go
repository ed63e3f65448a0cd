package backup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempBackup(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempBackup(t, `{
		"version": "1.23.0",
		"monitorList": [
			{"id": 1, "type": "group", "name": "Infra", "parent": null},
			{"id": 2, "type": "http", "name": "Website", "parent": 1, "url": "https://example.com"}
		],
		"notificationList": [
			{"id": 3, "name": "Mail", "isDefault": true, "config": "{\"type\":\"smtp\"}"}
		]
	}`)

	doc, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, doc.MonitorList, 2)
	assert.Len(t, doc.NotificationList, 1)
	assert.Len(t, doc.Groups(), 1)
	assert.Len(t, doc.Checks(), 1)
	assert.Equal(t, "Website", doc.Checks()[0].Name)
	require.NotNil(t, doc.Checks()[0].Parent)
	assert.Equal(t, 1, *doc.Checks()[0].Parent)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read backup file")
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := writeTempBackup(t, `{not json`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse backup file")
}

func TestLoad_EmptyDocument(t *testing.T) {
	path := writeTempBackup(t, `{"monitorList": [], "notificationList": []}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no monitors or notifications")
}

func TestLoad_IgnoresUnknownFields(t *testing.T) {
	path := writeTempBackup(t, `{
		"monitorList": [{"id": 1, "type": "http", "name": "A", "someFutureField": {"x": 1}}],
		"notificationList": []
	}`)
	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "A", doc.MonitorList[0].Name)
}

func TestNormalizeNotificationIDs(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []int
	}{
		{
			name: "map of truthy flags",
			in:   map[string]interface{}{"3": true, "5": false, "7": true},
			want: []int{3, 7},
		},
		{
			name: "list of numbers",
			in:   []interface{}{float64(3), float64(7)},
			want: []int{3, 7},
		},
		{
			name: "nil",
			in:   nil,
			want: []int{},
		},
		{
			name: "map with numeric flags",
			in:   map[string]interface{}{"2": float64(1), "4": float64(0)},
			want: []int{2},
		},
		{
			name: "non-numeric keys are dropped",
			in:   map[string]interface{}{"x": true, "9": true},
			want: []int{9},
		},
		{
			name: "unrecognized shape",
			in:   "whatever",
			want: []int{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeNotificationIDs(tt.in))
		})
	}
}

func TestIDListUnmarshal(t *testing.T) {
	var m Monitor
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"notificationIDList":{"3":true,"5":false,"7":true}}`), &m))
	assert.Equal(t, IDList{3, 7}, m.NotificationIDList)

	var m2 Monitor
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"notificationIDList":[3,7]}`), &m2))
	assert.Equal(t, IDList{3, 7}, m2.NotificationIDList)

	var m3 Monitor
	require.NoError(t, json.Unmarshal([]byte(`{"id":1}`), &m3))
	assert.Empty(t, m3.NotificationIDList)
}

func TestBoolUnmarshal(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`"true"`, true},
		{`"yes"`, true},
		{`"no"`, false},
		{`null`, false},
	}
	for _, tt := range tests {
		var b Bool
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &b), "input %s", tt.raw)
		assert.Equal(t, tt.want, bool(b), "input %s", tt.raw)
	}
}

func TestMonitorIsActive(t *testing.T) {
	var m Monitor
	assert.True(t, m.IsActive(), "absent active flag defaults to true")

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"active":0}`), &m))
	assert.False(t, m.IsActive())

	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"active":1}`), &m))
	assert.True(t, m.IsActive())
}

func TestDisplayName(t *testing.T) {
	m := Monitor{ID: 4, Type: "group", Name: "  "}
	assert.Equal(t, "Group 4", m.DisplayName())

	m = Monitor{ID: 4, Type: "http"}
	assert.Equal(t, "Unnamed", m.DisplayName())

	m = Monitor{ID: 4, Type: "http", Name: " Website "}
	assert.Equal(t, "Website", m.DisplayName())

	n := Notification{ID: 9}
	assert.Equal(t, "Imported 9", n.DisplayName())
}

func TestParsedConfig(t *testing.T) {
	t.Run("object form", func(t *testing.T) {
		n := Notification{Config: json.RawMessage(`{"type":"smtp","smtpHost":"mail.example.com"}`)}
		cfg, err := n.ParsedConfig()
		require.NoError(t, err)
		assert.Equal(t, "smtp", cfg["type"])
		assert.Equal(t, "mail.example.com", cfg["smtpHost"])
	})

	t.Run("string-encoded form", func(t *testing.T) {
		n := Notification{Config: json.RawMessage(`"{\"type\":\"telegram\"}"`)}
		cfg, err := n.ParsedConfig()
		require.NoError(t, err)
		assert.Equal(t, "telegram", cfg["type"])
	})

	t.Run("absent config", func(t *testing.T) {
		n := Notification{}
		cfg, err := n.ParsedConfig()
		require.NoError(t, err)
		assert.Empty(t, cfg)
	})

	t.Run("invalid JSON degrades to error", func(t *testing.T) {
		n := Notification{Config: json.RawMessage(`"{broken"`)}
		_, err := n.ParsedConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON")
	})
}
