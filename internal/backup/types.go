// Package backup provides loading and decoding of Uptime Kuma backup exports.
package backup

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Document is the top-level shape of an Uptime Kuma backup JSON export.
// Groups are monitors with type "group"; notifications carry their provider
// settings in an embedded config payload.
type Document struct {
	Version          string         `json:"version,omitempty"`
	MonitorList      []Monitor      `json:"monitorList"`
	NotificationList []Notification `json:"notificationList"`
}

// Monitor is a single monitor record as stored in a backup. IDs and parent
// references are backup-local and never match ids on the target server.
// Pointer fields distinguish "absent" (use the server default) from an
// explicit zero.
type Monitor struct {
	ID     int    `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Parent *int   `json:"parent"`
	Active *Bool  `json:"active"`

	Interval           *int   `json:"interval"`
	RetryInterval      *int   `json:"retryInterval"`
	MaxRetries         *int   `json:"maxretries"`
	UpsideDown         Bool   `json:"upsideDown"`
	Timeout            *int   `json:"timeout"`
	NotificationIDList IDList `json:"notificationIDList"`

	// HTTP-family fields.
	URL                 string   `json:"url"`
	Method              string   `json:"method"`
	IgnoreTLS           Bool     `json:"ignoreTls"`
	MaxRedirects        *int     `json:"maxredirects"`
	AcceptedStatusCodes []string `json:"accepted_statuscodes"`
	HTTPBodyEncoding    string   `json:"httpBodyEncoding"`
	Headers             string   `json:"headers"`
	Body                string   `json:"body"`
	Keyword             string   `json:"keyword"`
	InvertKeyword       Bool     `json:"invertKeyword"`
	JSONPath            string   `json:"jsonPath"`
	ExpectedValue       string   `json:"expectedValue"`
	AuthMethod          string   `json:"authMethod"`
	BasicAuthUser       string   `json:"basic_auth_user"`
	BasicAuthPass       string   `json:"basic_auth_pass"`
	OAuthClientID       string   `json:"oauth_client_id"`
	OAuthClientSecret   string   `json:"oauth_client_secret"`
	OAuthTokenURL       string   `json:"oauth_token_url"`
	OAuthScopes         string   `json:"oauth_scopes"`
	OAuthAuthMethod     string   `json:"oauth_auth_method"`
	TLSCa               string   `json:"tlsCa"`
	TLSCert             string   `json:"tlsCert"`
	TLSKey              string   `json:"tlsKey"`

	// Ping, DNS and port fields.
	Hostname         string `json:"hostname"`
	PacketSize       *int   `json:"packetSize"`
	Port             *int   `json:"port"`
	DNSResolveServer string `json:"dns_resolve_server"`
	DNSResolveType   string `json:"dns_resolve_type"`
}

// IsGroup reports whether the monitor is a grouping node rather than a check.
func (m *Monitor) IsGroup() bool {
	return m.Type == "group"
}

// IsActive reports the backup's active flag, defaulting to true when absent.
func (m *Monitor) IsActive() bool {
	if m.Active == nil {
		return true
	}
	return bool(*m.Active)
}

// DisplayName returns a non-empty name for logging and payloads.
func (m *Monitor) DisplayName() string {
	name := strings.TrimSpace(m.Name)
	if name != "" {
		return name
	}
	if m.IsGroup() {
		return fmt.Sprintf("Group %d", m.ID)
	}
	return "Unnamed"
}

// Notification is a notification channel record from a backup. Config is the
// raw JSON as exported: older backups store it as a JSON-encoded string,
// newer ones as an object with a provider-type field.
type Notification struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	IsDefault Bool            `json:"isDefault"`
	Config    json.RawMessage `json:"config"`
}

// DisplayName returns a non-empty channel name for logging and payloads.
func (n *Notification) DisplayName() string {
	name := strings.TrimSpace(n.Name)
	if name != "" {
		return name
	}
	return fmt.Sprintf("Imported %d", n.ID)
}

// Bool decodes the loose boolean encodings found in backups: true/false,
// 0/1, and strings like "true", "yes" or "on".
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = Bool(truthy(v))
	return nil
}

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "y", "on":
			return true
		}
	}
	return false
}

// IDList decodes a notification selection in either of the two backup forms:
// a list of ids, or a map of id -> truthy flag.
type IDList []int

func (l *IDList) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*l = IDList(NormalizeNotificationIDs(v))
	return nil
}

// NormalizeNotificationIDs converts a decoded notification selection into a
// list of integer ids. Map form keeps only keys with truthy values, sorted
// ascending for determinism; nil and unrecognized shapes yield an empty list.
func NormalizeNotificationIDs(v interface{}) []int {
	ids := []int{}
	switch x := v.(type) {
	case map[string]interface{}:
		for k, flag := range x {
			if !truthy(flag) {
				continue
			}
			id, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		sort.Ints(ids)
	case []interface{}:
		for _, e := range x {
			switch n := e.(type) {
			case float64:
				ids = append(ids, int(n))
			case string:
				if id, err := strconv.Atoi(n); err == nil {
					ids = append(ids, id)
				}
			}
		}
	}
	return ids
}
