package restore

import (
	"log"
	"strings"

	"github.com/dean-jl/kuma-restore/internal/backup"
	"github.com/miekg/dns"
)

// knownMonitorTypes is the set of backup type tags the server's add call
// accepts. Anything else is skipped with a warning rather than submitted.
var knownMonitorTypes = map[string]bool{
	"group": true, "http": true, "ping": true, "dns": true, "port": true,
	"keyword": true, "json-query": true, "grpc-keyword": true, "docker": true,
	"real-browser": true, "push": true, "steam": true, "gamedig": true,
	"mqtt": true, "kafka-producer": true, "sqlserver": true, "postgres": true,
	"mysql": true, "mongodb": true, "radius": true, "redis": true,
	"tailscale-ping": true,
}

// httpFamilyTypes share the HTTP request settings (url, TLS, auth, matching).
var httpFamilyTypes = map[string]bool{
	"http": true, "keyword": true, "json-query": true,
	"real-browser": true, "push": true,
}

// validAuthMethods are the authMethod values the server accepts; anything
// else falls back to no authentication.
var validAuthMethods = map[string]bool{
	"basic": true, "ntlm": true, "mtls": true, "oauth2-cc": true,
}

// dropKeys are fields present in backups that the add call rejects.
var dropKeys = map[string]bool{
	"weight":         true,
	"resendInterval": true,
	"description":    true,
}

func mapAuthMethod(method string) string {
	if validAuthMethods[method] {
		return method
	}
	return ""
}

// dnsRecordType validates a backup's DNS record type against the registered
// record types and falls back to A for anything unrecognized.
func dnsRecordType(raw string, name string, logger *log.Logger) string {
	rt := strings.ToUpper(strings.TrimSpace(raw))
	if rt == "" {
		return "A"
	}
	if _, ok := dns.StringToType[rt]; !ok {
		logger.Printf("[WARN] Monitor '%s': unknown DNS record type %q, using A", name, raw)
		return "A"
	}
	return rt
}

// buildMonitorPayload assembles the add-monitor call arguments for one
// non-group monitor: the common base plus the fields its type understands,
// with parent and notification references already rewritten to server ids.
func buildMonitorPayload(m *backup.Monitor, typ string, parent *int, notifIDs []int, logger *log.Logger) map[string]interface{} {
	payload := map[string]interface{}{
		"type":          typ,
		"name":          m.DisplayName(),
		"parent":        optionalInt(parent),
		"interval":      intOr(m.Interval, 60),
		"retryInterval": intOr(m.RetryInterval, 60),
		"maxretries":    intOr(m.MaxRetries, 0),
		"upsideDown":    bool(m.UpsideDown),
		"timeout":       intOr(m.Timeout, 48),
	}
	if len(notifIDs) > 0 {
		payload["notificationIDList"] = notifIDs
	}

	if httpFamilyTypes[typ] {
		payload["method"] = stringOr(m.Method, "GET")
		payload["ignoreTls"] = bool(m.IgnoreTLS)
		payload["maxredirects"] = intOr(m.MaxRedirects, 10)
		payload["httpBodyEncoding"] = stringOr(m.HTTPBodyEncoding, "json")
		payload["invertKeyword"] = bool(m.InvertKeyword)
		payload["authMethod"] = mapAuthMethod(m.AuthMethod)
		putString(payload, "url", m.URL)
		putString(payload, "headers", m.Headers)
		putString(payload, "body", m.Body)
		putString(payload, "keyword", m.Keyword)
		putString(payload, "jsonPath", m.JSONPath)
		putString(payload, "expectedValue", m.ExpectedValue)
		putString(payload, "basic_auth_user", m.BasicAuthUser)
		putString(payload, "basic_auth_pass", m.BasicAuthPass)
		putString(payload, "oauth_client_id", m.OAuthClientID)
		putString(payload, "oauth_client_secret", m.OAuthClientSecret)
		putString(payload, "oauth_token_url", m.OAuthTokenURL)
		putString(payload, "oauth_scopes", m.OAuthScopes)
		putString(payload, "oauth_auth_method", m.OAuthAuthMethod)
		putString(payload, "tlsCa", m.TLSCa)
		putString(payload, "tlsCert", m.TLSCert)
		putString(payload, "tlsKey", m.TLSKey)
		if len(m.AcceptedStatusCodes) > 0 {
			payload["accepted_statuscodes"] = m.AcceptedStatusCodes
		}
	}

	switch typ {
	case "ping":
		putString(payload, "hostname", m.Hostname)
		payload["packetSize"] = intOr(m.PacketSize, 56)
	case "dns":
		putString(payload, "hostname", m.Hostname)
		payload["port"] = intOr(m.Port, 53)
		payload["dns_resolve_server"] = stringOr(m.DNSResolveServer, "1.1.1.1")
		payload["dns_resolve_type"] = dnsRecordType(m.DNSResolveType, m.DisplayName(), logger)
	case "port":
		putString(payload, "hostname", m.Hostname)
		if m.Port != nil {
			payload["port"] = *m.Port
		}
	}

	scrubPayload(payload)
	return payload
}

// scrubPayload removes keys the server rejects and any value left absent.
func scrubPayload(payload map[string]interface{}) {
	for k, v := range payload {
		if dropKeys[k] || v == nil {
			delete(payload, k)
		}
	}
}

func putString(payload map[string]interface{}, key, value string) {
	if value != "" {
		payload[key] = value
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func optionalInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
