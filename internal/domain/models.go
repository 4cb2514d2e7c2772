package domain

import (
	"net/url"
	"time"
)

// Endpoint is one validated probe target. It is never mutated after loading.
type Endpoint struct {
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
}

// Domain returns the aggregation key for the endpoint: the URL host,
// including an explicit port when one is present.
func (e Endpoint) Domain() string {
	return HostOf(e.URL)
}

// Hostname returns the URL host without a port, for resolver lookups.
func (e Endpoint) Hostname() string {
	u, err := url.Parse(e.URL)
	if err != nil || u.Hostname() == "" {
		return e.URL
	}
	return u.Hostname()
}

// HostOf extracts host[:port] from a raw URL, falling back to the raw string.
func HostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// Outcome is the result of one probe of one endpoint in one round.
type Outcome struct {
	Endpoint   string    `json:"endpoint"`
	Domain     string    `json:"domain"`
	Up         bool      `json:"up"`
	StatusCode *int      `json:"status_code"` // nil when no response was received
	LatencyMS  float64   `json:"latency_ms"`
	Error      string    `json:"error,omitempty"`       // transport failures only
	DownReason string    `json:"down_reason,omitempty"` // why Up is false
	CheckedAt  time.Time `json:"checked_at"`
}

// Status returns the HTTP status or 0 when the request never completed.
func (o Outcome) Status() int {
	if o.StatusCode == nil {
		return 0
	}
	return *o.StatusCode
}

// IsUpStatus reports whether an HTTP status counts as available.
func IsUpStatus(code int) bool {
	return code >= 200 && code < 400
}
