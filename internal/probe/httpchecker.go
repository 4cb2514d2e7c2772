package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/hamed0406/healthcheck/internal/domain"
)

const (
	DefaultTimeout = 10 * time.Second
	maxDrainBytes  = 1 << 20
)

type HTTPChecker struct {
	Client  *http.Client
	Timeout time.Duration

	// SlowThreshold marks otherwise healthy responses as down when the
	// latency reaches it. Zero disables the rule.
	SlowThreshold time.Duration

	// DNSDiagnostics appends a resolver classification to transport errors.
	DNSDiagnostics bool
	DNS            DNSChecker
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		// per-request timeout comes from the context, not the client
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		Timeout: timeout,
	}
}

func (h *HTTPChecker) Check(ctx context.Context, ep domain.Endpoint) domain.Outcome {
	out := domain.Outcome{Endpoint: ep.Name, Domain: ep.Domain()}

	reqCtx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	method := ep.Method
	if method == "" {
		method = http.MethodGet
	}
	var body io.Reader
	if ep.Body != "" {
		body = strings.NewReader(ep.Body)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(reqCtx, method, ep.URL, body)
	if err != nil {
		out.LatencyMS = millis(time.Since(start))
		out.CheckedAt = time.Now().UTC()
		out.Error = "bad request: " + err.Error()
		out.DownReason = "transport error"
		return out
	}
	for k, v := range ep.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start)
	out.LatencyMS = millis(latency)
	out.CheckedAt = time.Now().UTC()
	if err != nil {
		out.Error = describeError(err, h.Timeout)
		out.DownReason = "transport error"
		if h.DNSDiagnostics && ctx.Err() == nil {
			dns := h.DNS.Check(ctx, ep.Hostname())
			out.Error = strings.TrimSpace(fmt.Sprintf("%s dns=%s", out.Error, dns.Class))
		}
		return out
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()

	code := resp.StatusCode
	out.StatusCode = &code
	switch {
	case !domain.IsUpStatus(code):
		out.DownReason = fmt.Sprintf("status %d not in 200-399", code)
	case h.SlowThreshold > 0 && latency >= h.SlowThreshold:
		out.DownReason = fmt.Sprintf("latency >= %d ms", h.SlowThreshold.Milliseconds())
	default:
		out.Up = true
	}
	return out
}

// Close releases idle keep-alive connections.
func (h *HTTPChecker) Close() {
	if t, ok := h.Client.Transport.(*http.Transport); ok {
		t.CloseIdleConnections()
	}
}

func millis(d time.Duration) float64 {
	return d.Seconds() * 1000
}

// describeError turns a client error into a short diagnostic.
func describeError(err error, timeout time.Duration) string {
	var (
		dnsErr  *net.DNSError
		certErr *tls.CertificateVerificationError
		unknown x509.UnknownAuthorityError
		host    x509.HostnameError
		netErr  net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("timeout after %s", timeout)
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.As(err, &dnsErr):
		return "dns: " + dnsErr.Err
	case errors.Is(err, syscall.ECONNREFUSED):
		return "connection refused"
	case errors.Is(err, syscall.ECONNRESET):
		return "connection reset"
	case errors.As(err, &certErr), errors.As(err, &unknown), errors.As(err, &host):
		return "tls: " + rootCause(err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Sprintf("timeout after %s", timeout)
	}
	return rootCause(err)
}

func rootCause(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err.Error()
	}
	return err.Error()
}
