package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNS classes reported by CheckDNS.
const (
	DNSResolves    = "RESOLVES"
	DNSNXDomain    = "NXDOMAIN"
	DNSNoARecord   = "NO_A_RECORD"
	DNSServfail    = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName = "INVALID_NAME"
)

const defaultDNSTimeout = 3 * time.Second

// Resolver is the subset of *net.Resolver used for diagnostics.
type Resolver interface {
	LookupIP(ctx context.Context, network, host string) ([]net.IP, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
}

type DNSStatus struct {
	Domain        string
	IPs           []net.IP
	CNAME         string
	Nameservers   []string
	Class         string
	ResolverError string
}

// DNSChecker classifies why a host may be unreachable at the resolver level.
type DNSChecker struct {
	Resolver Resolver      // nil uses net.DefaultResolver
	Timeout  time.Duration // 0 uses 3s
}

// CheckDNS runs a DNSChecker with the system resolver.
func CheckDNS(ctx context.Context, host string) DNSStatus {
	return DNSChecker{}.Check(ctx, host)
}

func (d DNSChecker) Check(ctx context.Context, host string) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(host)}
	if s.Domain == "" || strings.Contains(s.Domain, "://") {
		s.Class = DNSInvalidName
		return s
	}
	if ip := net.ParseIP(s.Domain); ip != nil {
		s.IPs = []net.IP{ip}
		s.Class = DNSResolves
		return s
	}

	r := d.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ips, ipErr := r.LookupIP(ctx, "ip", s.Domain)
	s.IPs = ips
	if ipErr != nil {
		s.ResolverError = ipErr.Error()
	}
	if cname, err := r.LookupCNAME(ctx, s.Domain); err == nil && !strings.EqualFold(cname, s.Domain+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}
	if ns, err := r.LookupNS(ctx, s.Domain); err == nil {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
	}
	s.Class = classifyDNS(len(s.IPs) > 0, len(s.Nameservers) > 0, ipErr)
	return s
}

// classifyDNS orders the checks so a transient resolver failure is never
// reported as a missing record.
func classifyDNS(hasAddr, hasNS bool, lookupErr error) string {
	var dnsErr *net.DNSError
	isDNSErr := errors.As(lookupErr, &dnsErr)
	switch {
	case hasAddr:
		return DNSResolves
	case isDNSErr && !dnsErr.IsNotFound && (dnsErr.IsTemporary || dnsErr.Timeout()):
		return DNSServfail
	case hasNS:
		return DNSNoARecord
	case lookupErr == nil, isDNSErr && dnsErr.IsNotFound:
		return DNSNXDomain
	default:
		return DNSServfail
	}
}
