// Package dnsutil resolves the Akamai staging edge IP for a production
// domain. The production domain's CNAME chain ends in an Akamai edge domain
// (edgesuite.net, edgekey.net, ...); swapping that suffix for its -staging
// counterpart and resolving an A record yields the staging network IP.
package dnsutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"
)

// akamaiDomains identify a CNAME target as Akamai-managed. Order matters
// only for error messages.
var akamaiDomains = []string{
	"edgesuite.net",
	"edgekey.net",
	"akamaiedge.net",
	"akamaihd.net",
}

var (
	// ErrNotAkamai is returned when a domain's CNAME does not point into
	// Akamai's edge network.
	ErrNotAkamai = errors.New("CNAME target is not a recognized Akamai domain")
	// ErrNoCNAME is returned when the domain resolves but has no CNAME to
	// follow.
	ErrNoCNAME = errors.New("no CNAME record found")
)

var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// SanitizeDomain strips URL schemes and paths from user input, so both
// "https://www.example.com/page" and "www.example.com" normalize to the bare
// hostname.
func SanitizeDomain(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")
	s, _, _ = strings.Cut(s, "/")
	return s
}

// ValidateDomain reports whether s looks like a resolvable domain name.
func ValidateDomain(s string) bool {
	return domainPattern.MatchString(s)
}

// StagingCNAME derives the staging edge hostname from a production edge
// CNAME: "www.example.com.edgesuite.net" becomes
// "www.example.com.edgesuite-staging.net". ErrNotAkamai is returned when the
// CNAME does not end in a known Akamai domain.
func StagingCNAME(cname string) (string, error) {
	cname = strings.TrimSuffix(cname, ".")
	for _, ak := range akamaiDomains {
		if !strings.HasSuffix(cname, ak) {
			continue
		}
		service, tld, ok := strings.Cut(ak, ".")
		if !ok {
			continue
		}
		customer := strings.TrimSuffix(cname, ak)
		if customer != "" && !strings.HasSuffix(customer, ".") {
			customer += "."
		}
		return fmt.Sprintf("%s%s-staging.%s", customer, service, tld), nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotAkamai, cname)
}

// Resolver performs the CNAME and A lookups, optionally against explicit DNS
// servers instead of the system configuration.
type Resolver struct {
	logger func(format string, args ...any)

	// Seams for tests.
	lookupCNAME func(ctx context.Context, host string) (string, error)
	lookupIP    func(ctx context.Context, host string) ([]net.IP, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger installs a debug logger.
func WithLogger(logger func(format string, args ...any)) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithServers directs all queries to the given DNS servers (host or
// host:port) instead of the system resolver. An empty list keeps the system
// resolver.
func WithServers(servers []string) Option {
	return func(r *Resolver) {
		if len(servers) == 0 {
			return
		}
		nr := customResolver(servers)
		r.lookupCNAME = nr.LookupCNAME
		r.lookupIP = func(ctx context.Context, host string) ([]net.IP, error) {
			return nr.LookupIP(ctx, "ip4", host)
		}
	}
}

// NewResolver creates a resolver using the system DNS configuration unless
// overridden by options.
func NewResolver(opts ...Option) *Resolver {
	nr := net.DefaultResolver
	r := &Resolver{
		lookupCNAME: nr.LookupCNAME,
		lookupIP: func(ctx context.Context, host string) ([]net.IP, error) {
			return nr.LookupIP(ctx, "ip4", host)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// customResolver builds a net.Resolver whose queries go to the given
// servers, trying each in order until one accepts the connection.
func customResolver(servers []string) *net.Resolver {
	normalized := make([]string, 0, len(servers))
	for _, s := range servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		normalized = append(normalized, s)
	}

	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: 5 * time.Second}
			var lastErr error
			for _, server := range normalized {
				conn, err := d.DialContext(ctx, network, server)
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			if lastErr == nil {
				lastErr = errors.New("no DNS servers configured")
			}
			return nil, lastErr
		},
	}
}

func (r *Resolver) debugf(format string, args ...any) {
	if r.logger != nil {
		r.logger("[dns] "+format, args...)
	}
}

// AkamaiCNAME resolves domain's canonical name and verifies it points into
// Akamai's edge network.
func (r *Resolver) AkamaiCNAME(ctx context.Context, domain string) (string, error) {
	cname, err := r.lookupCNAME(ctx, domain)
	if err != nil {
		return "", fmt.Errorf("CNAME lookup for %s failed: %w", domain, err)
	}
	cname = strings.TrimSuffix(cname, ".")
	if cname == "" || strings.EqualFold(cname, domain) {
		return "", fmt.Errorf("%w for %s", ErrNoCNAME, domain)
	}
	for _, ak := range akamaiDomains {
		if strings.HasSuffix(cname, ak) {
			r.debugf("CNAME for %s: %s", domain, cname)
			return cname, nil
		}
	}
	return "", fmt.Errorf("%w: %s (for %s)", ErrNotAkamai, cname, domain)
}

// StagingIP resolves the Akamai staging IP for domain. It returns the IP and
// the staging CNAME it was resolved through.
func (r *Resolver) StagingIP(ctx context.Context, domain string) (ip, stagingCNAME string, err error) {
	base, err := r.AkamaiCNAME(ctx, domain)
	if err != nil {
		return "", "", err
	}

	stagingCNAME, err = StagingCNAME(base)
	if err != nil {
		return "", "", err
	}
	r.debugf("staging CNAME for %s: %s", domain, stagingCNAME)

	addrs, err := r.lookupIP(ctx, stagingCNAME)
	if err != nil {
		return "", stagingCNAME, fmt.Errorf("A lookup for %s failed: %w", stagingCNAME, err)
	}
	for _, a := range addrs {
		if v4 := a.To4(); v4 != nil {
			r.debugf("staging IP for %s: %s", domain, v4)
			return v4.String(), stagingCNAME, nil
		}
	}
	return "", stagingCNAME, fmt.Errorf("no A records found for %s", stagingCNAME)
}
