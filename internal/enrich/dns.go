package enrich

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"

	"github.com/gianlucabassani/browsint/internal/model"
)

// DNSResult holds the standard record sets for a domain. Empty sets are
// normal; a domain with no MX simply has none.
type DNSResult struct {
	A     []string `json:"a,omitempty"`
	AAAA  []string `json:"aaaa,omitempty"`
	MX    []string `json:"mx,omitempty"`
	NS    []string `json:"ns,omitempty"`
	TXT   []string `json:"txt,omitempty"`
	CNAME string   `json:"cname,omitempty"`
}

// DNSAdapter resolves the common record types for a domain through the
// system resolver. Keyless.
type DNSAdapter struct {
	resolver *net.Resolver
}

// NewDNSAdapter creates the DNS adapter. A nil resolver uses the default.
func NewDNSAdapter(resolver *net.Resolver) *DNSAdapter {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &DNSAdapter{resolver: resolver}
}

// Name implements Adapter.
func (a *DNSAdapter) Name() string { return "dns" }

// Accepts implements Adapter.
func (a *DNSAdapter) Accepts(t model.TargetType) bool { return t == model.TargetDomain }

// Enabled implements Adapter.
func (a *DNSAdapter) Enabled() bool { return true }

// Query looks up A, AAAA, MX, NS, TXT, and CNAME records. A missing record
// type is not an error; a resolver-level failure on the address lookup is
// transient, and NXDOMAIN across the board is a permanent error.
func (a *DNSAdapter) Query(ctx context.Context, q model.EnrichmentQuery) (any, error) {
	domain := q.Value
	result := &DNSResult{}

	ips, err := a.resolver.LookupIPAddr(ctx, domain)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			switch {
			case dnsErr.IsNotFound:
				return nil, fmt.Errorf("dns: %s does not resolve", domain)
			case dnsErr.IsTimeout || dnsErr.IsTemporary:
				return nil, &TransientError{Err: err}
			}
		}
		return nil, &TransientError{Err: err}
	}
	for _, ip := range ips {
		if v4 := ip.IP.To4(); v4 != nil {
			result.A = append(result.A, v4.String())
		} else {
			result.AAAA = append(result.AAAA, ip.IP.String())
		}
	}
	sort.Strings(result.A)
	sort.Strings(result.AAAA)

	// The remaining record types are best effort: their absence or failure
	// never fails the lookup once the domain is known to exist.
	if mxs, err := a.resolver.LookupMX(ctx, domain); err == nil {
		for _, mx := range mxs {
			result.MX = append(result.MX, fmt.Sprintf("%d %s", mx.Pref, mx.Host))
		}
	}
	if nss, err := a.resolver.LookupNS(ctx, domain); err == nil {
		for _, ns := range nss {
			result.NS = append(result.NS, ns.Host)
		}
		sort.Strings(result.NS)
	}
	if txts, err := a.resolver.LookupTXT(ctx, domain); err == nil {
		result.TXT = txts
	}
	if cname, err := a.resolver.LookupCNAME(ctx, domain); err == nil && cname != domain+"." {
		result.CNAME = cname
	}

	return result, nil
}
