package enrich

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/gianlucabassani/browsint/internal/model"
)

// ianaWhois is the root WHOIS server; it answers every TLD with a referral
// to the registry's server.
const ianaWhois = "whois.iana.org:43"

// maxWhoisReferrals bounds the referral chain (IANA -> registry ->
// registrar is the longest legitimate chain).
const maxWhoisReferrals = 2

// maxWhoisResponse caps how much is read from one WHOIS server.
const maxWhoisResponse = 512 * 1024

// WhoisRecord is the raw answer of one WHOIS server.
type WhoisRecord struct {
	// Server is the WHOIS server that answered.
	Server string `json:"server"`

	// Raw is the verbatim response text.
	Raw string `json:"raw"`
}

// WhoisResult is the full referral chain for one domain.
type WhoisResult struct {
	Records []WhoisRecord `json:"records"`
}

// WhoisAdapter queries WHOIS over TCP port 43, following registry and
// registrar referrals. It needs no API key.
type WhoisAdapter struct {
	dialer *net.Dialer
	server string
}

// WhoisOption configures a WhoisAdapter.
type WhoisOption func(*WhoisAdapter)

// WithWhoisServer overrides the root WHOIS server (host:port).
func WithWhoisServer(addr string) WhoisOption {
	return func(a *WhoisAdapter) {
		a.server = addr
	}
}

// NewWhoisAdapter creates the WHOIS adapter.
func NewWhoisAdapter(opts ...WhoisOption) *WhoisAdapter {
	a := &WhoisAdapter{
		dialer: &net.Dialer{Timeout: 10 * time.Second},
		server: ianaWhois,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements Adapter.
func (a *WhoisAdapter) Name() string { return "whois" }

// Accepts implements Adapter. WHOIS profiles domains only.
func (a *WhoisAdapter) Accepts(t model.TargetType) bool { return t == model.TargetDomain }

// Enabled implements Adapter. WHOIS is keyless, always on.
func (a *WhoisAdapter) Enabled() bool { return true }

// Query resolves the domain's WHOIS chain: ask the root server, follow the
// "refer:" or "Registrar WHOIS Server:" pointer, up to maxWhoisReferrals
// hops. Every hop's raw text is kept.
func (a *WhoisAdapter) Query(ctx context.Context, q model.EnrichmentQuery) (any, error) {
	result := &WhoisResult{}
	server := a.server

	for hop := 0; hop <= maxWhoisReferrals; hop++ {
		raw, err := a.ask(ctx, server, q.Value)
		if err != nil {
			if len(result.Records) > 0 {
				// A dead referral target does not invalidate what the
				// earlier servers already said.
				return result, nil
			}
			return nil, err
		}
		result.Records = append(result.Records, WhoisRecord{Server: server, Raw: raw})

		next := referralServer(raw)
		if next == "" || next == server {
			break
		}
		server = next
	}
	return result, nil
}

// ask performs one WHOIS exchange: connect, send the domain, read the
// response until EOF.
func (a *WhoisAdapter) ask(ctx context.Context, server, domain string) (string, error) {
	conn, err := a.dialer.DialContext(ctx, "tcp", server)
	if err != nil {
		return "", &TransientError{Err: fmt.Errorf("whois %s: %w", server, err)}
	}
	defer conn.Close() //nolint:errcheck // read side already consumed

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(10 * time.Second))
	}

	if _, err := fmt.Fprintf(conn, "%s\r\n", domain); err != nil {
		return "", &TransientError{Err: fmt.Errorf("whois %s: %w", server, err)}
	}

	raw, err := io.ReadAll(io.LimitReader(conn, maxWhoisResponse))
	if err != nil {
		return "", &TransientError{Err: fmt.Errorf("whois %s: %w", server, err)}
	}
	return string(raw), nil
}

// referralServer extracts the next WHOIS server from a response, or "".
func referralServer(raw string) string {
	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lower := strings.ToLower(line)

		var value string
		switch {
		case strings.HasPrefix(lower, "refer:"):
			value = strings.TrimSpace(line[len("refer:"):])
		case strings.HasPrefix(lower, "registrar whois server:"):
			value = strings.TrimSpace(line[len("registrar whois server:"):])
		case strings.HasPrefix(lower, "whois server:"):
			value = strings.TrimSpace(line[len("whois server:"):])
		default:
			continue
		}

		value = strings.TrimPrefix(value, "whois://")
		if value == "" {
			continue
		}
		if !strings.Contains(value, ":") {
			value += ":43"
		}
		return value
	}
	return ""
}
