package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"mcpi/pkg/logging"
)

// Resolver failure modes, distinguishable with errors.Is so callers can
// branch on no-record vs malformed vs unreachable.
var (
	// ErrNoRecord means the domain publishes no _mcp TXT record.
	ErrNoRecord = errors.New("no MCP TXT record")
	// ErrMalformedRecord means a TXT record exists but lacks a parseable url=.
	ErrMalformedRecord = errors.New("malformed MCP TXT record")
	// ErrInvalidURL means the advertised discovery URL does not parse.
	ErrInvalidURL = errors.New("invalid discovery URL")
	// ErrUnreachable means the discovery endpoint could not be fetched.
	ErrUnreachable = errors.New("discovery endpoint unreachable")
)

// Record is the parsed DNS TXT value pointing at a discovery document. It is
// ephemeral: one per discovery attempt, discarded once the WebSocket URL is
// derived.
type Record struct {
	Version      string
	DiscoveryURL string
}

// LookupTXTFunc resolves TXT records for a fully qualified name. It exists
// so tests can inject a fake lookup.
type LookupTXTFunc func(ctx context.Context, name string) ([]string, error)

// Resolver locates MCPI services for a domain.
type Resolver struct {
	lookupTXT LookupTXTFunc
	client    *http.Client
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLookupTXT replaces the DNS lookup, typically with a fake in tests.
func WithLookupTXT(fn LookupTXTFunc) Option {
	return func(r *Resolver) { r.lookupTXT = fn }
}

// WithHTTPClient replaces the HTTP client used to fetch discovery documents.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) { r.client = client }
}

// NewResolver builds a resolver backed by the system DNS resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		lookupTXT: net.DefaultResolver.LookupTXT,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve queries the _mcp.<domain> TXT record and parses the first value
// that carries a discovery URL.
func (r *Resolver) Resolve(ctx context.Context, domain string) (*Record, error) {
	name := fmt.Sprintf("_mcp.%s", domain)
	logging.Debug("Discovery", "Looking up TXT record %s", name)

	values, err := r.lookupTXT(ctx, name)
	if err != nil || len(values) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoRecord, name)
	}

	var lastErr error
	for _, value := range values {
		record, err := ParseTXTRecord(value)
		if err != nil {
			lastErr = err
			continue
		}
		logging.Debug("Discovery", "Found record for %s: v=%s url=%s", domain, record.Version, record.DiscoveryURL)
		return record, nil
	}
	return nil, lastErr
}

var (
	versionPattern = regexp.MustCompile(`(?:^|\s)v=(\S+)`)
	urlPattern     = regexp.MustCompile(`(?:^|\s)url=(\S+)`)
)

// ParseTXTRecord extracts version and discovery URL from one TXT value of
// the form "v=<version> url=<url>". A missing version defaults to mcp1.
func ParseTXTRecord(value string) (*Record, error) {
	txt := strings.Trim(strings.TrimSpace(value), `"`)

	version := "mcp1"
	if m := versionPattern.FindStringSubmatch(txt); m != nil {
		version = m[1]
	}

	m := urlPattern.FindStringSubmatch(txt)
	if m == nil {
		return nil, fmt.Errorf("%w: no url= in %q", ErrMalformedRecord, txt)
	}
	discoveryURL := m[1]

	u, err := url.Parse(discoveryURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, discoveryURL, err)
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}

	return &Record{Version: version, DiscoveryURL: discoveryURL}, nil
}

// WebSocketURL derives the session endpoint from the discovery URL by scheme
// substitution (https->wss, http->ws) and by dropping the trailing /discover
// path segment.
func (rec *Record) WebSocketURL() (string, error) {
	u, err := url.Parse(rec.DiscoveryURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, rec.DiscoveryURL, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/discover")
	return u.String(), nil
}

// FetchDocument retrieves and parses the discovery document. Network
// failures are reported to the caller and never affect a running server.
func (r *Resolver) FetchDocument(ctx context.Context, discoveryURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %s", ErrUnreachable, resp.Status)
	}
	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding document: %v", ErrUnreachable, err)
	}
	return &doc, nil
}
