package crawler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// robotsTxtPath is the well-known path for robots.txt files.
const robotsTxtPath = "/robots.txt"

// maxRobotsBodyBytes limits how much of a robots.txt response we read.
const maxRobotsBodyBytes = 512 * 1024

// Gate answers whether a URL may be fetched under the target host's
// robots policy. The policy is fetched once per host and cached for the
// lifetime of the run; there is no cross-run persistence.
//
// Politeness here is best-effort, not a correctness blocker: a missing,
// unreachable, or malformed robots.txt means allow-all.
type Gate struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotstxt.Group // keyed by host; nil group = allow all
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateLogger sets a custom logger for the gate.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates a Gate using the given HTTP client and user agent.
// The user agent is matched against robots.txt group rules.
func NewGate(client *http.Client, userAgent string, opts ...GateOption) *Gate {
	g := &Gate{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.Group),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	return g
}

// Allowed reports whether the URL may be fetched. Candidates it rejects
// are silently filtered by the scheduler; rejection is not an error.
func (g *Gate) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	group := g.groupFor(ctx, u)
	if group == nil {
		return true
	}
	p := u.Path
	if p == "" {
		p = "/"
	}
	return group.Test(p)
}

// groupFor returns the cached rule group for the URL's host, fetching
// robots.txt on first sight of the host.
func (g *Gate) groupFor(ctx context.Context, u *url.URL) *robotstxt.Group {
	host := strings.ToLower(u.Host)

	g.mu.Lock()
	group, ok := g.cache[host]
	g.mu.Unlock()
	if ok {
		return group
	}

	group = g.fetch(ctx, u.Scheme, host)

	g.mu.Lock()
	g.cache[host] = group
	g.mu.Unlock()
	return group
}

// fetch retrieves and parses robots.txt for a host. Any failure on the
// way (request, status handling, parse) yields a nil group, which the
// caller treats as allow-all.
func (g *Gate) fetch(ctx context.Context, scheme, host string) *robotstxt.Group {
	robotsURL := scheme + "://" + host + robotsTxtPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("robots.txt unreachable, allowing all", "host", host, "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBodyBytes))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		g.logger.Debug("robots.txt unparseable, allowing all", "host", host, "error", err)
		return nil
	}
	return data.FindGroup(g.userAgent)
}
