// Package source collects a bounded window of a user's recent public
// activity from one of several upstream integrations. The integrations are
// not interchangeable in shape or auth model, so each one is a named
// Strategy behind the same contract; the Adapter on top absorbs every
// upstream failure and degrades to an empty window.
package source

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RawPost is one fetched post, normalized across strategies. It lives only
// long enough for the interaction summary to be built.
type RawPost struct {
	Caption      string
	LikeCount    int
	CommentTexts []string
}

// Strategy is one concrete upstream integration. Implementations return at
// most limit posts in upstream chronological order and may fail; failure
// handling belongs to the Adapter, not to callers.
type Strategy interface {
	Name() string
	FetchRecentActivity(ctx context.Context, handle string, limit int) ([]RawPost, error)
}

// Config selects and parameterizes a strategy. Credentials come from here,
// never from process-wide state.
type Config struct {
	// Mode is one of "scraper", "graph", "public" or "mock".
	Mode string
	// BaseURL overrides the upstream endpoint, mainly for tests.
	BaseURL string
	// SessionID authenticates the scraper strategy.
	SessionID string
	// AccessToken authenticates the graph strategy.
	AccessToken string
	UserAgent   string
	Timeout     time.Duration
	// CommentLimit bounds how many comments are examined per post.
	CommentLimit int
	// CacheSize/CacheTTL enable a short-lived per-handle activity cache
	// when both are positive. Assessment results are never cached.
	CacheSize int
	CacheTTL  time.Duration
}

const (
	defaultTimeout      = 15 * time.Second
	defaultCommentLimit = 10
)

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

func (c Config) commentLimit() int {
	if c.CommentLimit <= 0 {
		return defaultCommentLimit
	}
	return c.CommentLimit
}

// Adapter wraps a Strategy with the degraded-but-valid contract: any
// upstream error is logged and collapses to an empty window. Callers never
// see a failure from here.
type Adapter struct {
	strategy Strategy
	log      zerolog.Logger
}

// New selects the strategy named by cfg.Mode.
func New(cfg Config, log zerolog.Logger) (*Adapter, error) {
	var strat Strategy
	switch cfg.Mode {
	case "scraper":
		strat = newScraperClient(cfg)
	case "graph":
		if cfg.AccessToken == "" {
			return nil, fmt.Errorf("source: access token is required for graph mode")
		}
		strat = newGraphClient(cfg)
	case "public":
		strat = newPublicClient(cfg)
	case "mock":
		strat = NewMock()
	default:
		return nil, fmt.Errorf("source: unknown mode %q (use 'scraper', 'graph', 'public' or 'mock')", cfg.Mode)
	}

	if cfg.CacheSize > 0 && cfg.CacheTTL > 0 {
		strat = newCachedStrategy(strat, cfg.CacheSize, cfg.CacheTTL)
	}
	return NewAdapter(strat, log), nil
}

// NewAdapter wraps an already-constructed strategy, mainly for tests.
func NewAdapter(strat Strategy, log zerolog.Logger) *Adapter {
	return &Adapter{strategy: strat, log: log}
}

// Fetch returns up to limit recent posts for handle. The returned slice is
// empty whenever the upstream failed for any reason (network, auth, rate
// limit, unknown user, private account, malformed response); data absence is
// a valid result here.
func (a *Adapter) Fetch(ctx context.Context, handle string, limit int) []RawPost {
	posts, err := a.strategy.FetchRecentActivity(ctx, handle, limit)
	if err != nil {
		a.log.Warn().
			Str("strategy", a.strategy.Name()).
			Str("handle", handle).
			Err(err).
			Msg("upstream fetch failed, degrading to empty activity")
		return nil
	}
	if len(posts) > limit {
		posts = posts[:limit]
	}

	// The strategy may be serving a shared cached window; normalize a copy,
	// never the slice it handed back.
	out := make([]RawPost, len(posts))
	copy(out, posts)
	for i := range out {
		if out[i].LikeCount < 0 {
			out[i].LikeCount = 0
		}
	}
	return out
}
