// Package fetch retrieves full-page text through an ordered chain of
// extraction services with a raw-HTTP fallback.
package fetch

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// minContentChars is the smallest text length accepted as a usable page.
const minContentChars = 500

// Result holds fetched page text with its source.
type Result struct {
	URL    string
	Title  string
	Text   string
	Length int
	Source string // e.g. "jina", "firecrawl", "local"
}

// Fetcher retrieves the text of a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Result, error)
	Name() string
	// Available reports whether the fetcher can currently attempt a URL
	// (credential configured, circuit closed).
	Available() bool
}

// Chain tries fetchers in priority order, returning the first success.
// Fetched pages are cached for the run so a URL harvested twice is
// retrieved once.
type Chain struct {
	fetchers []Fetcher
	cache    *gocache.Cache
}

// NewChain creates a Chain. Fetchers are tried in order; each gets a
// single attempt per URL.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{
		fetchers: fetchers,
		cache:    gocache.New(1*time.Hour, 10*time.Minute),
	}
}

// Fetch tries each available fetcher in order for a single URL.
func (c *Chain) Fetch(ctx context.Context, url string) (*Result, error) {
	if cached, ok := c.cache.Get(url); ok {
		return cached.(*Result), nil
	}

	var lastErr error
	for _, f := range c.fetchers {
		if !f.Available() {
			continue
		}
		result, err := f.Fetch(ctx, url)
		if err == nil && result != nil {
			zap.L().Debug("fetch: succeeded",
				zap.String("source", f.Name()),
				zap.String("url", url),
				zap.Int("length", result.Length),
			)
			c.cache.Set(url, result, gocache.DefaultExpiration)
			return result, nil
		}
		if err != nil {
			zap.L().Debug("fetch: fetcher failed, trying next",
				zap.String("fetcher", f.Name()),
				zap.String("url", url),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "fetch: all fetchers failed")
	}
	return nil, eris.Errorf("fetch: no available fetcher for url: %s", url)
}
