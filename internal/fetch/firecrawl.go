package fetch

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gifia/fraud-intel/pkg/firecrawl"
)

// FirecrawlFetcher wraps a Firecrawl client as a Fetcher.
type FirecrawlFetcher struct {
	client firecrawl.Client
}

// NewFirecrawlFetcher creates a FirecrawlFetcher. client may be nil when
// no credential is configured; the fetcher then reports unavailable.
func NewFirecrawlFetcher(client firecrawl.Client) *FirecrawlFetcher {
	return &FirecrawlFetcher{client: client}
}

// Name implements Fetcher.
func (f *FirecrawlFetcher) Name() string { return "firecrawl" }

// Available implements Fetcher.
func (f *FirecrawlFetcher) Available() bool { return f.client != nil }

// Fetch retrieves a single URL via Firecrawl's scrape API.
func (f *FirecrawlFetcher) Fetch(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     targetURL,
		Formats: []string{"markdown"},
	})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, eris.New("firecrawl: scrape not successful")
	}

	text := resp.Data.Markdown
	if len(text) < minContentChars {
		return nil, eris.Errorf("firecrawl: content too short (%d chars)", len(text))
	}

	return &Result{
		URL:    targetURL,
		Title:  resp.Data.Title,
		Text:   text,
		Length: len(text),
		Source: "firecrawl",
	}, nil
}
