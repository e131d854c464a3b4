package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// browserUserAgent makes the raw fallback look like an ordinary browser;
// several court-news sites refuse default Go client requests.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// LocalFetcher is the last-resort fetcher: plain HTTP GET plus tag
// stripping. No external service involved.
type LocalFetcher struct {
	http *http.Client
}

// NewLocalFetcher creates a LocalFetcher with a 30s timeout and
// redirect-following enabled.
func NewLocalFetcher() *LocalFetcher {
	return &LocalFetcher{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name implements Fetcher.
func (l *LocalFetcher) Name() string { return "local" }

// Available implements Fetcher. The raw fallback is always available.
func (l *LocalFetcher) Available() bool { return true }

// Fetch downloads the page and extracts its visible text. Results under
// the minimum content length are reported as failures so the page is not
// fed to extraction half-empty.
func (l *LocalFetcher) Fetch(ctx context.Context, targetURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local: create request")
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("local: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "local: read body")
	}

	text := StripTags(string(body))
	if len(text) <= minContentChars {
		return nil, eris.Errorf("local: content too short (%d chars)", len(text))
	}

	return &Result{
		URL:    targetURL,
		Text:   text,
		Length: len(text),
		Source: "local",
	}, nil
}

// StripTags extracts the visible text of an HTML document: script and
// style subtrees are dropped, remaining text nodes are joined and
// whitespace collapsed.
func StripTags(src string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(src))

	var (
		sb   strings.Builder
		skip int // depth inside script/style/noscript subtrees
	)
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return collapseWhitespace(sb.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) {
				skip++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedTag(string(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(tokenizer.Text())
				sb.WriteByte(' ')
			}
		}
	}
}

func skippedTag(name string) bool {
	switch name {
	case "script", "style", "noscript":
		return true
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
