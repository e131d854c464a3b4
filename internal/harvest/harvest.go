// Package harvest mines article text for links to authoritative sources and
// maintains the set of domains the scout keeps watching.
package harvest

import (
	"context"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// SourceLister is the slice of the case store the harvester needs for
// seeding its watch set.
type SourceLister interface {
	ListSourceURLs(ctx context.Context, limit int) ([]string, error)
}

// maxLinksPerPage caps how many new links a single article may contribute,
// keeping the crawl frontier from exploding on link-farm pages.
const defaultMaxLinks = 5

// maxSeedURLs bounds how many stored URLs seed the watch set.
const maxSeedURLs = 1000

var urlPattern = regexp.MustCompile(`https?://[^\s<>"{}|\\^` + "`" + `\[\]]+`)

// Harvester extracts follow-up links from article text. It is safe for
// concurrent use.
type Harvester struct {
	allowedSuffixes []string
	maxLinks        int

	mu      sync.Mutex
	watched map[string]struct{}
}

// New builds a Harvester. Empty allowedSuffixes means authoritative-source
// filtering is disabled and every host passes.
func New(allowedSuffixes []string, maxLinks int) *Harvester {
	if maxLinks <= 0 {
		maxLinks = defaultMaxLinks
	}
	return &Harvester{
		allowedSuffixes: allowedSuffixes,
		maxLinks:        maxLinks,
		watched:         make(map[string]struct{}),
	}
}

// SeedFromStore primes the watch set with the domains of already-stored
// cases so future sweeps stay close to sources that produced usable cases.
func (h *Harvester) SeedFromStore(ctx context.Context, st SourceLister) error {
	urls, err := st.ListSourceURLs(ctx, maxSeedURLs)
	if err != nil {
		return err
	}
	for _, u := range urls {
		if host := hostOf(u); host != "" && h.allowed(host) {
			h.watch(host)
		}
	}
	zap.L().Debug("watch domains seeded", zap.Int("count", len(urls)))
	return nil
}

// Harvest scans article text for links on authoritative domains, skipping
// the article's own URL. New hosts join the watch set.
func (h *Harvester) Harvest(text, selfURL string) []string {
	matches := urlPattern.FindAllString(text, -1)

	seen := map[string]struct{}{selfURL: {}}
	var out []string
	for _, raw := range matches {
		link := strings.TrimRight(raw, ".,;:)]}'\"")
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		host := hostOf(link)
		if host == "" || !h.allowed(host) {
			continue
		}

		h.watch(host)
		out = append(out, link)
		if len(out) >= h.maxLinks {
			break
		}
	}
	return out
}

// Watched returns a sorted snapshot of the watch set.
func (h *Harvester) Watched() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.watched))
	for host := range h.watched {
		out = append(out, host)
	}
	sort.Strings(out)
	return out
}

func (h *Harvester) allowed(host string) bool {
	if len(h.allowedSuffixes) == 0 {
		return true
	}
	for _, suffix := range h.allowedSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

func (h *Harvester) watch(host string) {
	h.mu.Lock()
	h.watched[host] = struct{}{}
	h.mu.Unlock()
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
