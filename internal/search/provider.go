package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gifia/fraud-intel/internal/model"
	"github.com/gifia/fraud-intel/pkg/tavily"
)

// Provider issues fraud-case searches and filters the raw hits down to
// concrete, in-scope case coverage.
type Provider struct {
	client          tavily.Client
	hotspotMinScore float64
}

// NewProvider creates a search provider.
func NewProvider(client tavily.Client, hotspotMinScore float64) *Provider {
	if hotspotMinScore <= 0 {
		hotspotMinScore = 0.7
	}
	return &Provider{client: client, hotspotMinScore: hotspotMinScore}
}

// Search runs one advanced-depth query and returns filtered hits sorted by
// descending relevance. Transport or service errors degrade to an empty
// result set: callers cannot distinguish zero matches from failure.
func (p *Provider) Search(ctx context.Context, maxResults int) []model.SearchHit {
	query := BuildQuery()
	zap.L().Info("search: querying",
		zap.String("query", query),
		zap.Int("max_results", maxResults),
	)

	resp, err := p.client.Search(ctx, tavily.SearchRequest{
		Query:         query,
		SearchDepth:   "advanced",
		MaxResults:    maxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		zap.L().Error("search: request failed", zap.Error(err))
		return nil
	}

	hits := filterHits(resp.Results)

	// A dry primary query gets one retry with the broader fallback form.
	if len(hits) == 0 && query != fallbackQuery {
		zap.L().Info("search: no usable hits, retrying with fallback query")
		resp, err = p.client.Search(ctx, tavily.SearchRequest{
			Query:         fallbackQuery,
			SearchDepth:   "advanced",
			MaxResults:    maxResults,
			IncludeAnswer: true,
		})
		if err != nil {
			zap.L().Error("search: fallback request failed", zap.Error(err))
			return nil
		}
		hits = filterHits(resp.Results)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	zap.L().Info("search: results filtered",
		zap.Int("raw", len(resp.Results)),
		zap.Int("kept", len(hits)),
	)
	return hits
}

// Hotspot sweeps the news index for high-attention cases across the fixed
// hotspot keywords. Keyword searches run concurrently with a small bound;
// only hits above the score threshold are kept, marked IsHotspot.
func (p *Provider) Hotspot(ctx context.Context) []model.SearchHit {
	var (
		mu   sync.Mutex
		hits []model.SearchHit
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	for _, keyword := range hotspotKeywords {
		g.Go(func() error {
			resp, err := p.client.Search(gCtx, tavily.SearchRequest{
				Query:         keyword,
				SearchDepth:   "news",
				MaxResults:    5,
				IncludeAnswer: true,
			})
			if err != nil {
				zap.L().Warn("search: hotspot query failed",
					zap.String("keyword", keyword),
					zap.Error(err),
				)
				return nil
			}
			for _, r := range resp.Results {
				if r.Score <= p.hotspotMinScore {
					continue
				}
				mu.Lock()
				hits = append(hits, model.SearchHit{
					URL:       r.URL,
					Title:     r.Title,
					Content:   r.Content,
					Score:     r.Score,
					IsHotspot: true,
				})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	zap.L().Info("search: hotspot sweep complete", zap.Int("hits", len(hits)))
	return hits
}

// filterHits drops market commentary and excluded lines of business, and
// keeps only hits mentioning at least one concrete case keyword.
func filterHits(results []tavily.Result) []model.SearchHit {
	var hits []model.SearchHit
	for _, r := range results {
		title := strings.ToLower(r.Title)
		content := strings.ToLower(r.Content)
		combined := title + " " + content

		if containsAny(combined, genericKeywords) {
			continue
		}
		if containsAny(combined, excludeKeywords) {
			continue
		}
		if !containsAny(combined, caseKeywords) {
			continue
		}

		hits = append(hits, model.SearchHit{
			URL:     r.URL,
			Title:   r.Title,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return hits
}
