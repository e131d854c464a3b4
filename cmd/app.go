package main

import (
	"context"
	"time"

	"github.com/gifia/fraud-intel/internal/dedup"
	"github.com/gifia/fraud-intel/internal/extract"
	"github.com/gifia/fraud-intel/internal/fetch"
	"github.com/gifia/fraud-intel/internal/gate"
	"github.com/gifia/fraud-intel/internal/harvest"
	"github.com/gifia/fraud-intel/internal/llm"
	"github.com/gifia/fraud-intel/internal/pipeline"
	"github.com/gifia/fraud-intel/internal/search"
	"github.com/gifia/fraud-intel/internal/store"
	"github.com/gifia/fraud-intel/pkg/firecrawl"
	"github.com/gifia/fraud-intel/pkg/gemini"
	"github.com/gifia/fraud-intel/pkg/jina"
	"github.com/gifia/fraud-intel/pkg/tavily"
)

func initStore(ctx context.Context) (store.Store, error) {
	return store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
}

// buildPipeline wires every stage from config. The caller owns the store.
func buildPipeline(st store.Store) *pipeline.Pipeline {
	tavilyClient := tavily.NewClient(cfg.Tavily.Key, tavily.WithBaseURL(cfg.Tavily.BaseURL))
	searcher := search.NewProvider(tavilyClient, cfg.Search.HotspotMinScore)

	jinaClient := jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))
	fetchers := []fetch.Fetcher{fetch.NewJinaFetcher(jinaClient)}
	if cfg.Firecrawl.Key != "" {
		firecrawlClient := firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
		fetchers = append(fetchers, fetch.NewFirecrawlFetcher(firecrawlClient))
	}
	fetchers = append(fetchers, fetch.NewLocalFetcher())
	chain := fetch.NewChain(fetchers...)

	geminiClient := gemini.NewClient(cfg.Gemini.Key, gemini.WithBaseURL(cfg.Gemini.BaseURL))
	primary := llm.NewGeminiProvider(geminiClient, cfg.Gemini.Models, cfg.Extract.MaxOutputTokens)
	backup := llm.NewDeepSeekProvider(cfg.DeepSeek.Key, cfg.DeepSeek.BaseURL, cfg.DeepSeek.Model)
	gateway := llm.NewGateway(primary, backup)

	extractor := extract.NewExtractor(gateway,
		extract.Variant(cfg.Extract.Variant), cfg.Extract.MinProcessChars)

	return pipeline.New(
		searcher,
		chain,
		extractor,
		gate.New(),
		dedup.NewIndex(st),
		harvest.New(cfg.Harvest.AllowedSuffixes, cfg.Harvest.MaxLinks),
		st,
		pipeline.Options{
			MaxCases:   cfg.Pipeline.MaxCases,
			MaxResults: cfg.Search.MaxResults,
			Pacing:     time.Duration(cfg.Pipeline.PacingSecs) * time.Second,
			OnReject:   pipeline.RejectPolicy(cfg.Pipeline.OnReject),
		},
	)
}
