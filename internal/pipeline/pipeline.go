// Package pipeline orchestrates a harvest run: search, fetch, extract,
// validate, deduplicate and persist, with recursive link harvesting.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gifia/fraud-intel/internal/dedup"
	"github.com/gifia/fraud-intel/internal/extract"
	"github.com/gifia/fraud-intel/internal/fetch"
	"github.com/gifia/fraud-intel/internal/gate"
	"github.com/gifia/fraud-intel/internal/harvest"
	"github.com/gifia/fraud-intel/internal/model"
	"github.com/gifia/fraud-intel/internal/search"
	"github.com/gifia/fraud-intel/internal/store"
)

// RejectPolicy controls what happens to records that fail the quality gate.
type RejectPolicy string

const (
	// RejectDiscard drops failing records.
	RejectDiscard RejectPolicy = "discard"
	// RejectStoreFlagged stores failing records with a low-confidence note
	// appended to the narrative.
	RejectStoreFlagged RejectPolicy = "store_flagged"
)

// lowConfidenceNoteFmt is appended to rejected narratives stored under the
// store_flagged policy.
const lowConfidenceNoteFmt = " [质量分数: %.2f]"

// Options tunes a pipeline run.
type Options struct {
	MaxCases   int
	MaxResults int
	Pacing     time.Duration
	OnReject   RejectPolicy
}

// Pipeline wires the harvest stages together. Construct with New.
type Pipeline struct {
	searcher  *search.Provider
	fetcher   *fetch.Chain
	extractor *extract.Extractor
	gate      *gate.Gate
	dedup     *dedup.Index
	harvester *harvest.Harvester
	store     store.Store
	limiter   *rate.Limiter
	opts      Options
}

// New creates a Pipeline. Pacing throttles LLM calls; a zero pacing disables
// throttling.
func New(
	searcher *search.Provider,
	fetcher *fetch.Chain,
	extractor *extract.Extractor,
	g *gate.Gate,
	dd *dedup.Index,
	harvester *harvest.Harvester,
	st store.Store,
	opts Options,
) *Pipeline {
	if opts.MaxCases <= 0 {
		opts.MaxCases = 5
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 15
	}
	if opts.OnReject == "" {
		opts.OnReject = RejectDiscard
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.Pacing > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Pacing), 1)
	}

	return &Pipeline{
		searcher:  searcher,
		fetcher:   fetcher,
		extractor: extractor,
		gate:      g,
		dedup:     dd,
		harvester: harvester,
		store:     st,
		limiter:   limiter,
		opts:      opts,
	}
}

// Run executes one harvest sweep. It processes search hits in relevance
// order until MaxCases records are saved or the frontier is exhausted.
// Links harvested from saved articles are appended to the frontier. Failures
// on individual URLs are contained; only context cancellation aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*model.RunSummary, error) {
	if err := p.harvester.SeedFromStore(ctx, p.store); err != nil {
		zap.L().Warn("pipeline: seeding watch domains failed", zap.Error(err))
	}

	hits := p.searcher.Search(ctx, p.opts.MaxResults)
	if len(hits) == 0 {
		zap.L().Warn("pipeline: no search hits, nothing to do")
		return &model.RunSummary{}, nil
	}

	return p.process(ctx, hits)
}

// RunHotspot executes a hotspot sweep: news-mode keyword searches feeding
// the same per-hit machinery as a regular run.
func (p *Pipeline) RunHotspot(ctx context.Context) (*model.RunSummary, error) {
	hits := p.searcher.Hotspot(ctx)
	if len(hits) == 0 {
		zap.L().Info("pipeline: no hotspot hits above threshold")
		return &model.RunSummary{}, nil
	}
	return p.process(ctx, hits)
}

func (p *Pipeline) process(ctx context.Context, frontier []model.SearchHit) (*model.RunSummary, error) {
	summary := &model.RunSummary{}
	visited := make(map[string]struct{}, len(frontier))

	for i := 0; i < len(frontier); i++ {
		if ctx.Err() != nil {
			return summary, eris.Wrap(ctx.Err(), "pipeline: run aborted")
		}
		if summary.Saved >= p.opts.MaxCases {
			break
		}

		hit := frontier[i]
		if _, ok := visited[hit.URL]; ok {
			continue
		}
		visited[hit.URL] = struct{}{}
		summary.Processed++

		links, err := p.processHit(ctx, hit, summary)
		if err != nil {
			if eris.Is(err, context.Canceled) || eris.Is(err, context.DeadlineExceeded) {
				return summary, eris.Wrap(err, "pipeline: run aborted")
			}
			zap.L().Warn("pipeline: hit failed",
				zap.String("url", hit.URL), zap.Error(err))
			summary.Failed++
			continue
		}

		for _, link := range links {
			if _, ok := visited[link]; ok {
				continue
			}
			frontier = append(frontier, model.SearchHit{URL: link})
			summary.Harvested++
		}
	}

	zap.L().Info("pipeline: run complete",
		zap.Int("processed", summary.Processed),
		zap.Int("saved", summary.Saved),
		zap.Int("skipped", summary.Skipped),
		zap.Int("rejected", summary.Rejected),
		zap.Int("failed", summary.Failed),
		zap.Int("harvested", summary.Harvested))
	return summary, nil
}

// processHit walks one URL through the full state machine and returns any
// harvested follow-up links.
func (p *Pipeline) processHit(ctx context.Context, hit model.SearchHit, summary *model.RunSummary) ([]string, error) {
	if dup, reason := p.dedup.Check(ctx, hit.URL, hit.Title); dup {
		zap.L().Info("pipeline: skipping duplicate",
			zap.String("url", hit.URL), zap.String("reason", reason))
		summary.Skipped++
		return nil, nil
	}

	page, err := p.fetcher.Fetch(ctx, hit.URL)
	if err != nil {
		return nil, eris.Wrap(err, "fetch content")
	}
	if page.Title == "" {
		page.Title = hit.Title
	}

	// Pacing applies to the extraction step only; search and fetch are not
	// the rate-limited resources.
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "pacing wait")
	}

	rec, err := p.extractor.Extract(ctx, page)
	if err != nil {
		return nil, eris.Wrap(err, "extract case")
	}

	res := p.gate.Check(rec)
	if !res.IsValid {
		summary.Rejected++
		if p.opts.OnReject != RejectStoreFlagged {
			zap.L().Info("pipeline: record rejected",
				zap.String("url", hit.URL),
				zap.Float64("overall_score", res.OverallScore),
				zap.Float64("process_score", res.ProcessScore))
			return nil, nil
		}
		rec.Process += fmt.Sprintf(lowConfidenceNoteFmt, res.OverallScore)
	}

	id, err := p.store.SaveCase(ctx, rec)
	if err != nil {
		if eris.Is(err, store.ErrDuplicateURL) {
			// Lost a race with a concurrent save of the same URL.
			summary.Skipped++
			return nil, nil
		}
		return nil, eris.Wrap(err, "save case")
	}
	summary.Saved++

	zap.L().Info("pipeline: case saved",
		zap.String("id", id),
		zap.String("url", hit.URL),
		zap.String("event", rec.Event),
		zap.Bool("hotspot", hit.IsHotspot))

	return p.harvester.Harvest(page.Text, hit.URL), nil
}
