// Package ingest runs the scrape-to-directory pipeline: fetch a source
// listing, parse advisor candidates, normalize and score them, then rewrite
// and persist the survivors. The pipeline is strictly sequential with
// courtesy delays between requests.
package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/captiveadvisors/directory/internal/geo"
	"github.com/captiveadvisors/directory/internal/model"
	"github.com/captiveadvisors/directory/internal/parser"
	"github.com/captiveadvisors/directory/internal/rewrite"
	"github.com/captiveadvisors/directory/internal/scorer"
	"github.com/captiveadvisors/directory/internal/scrape"
	"github.com/captiveadvisors/directory/internal/store"
)

// Fetcher fetches a listing page as markdown.
type Fetcher interface {
	Scrape(ctx context.Context, url string) (*scrape.Page, error)
}

// BioRewriter rewrites a scraped advisor into a directory bio.
type BioRewriter interface {
	RewriteBio(ctx context.Context, adv model.ScrapedAdvisor) rewrite.Result
}

// AdvisorStore is the subset of the store the pipeline writes to.
type AdvisorStore interface {
	AdvisorExists(ctx context.Context, slug, website string) (bool, error)
	CreateAdvisor(ctx context.Context, a *model.Advisor) error
}

// Options tunes the pipeline.
type Options struct {
	// LimitPerSource caps how many candidates are taken per source page.
	LimitPerSource int
	// CandidateDelay is the courtesy pause between candidate rewrites.
	CandidateDelay time.Duration
	// SourceDelay is the courtesy pause between source fetches.
	SourceDelay time.Duration
}

// DefaultOptions returns the production pipeline settings.
func DefaultOptions() Options {
	return Options{
		LimitPerSource: 25,
		CandidateDelay: 500 * time.Millisecond,
		SourceDelay:    3 * time.Second,
	}
}

// SourceReport summarizes one source's ingestion.
type SourceReport struct {
	Source  string `json:"source"`
	Found   int    `json:"found"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Errored int    `json:"errored"`
}

// Report aggregates a full pipeline run.
type Report struct {
	Sources []SourceReport `json:"sources"`
	Found   int            `json:"found"`
	Added   int            `json:"added"`
	Skipped int            `json:"skipped"`
	Errored int            `json:"errored"`
}

// Orchestrator runs the ingestion pipeline.
type Orchestrator struct {
	fetcher  Fetcher
	rewriter BioRewriter
	store    AdvisorStore
	opts     Options

	candidateLimiter *rate.Limiter
	sourceLimiter    *rate.Limiter
}

// New creates an Orchestrator.
func New(fetcher Fetcher, rewriter BioRewriter, st AdvisorStore, opts Options) *Orchestrator {
	if opts.LimitPerSource <= 0 {
		opts.LimitPerSource = DefaultOptions().LimitPerSource
	}
	o := &Orchestrator{
		fetcher:  fetcher,
		rewriter: rewriter,
		store:    st,
		opts:     opts,
	}
	if opts.CandidateDelay > 0 {
		o.candidateLimiter = rate.NewLimiter(rate.Every(opts.CandidateDelay), 1)
	}
	if opts.SourceDelay > 0 {
		o.sourceLimiter = rate.NewLimiter(rate.Every(opts.SourceDelay), 1)
	}
	return o
}

// Run ingests every source in order. A source that fails to fetch or has no
// registered parser is reported and skipped; the run continues. Only
// context cancellation aborts the whole run.
func (o *Orchestrator) Run(ctx context.Context, sources []string) (*Report, error) {
	report := &Report{}

	for _, source := range sources {
		if err := o.waitSource(ctx); err != nil {
			return report, err
		}

		sr := o.runSource(ctx, source)
		report.Sources = append(report.Sources, sr)
		report.Found += sr.Found
		report.Added += sr.Added
		report.Skipped += sr.Skipped
		report.Errored += sr.Errored

		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	zap.L().Info("ingest complete",
		zap.Int("found", report.Found),
		zap.Int("added", report.Added),
		zap.Int("skipped", report.Skipped),
		zap.Int("errored", report.Errored),
	)
	return report, nil
}

func (o *Orchestrator) runSource(ctx context.Context, source string) SourceReport {
	sr := SourceReport{Source: source}
	log := zap.L().With(zap.String("source", source))

	p, ok := parser.ForSource(source)
	if !ok {
		log.Warn("no parser registered for source")
		sr.Errored++
		return sr
	}

	page, err := o.fetcher.Scrape(ctx, source)
	if err != nil {
		log.Warn("source fetch failed", zap.Error(err))
		sr.Errored++
		return sr
	}

	candidates := p.Parse(page.Markdown, o.opts.LimitPerSource)
	sr.Found = len(candidates)
	if len(candidates) == 0 {
		log.Info("no candidates parsed from source")
		return sr
	}

	for i := range candidates {
		normalize(&candidates[i])
		candidates[i].Priority = scorer.Score(candidates[i])
	}
	scorer.SortByPriority(candidates)

	for _, cand := range candidates {
		if err := o.waitCandidate(ctx); err != nil {
			return sr
		}

		added, err := o.ingestCandidate(ctx, cand)
		switch {
		case err != nil:
			log.Warn("candidate failed", zap.String("name", cand.Name), zap.Error(err))
			sr.Errored++
		case added:
			sr.Added++
		default:
			sr.Skipped++
		}
	}

	log.Info("source ingested",
		zap.Int("found", sr.Found),
		zap.Int("added", sr.Added),
		zap.Int("skipped", sr.Skipped),
		zap.Int("errored", sr.Errored),
	)
	return sr
}

// ingestCandidate dedups, rewrites and persists one candidate. Dedup runs
// before the rewrite so duplicates never spend model tokens.
func (o *Orchestrator) ingestCandidate(ctx context.Context, cand model.ScrapedAdvisor) (bool, error) {
	slug := model.AdvisorSlug(cand.Name, cand.City, cand.PrimarySpecialty())

	exists, err := o.store.AdvisorExists(ctx, slug, cand.Website)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	result := o.rewriter.RewriteBio(ctx, cand)

	advisor := &model.Advisor{
		Slug:        slug,
		Name:        cand.Name,
		FirmName:    cand.FirmName,
		Designation: cand.Designation,
		City:        cand.City,
		State:       cand.State,
		ZipCode:     cand.ZipCode,
		Website:     cand.Website,
		LinkedIn:    cand.LinkedIn,
		Bio:         result.Bio,
		Specialties: result.Specialties,
	}

	if err := o.store.CreateAdvisor(ctx, advisor); err != nil {
		// A duplicate slipping past the exists check (same slug written
		// meanwhile) is a skip, not a failure.
		if errors.Is(err, store.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// normalize cleans location fields in place.
func normalize(cand *model.ScrapedAdvisor) {
	cand.City = geo.NormalizeCity(cand.City)
	cand.State = geo.NormalizeState(cand.State)
	if cand.ZipCode == "" {
		cand.ZipCode = "00000"
	}
}

func (o *Orchestrator) waitCandidate(ctx context.Context) error {
	if o.candidateLimiter == nil {
		return nil
	}
	return o.candidateLimiter.Wait(ctx)
}

func (o *Orchestrator) waitSource(ctx context.Context) error {
	if o.sourceLimiter == nil {
		return nil
	}
	return o.sourceLimiter.Wait(ctx)
}
