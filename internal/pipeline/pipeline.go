// Package pipeline orchestrates the classification stages:
// fetch -> sample -> cluster -> match. Every stage failure is recovered
// locally into the single unclassifiable outcome; a best-effort
// classifier never aborts a batch over one bad image.
package pipeline

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/huesort/huesort/internal/colour"
	"github.com/huesort/huesort/internal/config"
	"github.com/huesort/huesort/internal/fetch"
	"github.com/huesort/huesort/internal/matte"
	"github.com/huesort/huesort/internal/sampler"
	mattesdk "github.com/huesort/huesort/pkg/matte"
)

// NotFound is the sentinel callers print for unclassifiable items.
const NotFound = "N/A"

// ErrInsufficientData means too few pixels survived filtering to
// cluster meaningfully.
var ErrInsufficientData = errors.New("too few pixels after filtering")

// ErrNoMatch means the category table produced no winner.
var ErrNoMatch = errors.New("no category matched")

// Result is the outcome of analysing one image. When OK is false the
// item is unclassifiable and Reason says why.
type Result struct {
	Ref        string
	CategoryID int
	Category   string
	Dominant   colour.RGB
	OK         bool
	Reason     string
}

// Label returns the category id as a string, or the not-found sentinel.
func (r Result) Label() string {
	if !r.OK {
		return NotFound
	}
	return strconv.Itoa(r.CategoryID)
}

// Fetcher retrieves and decodes one image reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

// Pipeline is one assembled classifier. It is stateless across calls
// except for the read-only category table, so a single Pipeline is safe
// for concurrent invocations.
type Pipeline struct {
	fetcher   Fetcher
	sampler   sampler.PixelSampler
	extractor *colour.Extractor
	matcher   *colour.Matcher

	minSample int
	seed      *int64

	matteClient *matte.Client
	logger      hclog.Logger
}

// New assembles a Pipeline from configuration. Construction fails fast
// on a malformed category table. When the foreground-mask strategy is
// requested, the matte plugin capability check happens here, once, and
// an unavailable plugin downgrades the sampler with a warning.
func New(cfg *config.Config, logger hclog.Logger) (*Pipeline, error) {
	matcher, err := colour.NewMatcher(cfg.CategoryTable(), cfg.MatcherConfig())
	if err != nil {
		return nil, err
	}

	var matteClient *matte.Client
	var remover mattesdk.Remover
	if cfg.Analysis.UseForeground {
		matteClient, err = matte.Discover(cfg.Analysis.MattePlugin, logger)
		if err != nil {
			logger.Warn("matte plugin unavailable", "error", err)
		} else {
			remover = matteClient
		}
	}

	pixelSampler := sampler.New(cfg.SamplerConfig(), remover, logger)

	return &Pipeline{
		fetcher: fetch.New(cfg.FetchTimeout()),
		sampler: pixelSampler,
		extractor: colour.NewExtractor(colour.KMeans{
			K:             cfg.Analysis.Clusters,
			MaxIterations: cfg.Analysis.MaxIterations,
			Epsilon:       cfg.Analysis.Epsilon,
			Restarts:      cfg.Analysis.Restarts,
		}),
		matcher:     matcher,
		minSample:   cfg.Analysis.MinSample,
		seed:        cfg.Analysis.Seed,
		matteClient: matteClient,
		logger:      logger,
	}, nil
}

// Close reaps the matte plugin process, if one was started.
func (p *Pipeline) Close() {
	if p.matteClient != nil {
		p.matteClient.Close()
		p.matteClient = nil
	}
}

// Matcher exposes the category matcher, mainly for reporting.
func (p *Pipeline) Matcher() *colour.Matcher {
	return p.matcher
}

// Analyze classifies a single image reference. It never returns an
// error: every failure mode collapses into an unclassifiable Result.
func (p *Pipeline) Analyze(ctx context.Context, ref string) Result {
	img, err := p.fetcher.Fetch(ctx, ref)
	if err != nil {
		p.logger.Debug("fetch failed", "ref", ref, "error", err)
		return unclassifiable(ref, err)
	}

	sample, err := p.sampler.Sample(ctx, img)
	if err != nil {
		p.logger.Debug("sampling failed", "ref", ref, "error", err)
		return unclassifiable(ref, err)
	}
	if len(sample) < p.minSample {
		p.logger.Debug("sample too small", "ref", ref, "pixels", len(sample), "min", p.minSample)
		return unclassifiable(ref, ErrInsufficientData)
	}

	dominant, err := p.extractor.Dominant(sample, p.newRand())
	if err != nil {
		p.logger.Debug("clustering failed", "ref", ref, "error", err)
		return unclassifiable(ref, err)
	}

	category, ok := p.matcher.Match(dominant)
	if !ok {
		return unclassifiable(ref, ErrNoMatch)
	}

	p.logger.Debug("classified", "ref", ref,
		"dominant", dominant.Hex(), "category", category.Name, "id", category.ID)

	return Result{
		Ref:        ref,
		CategoryID: category.ID,
		Category:   category.Name,
		Dominant:   dominant,
		OK:         true,
	}
}

// newRand builds the per-call random source for clustering. A
// configured seed makes every call reproducible.
func (p *Pipeline) newRand() *rand.Rand {
	if p.seed != nil {
		return rand.New(rand.NewSource(*p.seed)) // #nosec G404 - reproducibility, not cryptography
	}
	return rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404
}

func unclassifiable(ref string, err error) Result {
	return Result{Ref: ref, Reason: err.Error()}
}
