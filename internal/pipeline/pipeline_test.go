package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/huesort/huesort/internal/colour"
	"github.com/huesort/huesort/internal/config"
	"github.com/huesort/huesort/internal/sampler"
)

// stubFetcher serves a fixed image, or a fixed error.
type stubFetcher struct {
	img image.Image
	err error
}

func (s *stubFetcher) Fetch(context.Context, string) (image.Image, error) {
	return s.img, s.err
}

// stubSampler returns a canned sample.
type stubSampler struct {
	sample []colour.RGB
	err    error
}

func (s *stubSampler) Sample(context.Context, image.Image) ([]colour.RGB, error) {
	return s.sample, s.err
}

func redMatcher(t *testing.T) *colour.Matcher {
	t.Helper()
	m, err := colour.NewMatcher([]colour.Category{
		{ID: 4, Name: "Reds", Synonyms: []colour.Synonym{{Name: "red", RGB: colour.RGB{R: 255}}}},
		{ID: 5, Name: "Blues", Synonyms: []colour.Synonym{{Name: "blue", RGB: colour.RGB{B: 255}}}},
	}, colour.DefaultMatcherConfig())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func testPipeline(t *testing.T, f Fetcher, s sampler.PixelSampler) *Pipeline {
	t.Helper()
	seed := int64(1)
	return &Pipeline{
		fetcher:   f,
		sampler:   s,
		extractor: colour.NewExtractor(colour.KMeans{K: 3, MaxIterations: 10, Epsilon: 1.0, Restarts: 5}),
		matcher:   redMatcher(t),
		minSample: 10,
		seed:      &seed,
		logger:    hclog.NewNullLogger(),
	}
}

func redPixels(n int) []colour.RGB {
	sample := make([]colour.RGB, n)
	for i := range sample {
		sample[i] = colour.RGB{R: 255}
	}
	return sample
}

func TestAnalyzeSampleBoundary(t *testing.T) {
	fetcher := &stubFetcher{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}

	// Nine surviving pixels: unclassifiable.
	p := testPipeline(t, fetcher, &stubSampler{sample: redPixels(9)})
	res := p.Analyze(context.Background(), "item-9")
	if res.OK {
		t.Fatalf("nine pixels classified as %d, want unclassifiable", res.CategoryID)
	}
	if res.Label() != NotFound {
		t.Errorf("Label = %q, want %q", res.Label(), NotFound)
	}

	// Ten surviving pixels: proceeds to clustering and matches.
	p = testPipeline(t, fetcher, &stubSampler{sample: redPixels(10)})
	res = p.Analyze(context.Background(), "item-10")
	if !res.OK || res.CategoryID != 4 {
		t.Fatalf("ten pixels: OK=%v id=%d reason=%q, want category 4", res.OK, res.CategoryID, res.Reason)
	}
	if res.Label() != "4" {
		t.Errorf("Label = %q, want \"4\"", res.Label())
	}
}

func TestAnalyzeFetchFailure(t *testing.T) {
	p := testPipeline(t,
		&stubFetcher{err: errors.New("connection refused")},
		&stubSampler{sample: redPixels(100)})

	res := p.Analyze(context.Background(), "item")
	if res.OK {
		t.Fatal("fetch failure still classified")
	}
	if !strings.Contains(res.Reason, "connection refused") {
		t.Errorf("Reason = %q, want the fetch error", res.Reason)
	}
}

func TestAnalyzeSamplerFailure(t *testing.T) {
	p := testPipeline(t,
		&stubFetcher{img: image.NewRGBA(image.Rect(0, 0, 1, 1))},
		&stubSampler{err: errors.New("matte process crashed")})

	if res := p.Analyze(context.Background(), "item"); res.OK {
		t.Fatal("sampler failure still classified")
	}
}

func TestAnalyzeClusteringFailure(t *testing.T) {
	p := testPipeline(t,
		&stubFetcher{img: image.NewRGBA(image.Rect(0, 0, 1, 1))},
		&stubSampler{sample: redPixels(10)})
	// More clusters than sample pixels.
	p.extractor = colour.NewExtractor(colour.KMeans{K: 20, MaxIterations: 10, Epsilon: 1.0, Restarts: 5})

	if res := p.Analyze(context.Background(), "item"); res.OK {
		t.Fatal("degenerate clustering still classified")
	}
}

func solidPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func endToEndConfig() *config.Config {
	cfg := config.Default()
	seed := int64(1)
	cfg.Analysis.Seed = &seed
	cfg.Colors = map[string][3]uint8{
		"red":  {255, 0, 0},
		"blue": {0, 0, 255},
	}
	cfg.Categories = []config.CategoryEntry{
		{Name: "Reds", ID: 4, Synonyms: []string{"red"}},
		{Name: "Blues", ID: 5, Synonyms: []string{"blue"}},
	}
	return cfg
}

func TestAnalyzeSolidRedEndToEnd(t *testing.T) {
	data := solidPNG(t, color.RGBA{R: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	p, err := New(endToEndConfig(), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	res := p.Analyze(context.Background(), srv.URL)
	if !res.OK {
		t.Fatalf("solid red unclassifiable: %s", res.Reason)
	}
	if res.CategoryID != 4 {
		t.Errorf("category id = %d, want 4", res.CategoryID)
	}
	if res.Dominant != (colour.RGB{R: 255}) {
		t.Errorf("dominant = %v, want pure red", res.Dominant)
	}
}

func TestAnalyzeSolidWhiteUnclassifiable(t *testing.T) {
	data := solidPNG(t, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	p, err := New(endToEndConfig(), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	res := p.Analyze(context.Background(), srv.URL)
	if res.OK {
		t.Fatalf("pure white classified as %d, want unclassifiable", res.CategoryID)
	}
}

func TestNewRejectsEmptyTable(t *testing.T) {
	cfg := endToEndConfig()
	cfg.Categories = nil
	if _, err := New(cfg, hclog.NewNullLogger()); err == nil {
		t.Fatal("New accepted an empty category table")
	}
}

func TestAnalyzeAll(t *testing.T) {
	data := solidPNG(t, color.RGBA{R: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	p, err := New(endToEndConfig(), hclog.NewNullLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	refs := []string{srv.URL + "/a", srv.URL + "/missing", srv.URL + "/b"}
	results := p.AnalyzeAll(context.Background(), refs, 3)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, res := range results {
		if res.Ref != refs[i] {
			t.Errorf("result %d out of order: %s", i, res.Ref)
		}
	}
	if !results[0].OK || !results[2].OK {
		t.Error("good images did not classify")
	}
	if results[1].OK {
		t.Error("missing image classified")
	}
}
