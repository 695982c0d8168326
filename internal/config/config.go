// Package config loads and validates the huesort settings file.
//
// The file is YAML with three sections: analysis parameters, named
// colour definitions, and the ordered category table. Categories are a
// list, not a map, because match ties are broken by first-seen order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/huesort/huesort/internal/colour"
	"github.com/huesort/huesort/internal/sampler"
)

// fallbackRGB is used for synonyms without a colour definition,
// mid-gray so they rarely win a match.
var fallbackRGB = colour.RGB{R: 128, G: 128, B: 128}

// Analysis holds the tunable pipeline parameters. Zero values are
// replaced by defaults at load time.
type Analysis struct {
	ResizeWidth   int     `yaml:"resize_width"`
	ResizeHeight  int     `yaml:"resize_height"`
	CropMargin    int     `yaml:"crop_margin"`
	MinBrightness float64 `yaml:"pixel_filter_min"`
	MaxBrightness float64 `yaml:"pixel_filter_max"`

	Clusters      int     `yaml:"kmeans_k"`
	MaxIterations int     `yaml:"kmeans_max_iterations"`
	Epsilon       float64 `yaml:"kmeans_epsilon"`
	Restarts      int     `yaml:"kmeans_restarts"`
	MinSample     int     `yaml:"min_sample"`

	UseForeground  bool   `yaml:"use_foreground_mask"`
	ForegroundCap  int    `yaml:"foreground_size_cap"`
	AlphaThreshold uint8  `yaml:"foreground_alpha_min"`
	MattePlugin    string `yaml:"matte_plugin"`

	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`

	// Seed fixes the clustering random source. Leave unset for
	// nondeterministic runs; set it for reproducible results.
	Seed *int64 `yaml:"seed"`

	WarmKeywords    []string `yaml:"warm_keywords"`
	NeutralKeywords []string `yaml:"neutral_keywords"`
	RedWeight       float64  `yaml:"red_weight"`
	GrayPenalty     float64  `yaml:"gray_penalty"`
	MinSaturation   float64  `yaml:"penalty_min_saturation"`
	MinValue        float64  `yaml:"penalty_min_value"`
}

// CategoryEntry is one category in the settings file.
type CategoryEntry struct {
	Name     string   `yaml:"name"`
	ID       int      `yaml:"id"`
	Synonyms []string `yaml:"synonyms"`
}

// Config is the full settings file.
type Config struct {
	Analysis   Analysis            `yaml:"analysis"`
	Colors     map[string][3]uint8 `yaml:"colors"`
	Categories []CategoryEntry     `yaml:"categories"`
}

// Default returns a Config with every analysis parameter at its stock
// value and no categories. Callers must supply categories before the
// config validates.
func Default() *Config {
	return &Config{
		Analysis: Analysis{
			ResizeWidth:         100,
			ResizeHeight:        100,
			CropMargin:          30,
			MinBrightness:       20,
			MaxBrightness:       230,
			Clusters:            3,
			MaxIterations:       10,
			Epsilon:             1.0,
			Restarts:            5,
			MinSample:           10,
			ForegroundCap:       500,
			AlphaThreshold:      10,
			FetchTimeoutSeconds: 10,
			WarmKeywords:        []string{"red", "wine-red", "burgundy", "pink", "rose", "fuchsia"},
			NeutralKeywords:     []string{"black", "charcoal", "smoke", "gray", "light-gray", "silver"},
			RedWeight:           1.5,
			GrayPenalty:         30,
			MinSaturation:       70,
			MinValue:            80,
		},
		Colors: map[string][3]uint8{},
	}
}

// Load reads path, layers it over the defaults and validates the
// result. Malformed configuration is the one fatal condition in the
// system, so errors here must abort startup.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// applyDefaults restores defaults for values an explicit file entry
// zeroed out or omitted via empty sections.
func (c *Config) applyDefaults() {
	d := Default().Analysis
	a := &c.Analysis
	if a.ResizeWidth <= 0 {
		a.ResizeWidth = d.ResizeWidth
	}
	if a.ResizeHeight <= 0 {
		a.ResizeHeight = d.ResizeHeight
	}
	if a.Clusters <= 0 {
		a.Clusters = d.Clusters
	}
	if a.MaxIterations <= 0 {
		a.MaxIterations = d.MaxIterations
	}
	if a.Epsilon <= 0 {
		a.Epsilon = d.Epsilon
	}
	if a.Restarts <= 0 {
		a.Restarts = d.Restarts
	}
	if a.MinSample <= 0 {
		a.MinSample = d.MinSample
	}
	if a.ForegroundCap <= 0 {
		a.ForegroundCap = d.ForegroundCap
	}
	if a.FetchTimeoutSeconds <= 0 {
		a.FetchTimeoutSeconds = d.FetchTimeoutSeconds
	}
	if a.RedWeight <= 0 {
		a.RedWeight = d.RedWeight
	}
	if len(a.WarmKeywords) == 0 {
		a.WarmKeywords = d.WarmKeywords
	}
	if len(a.NeutralKeywords) == 0 {
		a.NeutralKeywords = d.NeutralKeywords
	}
	if c.Colors == nil {
		c.Colors = map[string][3]uint8{}
	}
}

// Validate checks the parts that would otherwise fail deep inside a
// per-image call. At least one category with at least one synonym is
// required.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return errors.New("no categories configured")
	}
	seen := map[int]string{}
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return errors.New("category with empty name")
		}
		if len(cat.Synonyms) == 0 {
			return fmt.Errorf("category %q has no synonyms", cat.Name)
		}
		if prev, dup := seen[cat.ID]; dup {
			return fmt.Errorf("categories %q and %q share id %d", prev, cat.Name, cat.ID)
		}
		seen[cat.ID] = cat.Name
	}
	if c.Analysis.MinBrightness >= c.Analysis.MaxBrightness {
		return fmt.Errorf("pixel_filter_min (%v) must be below pixel_filter_max (%v)",
			c.Analysis.MinBrightness, c.Analysis.MaxBrightness)
	}
	return nil
}

// CategoryTable resolves synonym names against the colour definitions
// and returns the table in file order. Synonyms without a definition
// get the mid-gray fallback.
func (c *Config) CategoryTable() []colour.Category {
	table := make([]colour.Category, 0, len(c.Categories))
	for _, entry := range c.Categories {
		cat := colour.Category{ID: entry.ID, Name: entry.Name}
		for _, name := range entry.Synonyms {
			ref := fallbackRGB
			if rgb, ok := c.Colors[name]; ok {
				ref = colour.RGB{R: rgb[0], G: rgb[1], B: rgb[2]}
			}
			cat.Synonyms = append(cat.Synonyms, colour.Synonym{Name: name, RGB: ref})
		}
		table = append(table, cat)
	}
	return table
}

// MatcherConfig builds the matcher adjustments from the analysis section.
func (c *Config) MatcherConfig() colour.MatcherConfig {
	return colour.MatcherConfig{
		WarmKeywords:    c.Analysis.WarmKeywords,
		NeutralKeywords: c.Analysis.NeutralKeywords,
		RedWeight:       c.Analysis.RedWeight,
		GrayPenalty:     c.Analysis.GrayPenalty,
		MinSaturation:   c.Analysis.MinSaturation,
		MinValue:        c.Analysis.MinValue,
	}
}

// SamplerConfig builds the preprocessing parameters.
func (c *Config) SamplerConfig() sampler.Config {
	return sampler.Config{
		ResizeWidth:    c.Analysis.ResizeWidth,
		ResizeHeight:   c.Analysis.ResizeHeight,
		CropMargin:     c.Analysis.CropMargin,
		MinBrightness:  c.Analysis.MinBrightness,
		MaxBrightness:  c.Analysis.MaxBrightness,
		UseForeground:  c.Analysis.UseForeground,
		ForegroundCap:  c.Analysis.ForegroundCap,
		AlphaThreshold: c.Analysis.AlphaThreshold,
	}
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Analysis.FetchTimeoutSeconds) * time.Second
}
