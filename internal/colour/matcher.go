package colour

import (
	"errors"
	"math"
	"strings"
)

// Synonym is a single named reference colour within a category.
type Synonym struct {
	Name string
	RGB  RGB
}

// Category is one colour grouping with a stable numeric id and an
// ordered list of synonyms. The id is the value returned to callers.
type Category struct {
	ID       int
	Name     string
	Synonyms []Synonym
}

// MatcherConfig holds the perceptual adjustments applied on top of the
// raw Euclidean distance.
type MatcherConfig struct {
	// WarmKeywords mark reference names whose red-channel delta is
	// boosted. Matching is case-insensitive substring containment, so
	// the lists can carry locale-specific synonym strings.
	WarmKeywords []string

	// NeutralKeywords mark gray/black reference names that are
	// penalised when the candidate pixel is vivid.
	NeutralKeywords []string

	// RedWeight multiplies the red-channel delta for warm references.
	RedWeight float64

	// GrayPenalty is added to the distance of neutral references when
	// the pixel is vivid.
	GrayPenalty float64

	// MinSaturation and MinValue define "vivid": both thresholds must
	// be exceeded (0-255 scale) before the gray penalty applies.
	MinSaturation float64
	MinValue      float64
}

// DefaultMatcherConfig returns the stock matcher adjustments.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		WarmKeywords:    []string{"red", "wine-red", "burgundy", "pink", "rose", "fuchsia"},
		NeutralKeywords: []string{"black", "charcoal", "smoke", "gray", "light-gray", "silver"},
		RedWeight:       1.5,
		GrayPenalty:     30,
		MinSaturation:   70,
		MinValue:        80,
	}
}

// Matcher finds the closest category for a pixel using a weighted,
// perceptually-adjusted distance over every (category, synonym) pair.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	categories []Category
	cfg        MatcherConfig
}

// NewMatcher validates the category table and builds a Matcher. At
// least one category with at least one synonym is required; anything
// less is a configuration error that must surface before any per-image
// call.
func NewMatcher(categories []Category, cfg MatcherConfig) (*Matcher, error) {
	if len(categories) == 0 {
		return nil, errors.New("category table is empty")
	}
	for _, cat := range categories {
		if len(cat.Synonyms) == 0 {
			return nil, errors.New("category " + cat.Name + " has no synonyms")
		}
	}
	return &Matcher{categories: categories, cfg: cfg}, nil
}

// Categories returns the table the matcher was built with.
func (m *Matcher) Categories() []Category {
	return m.categories
}

// Distance computes the weighted distance between a pixel and a named
// reference colour:
//
//  1. Euclidean distance in RGB with the red-channel delta multiplied
//     by RedWeight when the reference name contains a warm keyword.
//  2. A fixed penalty when the pixel is vivid (saturation and value
//     above their thresholds) but the reference name is neutral-tagged,
//     so a saturated pixel is not mistaken for gray or black purely on
//     raw RGB closeness.
func (m *Matcher) Distance(p RGB, ref RGB, name string) float64 {
	wR := 1.0
	if containsAny(name, m.cfg.WarmKeywords) {
		wR = m.cfg.RedWeight
	}

	dr := (float64(p.R) - float64(ref.R)) * wR
	dg := float64(p.G) - float64(ref.G)
	db := float64(p.B) - float64(ref.B)
	dist := math.Sqrt(dr*dr + dg*dg + db*db)

	_, s, v := p.HSV()
	if s > m.cfg.MinSaturation && v > m.cfg.MinValue {
		if containsAny(name, m.cfg.NeutralKeywords) {
			dist += m.cfg.GrayPenalty
		}
	}

	return dist
}

// Match returns the category whose reference colour minimises the
// weighted distance to p. Ties keep the first-seen minimum in
// category-table order. The boolean is false only when the table is
// empty, which NewMatcher prevents.
func (m *Matcher) Match(p RGB) (Category, bool) {
	minDist := math.Inf(1)
	var best Category
	found := false

	for _, cat := range m.categories {
		for _, syn := range cat.Synonyms {
			dist := m.Distance(p, syn.RGB, syn.Name)
			if dist < minDist {
				minDist = dist
				best = cat
				found = true
			}
		}
	}

	return best, found
}

// containsAny reports whether name contains any keyword,
// case-insensitively.
func containsAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
