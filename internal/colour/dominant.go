package colour

import "math/rand"

// Extractor selects the dominant colour of a pixel sample: the centroid
// of the most populous k-means cluster. This is a heuristic, not exact
// mode-finding; member-count ties keep the lowest cluster index, which
// depends on random initialisation.
type Extractor struct {
	km KMeans
}

// NewExtractor creates an Extractor with the given clustering parameters.
func NewExtractor(km KMeans) *Extractor {
	return &Extractor{km: km}
}

// Dominant clusters the sample and returns the centroid of the largest
// cluster. It fails only when clustering cannot run at all.
func (e *Extractor) Dominant(sample []RGB, rng *rand.Rand) (RGB, error) {
	clusters, err := e.km.Partition(sample, rng)
	if err != nil {
		return RGB{}, err
	}

	best := 0
	for i, c := range clusters {
		if c.Members > clusters[best].Members {
			best = i
		}
	}

	return clusters[best].Centroid, nil
}
