package colour

import (
	"errors"
	"math"
	"math/rand"
)

// ErrDegenerateSample is returned when clustering cannot run at all,
// e.g. when the cluster count exceeds the sample size.
var ErrDegenerateSample = errors.New("pixel sample smaller than cluster count")

// Cluster is one k-means cluster: its centroid and member count.
type Cluster struct {
	Centroid RGB
	Members  int
}

// KMeans partitions pixel samples in 3-D RGB space by iterative
// centroid relocation. Initial centroids are placed at random sample
// points, so results vary across runs unless the caller fixes the
// random source.
type KMeans struct {
	K             int     // number of clusters
	MaxIterations int     // iteration cap per run
	Epsilon       float64 // stop when total centroid movement drops below this
	Restarts      int     // independent runs, lowest-error kept
}

// point3 is a point in 3-D RGB colour space.
type point3 struct {
	R, G, B float64
}

// distance calculates the Euclidean distance between two points.
func (p point3) distance(other point3) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Partition clusters the sample into K groups and returns one Cluster
// per group. The random source drives centroid initialisation; pass a
// seeded source for reproducible results.
func (km KMeans) Partition(sample []RGB, rng *rand.Rand) ([]Cluster, error) {
	if km.K < 1 {
		return nil, errors.New("cluster count must be at least 1")
	}
	if len(sample) < km.K {
		return nil, ErrDegenerateSample
	}

	points := make([]point3, len(sample))
	for i, p := range sample {
		points[i] = point3{R: float64(p.R), G: float64(p.G), B: float64(p.B)}
	}

	restarts := max(km.Restarts, 1)

	var bestCentroids []point3
	var bestAssignments []int
	bestError := math.MaxFloat64

	for run := 0; run < restarts; run++ {
		centroids, assignments := km.run(points, rng)
		sse := sumSquaredError(points, centroids, assignments)
		if sse < bestError {
			bestError = sse
			bestCentroids = centroids
			bestAssignments = assignments
		}
	}

	counts := make([]int, km.K)
	for _, a := range bestAssignments {
		counts[a]++
	}

	clusters := make([]Cluster, km.K)
	for i, c := range bestCentroids {
		clusters[i] = Cluster{
			Centroid: RGB{
				R: uint8(math.Round(clampChannel(c.R))),
				G: uint8(math.Round(clampChannel(c.G))),
				B: uint8(math.Round(clampChannel(c.B))),
			},
			Members: counts[i],
		}
	}

	return clusters, nil
}

// run performs a single k-means pass with random initial centroids.
func (km KMeans) run(points []point3, rng *rand.Rand) ([]point3, []int) {
	centroids := initialCentroids(points, km.K, rng)
	assignments := make([]int, len(points))

	for iter := 0; iter < km.MaxIterations; iter++ {
		for i, point := range points {
			assignments[i] = nearestCentroid(point, centroids)
		}

		newCentroids := recalculateCentroids(points, assignments, km.K, rng)

		movement := 0.0
		for i := range centroids {
			movement += centroids[i].distance(newCentroids[i])
		}
		centroids = newCentroids

		if movement < km.Epsilon {
			break
		}
	}

	// Final assignment against the converged centroids.
	for i, point := range points {
		assignments[i] = nearestCentroid(point, centroids)
	}

	return centroids, assignments
}

// initialCentroids picks k distinct sample points at random.
func initialCentroids(points []point3, k int, rng *rand.Rand) []point3 {
	perm := rng.Perm(len(points))
	centroids := make([]point3, k)
	for i := 0; i < k; i++ {
		centroids[i] = points[perm[i]]
	}
	return centroids
}

// nearestCentroid finds the index of the nearest centroid to a point.
// Ties keep the lowest index.
func nearestCentroid(point point3, centroids []point3) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, centroid := range centroids {
		dist := point.distance(centroid)
		if dist < minDist {
			minDist = dist
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids moves each centroid to the mean of its members.
// A cluster left empty is reseeded from a random sample point.
func recalculateCentroids(points []point3, assignments []int, k int, rng *rand.Rand) []point3 {
	sums := make([]point3, k)
	counts := make([]int, k)

	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].R += point.R
		sums[cluster].G += point.G
		sums[cluster].B += point.B
		counts[cluster]++
	}

	centroids := make([]point3, k)
	for i := 0; i < k; i++ {
		if counts[i] > 0 {
			centroids[i] = point3{
				R: sums[i].R / float64(counts[i]),
				G: sums[i].G / float64(counts[i]),
				B: sums[i].B / float64(counts[i]),
			}
		} else {
			centroids[i] = points[rng.Intn(len(points))]
		}
	}

	return centroids
}

// sumSquaredError is the within-cluster sum of squared distances,
// the criterion used to rank restart runs.
func sumSquaredError(points []point3, centroids []point3, assignments []int) float64 {
	total := 0.0
	for i, point := range points {
		d := point.distance(centroids[assignments[i]])
		total += d * d
	}
	return total
}

func clampChannel(v float64) float64 {
	return math.Max(0, math.Min(255, v))
}
