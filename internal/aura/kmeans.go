package aura

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// KMeans is a seeded k-means++ / Lloyd partitioner. Given the same points and the same
// parameters it always produces the same labels.
type KMeans struct {
	K        int
	Seed     int64
	Restarts int
	MaxIter  int
	Tol      float64
}

// Fit partitions points into at most K clusters and returns one label per point, each in
// [0, K). The run with the lowest inertia across restarts wins; earlier runs win ties.
func (km KMeans) Fit(points [][]float64) ([]int, error) {
	n := len(points)
	if n == 0 {
		return nil, nil
	}
	if km.K <= 0 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", km.K)
	}

	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim || dim == 0 {
			return nil, fmt.Errorf("point %d has dimension %d, expected %d", i, len(p), dim)
		}
	}

	labels := make([]int, n)
	if n <= km.K {
		for i := range labels {
			labels[i] = i
		}
		return labels, nil
	}

	restarts := km.Restarts
	if restarts <= 0 {
		restarts = 1
	}

	rng := rand.New(rand.NewSource(km.Seed))
	bestInertia := math.Inf(1)
	for r := 0; r < restarts; r++ {
		centers := km.seedCenters(points, rng)
		runLabels, inertia := km.lloyd(points, centers)
		if inertia < bestInertia {
			bestInertia = inertia
			copy(labels, runLabels)
		}
	}

	return labels, nil
}

// seedCenters picks K initial centers with k-means++ weighting.
func (km KMeans) seedCenters(points [][]float64, rng *rand.Rand) [][]float64 {
	n := len(points)
	chosen := make([]bool, n)
	centers := make([][]float64, 0, km.K)

	first := rng.Intn(n)
	chosen[first] = true
	centers = append(centers, clone(points[first]))

	dist := make([]float64, n)
	for len(centers) < km.K {
		total := 0.0
		for i, p := range points {
			dist[i] = nearest(p, centers).dist
			total += dist[i]
		}

		next := -1
		if total > 0 {
			target := rng.Float64() * total
			cumulative := 0.0
			for i, d := range dist {
				if d == 0 {
					continue
				}
				cumulative += d
				next = i
				if cumulative > target {
					break
				}
			}
		} else {
			// every remaining point coincides with a center
			for i := range points {
				if !chosen[i] {
					next = i
					break
				}
			}
		}

		chosen[next] = true
		centers = append(centers, clone(points[next]))
	}

	return centers
}

// lloyd iterates assignment and update steps until centers stop moving.
func (km KMeans) lloyd(points [][]float64, centers [][]float64) ([]int, float64) {
	n := len(points)
	dim := len(points[0])
	labels := make([]int, n)

	maxIter := km.MaxIter
	if maxIter <= 0 {
		maxIter = 300
	}

	for iter := 0; iter < maxIter; iter++ {
		for i, p := range points {
			labels[i] = nearest(p, centers).index
		}

		sums := make([][]float64, len(centers))
		counts := make([]int, len(centers))
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range centers {
			if counts[c] == 0 {
				// empty clusters keep their previous center
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			d := floats.Distance(centers[c], sums[c], 2)
			shift += d * d
			centers[c] = sums[c]
		}

		if shift <= km.Tol {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		m := nearest(p, centers)
		labels[i] = m.index
		inertia += m.dist
	}

	return labels, inertia
}

type match struct {
	index int
	dist  float64 // squared euclidean distance
}

// nearest returns the closest center; the lowest index wins ties.
func nearest(p []float64, centers [][]float64) match {
	best := match{index: -1, dist: math.Inf(1)}
	for c, center := range centers {
		d := floats.Distance(p, center, 2)
		if d*d < best.dist {
			best = match{index: c, dist: d * d}
		}
	}
	return best
}

// DominantCluster returns the most populated label, lowest index on ties.
func DominantCluster(labels []int, k int) int {
	if len(labels) == 0 || k <= 0 {
		return 0
	}
	counts := make([]int, k)
	for _, l := range labels {
		if l >= 0 && l < k {
			counts[l]++
		}
	}
	best := 0
	for c := 1; c < k; c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
