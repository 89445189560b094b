package topics

import (
	"math"
	"math/rand"
)

const (
	kmeansRestarts = 10
	kmeansMaxIters = 100
)

// kmeans partitions vectors into k clusters with Lloyd's algorithm and
// k-means++ seeding. The rng makes runs reproducible; the best of
// kmeansRestarts restarts by inertia is returned as (assignments, centers).
func kmeans(vectors [][]float64, k int, rng *rand.Rand) ([]int, [][]float64) {
	n := len(vectors)
	if n == 0 || k <= 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}

	var bestAssign []int
	var bestCenters [][]float64
	bestInertia := math.Inf(1)

	for restart := 0; restart < kmeansRestarts; restart++ {
		centers := seedCenters(vectors, k, rng)
		assign := make([]int, n)

		for iter := 0; iter < kmeansMaxIters; iter++ {
			changed := false
			for i, v := range vectors {
				c := nearestCenter(v, centers)
				if c != assign[i] {
					assign[i] = c
					changed = true
				}
			}
			centers = recomputeCenters(vectors, assign, k)
			if !changed && iter > 0 {
				break
			}
		}

		inertia := 0.0
		for i, v := range vectors {
			inertia += sqDist(v, centers[assign[i]])
		}
		if inertia < bestInertia {
			bestInertia = inertia
			bestAssign = assign
			bestCenters = centers
		}
	}

	return bestAssign, bestCenters
}

// seedCenters picks initial centers with k-means++: the first uniformly,
// the rest proportional to squared distance from the nearest chosen center.
func seedCenters(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(vectors)
	centers := make([][]float64, 0, k)
	centers = append(centers, cloneVec(vectors[rng.Intn(n)]))

	dists := make([]float64, n)
	for len(centers) < k {
		var total float64
		for i, v := range vectors {
			d := sqDist(v, centers[0])
			for _, c := range centers[1:] {
				if dd := sqDist(v, c); dd < d {
					d = dd
				}
			}
			dists[i] = d
			total += d
		}

		if total == 0 {
			// All points coincide with existing centers.
			centers = append(centers, cloneVec(vectors[rng.Intn(n)]))
			continue
		}

		target := rng.Float64() * total
		var acc float64
		pick := n - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				pick = i
				break
			}
		}
		centers = append(centers, cloneVec(vectors[pick]))
	}
	return centers
}

func recomputeCenters(vectors [][]float64, assign []int, k int) [][]float64 {
	dim := len(vectors[0])
	centers := make([][]float64, k)
	counts := make([]int, k)
	for c := range centers {
		centers[c] = make([]float64, dim)
	}
	for i, v := range vectors {
		c := assign[i]
		counts[c]++
		for j, x := range v {
			centers[c][j] += x
		}
	}
	for c := range centers {
		if counts[c] == 0 {
			continue // empty cluster keeps a zero center
		}
		for j := range centers[c] {
			centers[c][j] /= float64(counts[c])
		}
	}
	return centers
}

func nearestCenter(v []float64, centers [][]float64) int {
	best := 0
	bestD := math.Inf(1)
	for c, center := range centers {
		if d := sqDist(v, center); d < bestD {
			bestD = d
			best = c
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func cloneVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
