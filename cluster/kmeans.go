package cluster

import (
	"errors"
	"math"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/homier/primemap/sparse"
)

var (
	ErrInvalidMaxIterations    = errors.New("max iterations must be positive")
	ErrInvalidConvergenceDelta = errors.New("convergence delta must be non-negative")
	ErrInvalidClusterCount     = errors.New("cluster count must be positive and at most the number of points")
)

const (
	DefaultMaxIterations    = 20
	DefaultConvergenceDelta = 0.001
)

// DistanceFunc measures the distance between two vectors of the same
// dimension.
type DistanceFunc func(a, b *sparse.Vector) float64

// EuclideanDistance returns the Euclidean distance between a and b.
func EuclideanDistance(a, b *sparse.Vector) float64 {
	return math.Sqrt(a.SquaredDistance(b))
}

// SquaredEuclideanDistance returns the squared Euclidean distance
// between a and b. It ranks points the same way EuclideanDistance does
// while skipping the square root.
func SquaredEuclideanDistance(a, b *sparse.Vector) float64 {
	return a.SquaredDistance(b)
}

// KMeans iteratively assigns points to their nearest cluster and
// recomputes cluster centers until the centers settle or an iteration
// limit is reached.
type KMeans struct {
	maxIterations    int
	convergenceDelta float64
	distance         DistanceFunc
	log              *zap.Logger
}

// KMeansOption configures a KMeans run.
type KMeansOption func(k *KMeans)

// WithMaxIterations overrides DefaultMaxIterations.
func WithMaxIterations(n int) KMeansOption {
	return func(k *KMeans) {
		k.maxIterations = n
	}
}

// WithConvergenceDelta overrides DefaultConvergenceDelta. A cluster is
// considered converged once its center moves by no more than delta
// during a recompute.
func WithConvergenceDelta(delta float64) KMeansOption {
	return func(k *KMeans) {
		k.convergenceDelta = delta
	}
}

// WithDistanceFunc overrides the default EuclideanDistance measure.
func WithDistanceFunc(fn DistanceFunc) KMeansOption {
	return func(k *KMeans) {
		k.distance = fn
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(log *zap.Logger) KMeansOption {
	return func(k *KMeans) {
		k.log = log
	}
}

// NewKMeans returns a KMeans configured by the given options.
func NewKMeans(opts ...KMeansOption) (*KMeans, error) {
	k := &KMeans{
		maxIterations:    DefaultMaxIterations,
		convergenceDelta: DefaultConvergenceDelta,
	}
	for _, opt := range opts {
		opt(k)
	}

	if k.maxIterations < 1 {
		return nil, ErrInvalidMaxIterations
	}
	if k.convergenceDelta < 0 {
		return nil, ErrInvalidConvergenceDelta
	}

	if k.distance == nil {
		k.distance = EuclideanDistance
	}
	if k.log == nil {
		k.log = zap.NewNop()
	}

	return k, nil
}

// SeedClusters builds count clusters centered on a random sample of
// distinct points, with ids 0 through count-1.
func SeedClusters(points []*sparse.Vector, count int) ([]*Cluster, error) {
	if count < 1 || count > len(points) {
		return nil, ErrInvalidClusterCount
	}

	clusters := make([]*Cluster, count)
	for i, j := range rand.Perm(len(points))[:count] {
		clusters[i] = NewCluster(i, points[j])
	}

	return clusters, nil
}

// Run executes k-means iterations over points until every cluster has
// converged or the iteration limit is reached, updating clusters in
// place. It returns the number of iterations executed and whether all
// clusters converged.
func (k *KMeans) Run(points []*sparse.Vector, clusters []*Cluster) (int, bool) {
	if len(clusters) == 0 {
		return 0, true
	}

	for i := 1; i <= k.maxIterations; i++ {
		converged := k.iterate(points, clusters)
		k.log.Debug("kmeans iteration finished",
			zap.Int("iteration", i),
			zap.Int("points", len(points)),
			zap.Int("clusters", len(clusters)),
			zap.Bool("converged", converged),
		)

		if converged {
			k.log.Info("kmeans converged", zap.Int("iterations", i))
			return i, true
		}
	}

	k.log.Info("kmeans stopped at iteration limit",
		zap.Int("iterations", k.maxIterations))

	return k.maxIterations, false
}

// Classify returns, for each point, the id of its nearest cluster. It
// returns nil when clusters is empty.
func (k *KMeans) Classify(points []*sparse.Vector, clusters []*Cluster) []int {
	if len(clusters) == 0 {
		return nil
	}

	out := make([]int, len(points))
	for i, p := range points {
		out[i] = k.nearest(p, clusters).id
	}

	return out
}

// iterate assigns every point to its nearest cluster, then recomputes
// each cluster. It reports whether every cluster converged.
func (k *KMeans) iterate(points []*sparse.Vector, clusters []*Cluster) bool {
	for _, p := range points {
		k.nearest(p, clusters).Observe(p)
	}

	converged := true
	for _, c := range clusters {
		if !k.recompute(c) {
			converged = false
		}
	}

	return converged
}

func (k *KMeans) nearest(p *sparse.Vector, clusters []*Cluster) *Cluster {
	best := clusters[0]
	bestDist := k.distance(p, best.center)
	for _, c := range clusters[1:] {
		if d := k.distance(p, c.center); d < bestDist {
			best, bestDist = c, d
		}
	}

	return best
}

// recompute checks convergence against the pending centroid before
// folding the statistics in, so the flag reflects how far the center
// moved during this iteration.
func (k *KMeans) recompute(c *Cluster) bool {
	c.converged = k.distance(c.Centroid(), c.center) <= k.convergenceDelta
	c.ComputeParameters()

	return c.converged
}
