package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/homier/primemap/sparse"
)

func mustNewKMeans(t *testing.T, opts ...KMeansOption) *KMeans {
	t.Helper()

	k, err := NewKMeans(opts...)
	require.NoError(t, err)

	return k
}

// twoBlobs returns six one-dimensional points forming two well
// separated groups around 2 and 11.
func twoBlobs() []*sparse.Vector {
	return []*sparse.Vector{vec(1), vec(2), vec(3), vec(10), vec(11), vec(12)}
}

func TestNewKMeans_Defaults(t *testing.T) {
	k := mustNewKMeans(t)

	assert.Equal(t, DefaultMaxIterations, k.maxIterations)
	assert.Equal(t, DefaultConvergenceDelta, k.convergenceDelta)
	assert.NotNil(t, k.distance)
	assert.NotNil(t, k.log)
}

func TestNewKMeans_Options(t *testing.T) {
	k := mustNewKMeans(t,
		WithMaxIterations(3),
		WithConvergenceDelta(0.5),
		WithDistanceFunc(SquaredEuclideanDistance),
		WithLogger(zaptest.NewLogger(t)),
	)

	assert.Equal(t, 3, k.maxIterations)
	assert.Equal(t, 0.5, k.convergenceDelta)
}

func TestNewKMeans_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts []KMeansOption
		want error
	}{
		{
			name: "zero iterations",
			opts: []KMeansOption{WithMaxIterations(0)},
			want: ErrInvalidMaxIterations,
		},
		{
			name: "negative iterations",
			opts: []KMeansOption{WithMaxIterations(-5)},
			want: ErrInvalidMaxIterations,
		},
		{
			name: "negative delta",
			opts: []KMeansOption{WithConvergenceDelta(-0.1)},
			want: ErrInvalidConvergenceDelta,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewKMeans(tt.opts...)

			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, k)
		})
	}
}

func TestNewKMeans_NilFallbacks(t *testing.T) {
	k := mustNewKMeans(t, WithDistanceFunc(nil), WithLogger(nil))

	assert.NotNil(t, k.distance)
	assert.NotNil(t, k.log)
}

func TestDistanceFuncs(t *testing.T) {
	a, b := vec(3, 0), vec(0, 4)

	assert.Equal(t, 5.0, EuclideanDistance(a, b))
	assert.Equal(t, 25.0, SquaredEuclideanDistance(a, b))
}

func TestKMeans_Run_Converges(t *testing.T) {
	points := twoBlobs()
	clusters := []*Cluster{NewCluster(0, vec(1)), NewCluster(1, vec(12))}

	k := mustNewKMeans(t, WithLogger(zaptest.NewLogger(t)))
	iterations, converged := k.Run(points, clusters)

	assert.Equal(t, 2, iterations)
	assert.True(t, converged)

	assert.True(t, clusters[0].Center().Equal(vec(2)))
	assert.True(t, clusters[1].Center().Equal(vec(11)))
	assert.True(t, clusters[0].Converged())
	assert.True(t, clusters[1].Converged())
	assert.Equal(t, int64(3), clusters[0].NumObservations())
	assert.Equal(t, int64(6), clusters[0].TotalObservations())
}

func TestKMeans_Run_IterationLimit(t *testing.T) {
	points := twoBlobs()
	clusters := []*Cluster{NewCluster(0, vec(1)), NewCluster(1, vec(12))}

	k := mustNewKMeans(t, WithMaxIterations(1))
	iterations, converged := k.Run(points, clusters)

	assert.Equal(t, 1, iterations)
	assert.False(t, converged)
	assert.True(t, clusters[0].Center().Equal(vec(2)))
	assert.True(t, clusters[1].Center().Equal(vec(11)))
}

func TestKMeans_Run_SquaredDistance(t *testing.T) {
	points := twoBlobs()
	clusters := []*Cluster{NewCluster(0, vec(1)), NewCluster(1, vec(12))}

	k := mustNewKMeans(t, WithDistanceFunc(SquaredEuclideanDistance))
	iterations, converged := k.Run(points, clusters)

	assert.Equal(t, 2, iterations)
	assert.True(t, converged)
	assert.True(t, clusters[0].Center().Equal(vec(2)))
	assert.True(t, clusters[1].Center().Equal(vec(11)))
}

func TestKMeans_Run_EmptyClusterKeepsCenter(t *testing.T) {
	points := []*sparse.Vector{vec(0), vec(1)}
	clusters := []*Cluster{
		NewCluster(0, vec(0)),
		NewCluster(1, vec(1)),
		NewCluster(2, vec(100)),
	}

	k := mustNewKMeans(t)
	_, converged := k.Run(points, clusters)

	require.True(t, converged)
	assert.True(t, clusters[2].Center().Equal(vec(100)))
	assert.Zero(t, clusters[2].TotalObservations())
	assert.True(t, clusters[2].Converged())
}

func TestKMeans_Run_NoClusters(t *testing.T) {
	iterations, converged := mustNewKMeans(t).Run(twoBlobs(), nil)

	assert.Zero(t, iterations)
	assert.True(t, converged)
}

func TestKMeans_Classify(t *testing.T) {
	points := twoBlobs()
	clusters := []*Cluster{NewCluster(0, vec(2)), NewCluster(1, vec(11))}

	k := mustNewKMeans(t)

	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, k.Classify(points, clusters))
	assert.Nil(t, k.Classify(points, nil))
}

func TestSeedClusters(t *testing.T) {
	points := []*sparse.Vector{vec(1), vec(2), vec(3), vec(4), vec(5)}

	clusters, err := SeedClusters(points, 3)
	require.NoError(t, err)
	require.Len(t, clusters, 3)

	seen := make(map[float64]bool)
	for i, c := range clusters {
		assert.Equal(t, i, c.ID())

		v := c.Center().Get(0)
		assert.False(t, seen[v], "centers must be distinct points")
		seen[v] = true

		found := false
		for _, p := range points {
			if c.Center().Equal(p) {
				found = true
				break
			}
		}
		assert.True(t, found, "center must be one of the points")
	}
}

func TestSeedClusters_AllPoints(t *testing.T) {
	points := []*sparse.Vector{vec(1), vec(2)}

	clusters, err := SeedClusters(points, 2)

	require.NoError(t, err)
	assert.Len(t, clusters, 2)
}

func TestSeedClusters_Errors(t *testing.T) {
	points := []*sparse.Vector{vec(1), vec(2)}

	_, err := SeedClusters(points, 0)
	require.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = SeedClusters(points, 3)
	require.ErrorIs(t, err, ErrInvalidClusterCount)

	_, err = SeedClusters(nil, 1)
	require.ErrorIs(t, err, ErrInvalidClusterCount)
}
