// Package cluster implements k-means clustering over sparse vectors.
// Each cluster keeps running statistics of the points observed since
// its last recompute, from which a new center and radius are derived
// between iterations.
package cluster

import (
	"fmt"
	"math"

	"github.com/sugawarayuuta/sonnet"

	"github.com/homier/primemap/sparse"
)

// Cluster accumulates observations and derives a center and radius
// from them. Observations are buffered in three running sums (count,
// elementwise sum and elementwise sum of squares) until
// ComputeParameters folds them into the cluster state.
//
// Cluster is not safe for concurrent use.
type Cluster struct {
	id        int
	converged bool

	numObservations   int64
	totalObservations int64

	center *sparse.Vector
	radius *sparse.Vector

	s0 float64
	s1 *sparse.Vector
	s2 *sparse.Vector
}

// NewCluster returns a cluster with the given id, centered on a copy
// of center.
func NewCluster(id int, center *sparse.Vector) *Cluster {
	c := center.Clone()

	return &Cluster{
		id:     id,
		center: c,
		radius: c.Like(),
		s1:     c.Like(),
		s2:     c.Like(),
	}
}

// ID returns the cluster id.
func (c *Cluster) ID() int { return c.id }

// Converged reports whether the cluster center moved less than the
// convergence delta during the last recompute.
func (c *Cluster) Converged() bool { return c.converged }

// NumObservations returns the number of points folded in by the last
// ComputeParameters call.
func (c *Cluster) NumObservations() int64 { return c.numObservations }

// TotalObservations returns the number of points folded in over the
// lifetime of the cluster.
func (c *Cluster) TotalObservations() int64 { return c.totalObservations }

// Center returns the current cluster center. The caller must treat the
// returned vector as read-only.
func (c *Cluster) Center() *sparse.Vector { return c.center }

// Radius returns the elementwise standard deviation of the points
// folded in by the last ComputeParameters call. The caller must treat
// the returned vector as read-only.
func (c *Cluster) Radius() *sparse.Vector { return c.radius }

// Observe adds a point to the running statistics.
func (c *Cluster) Observe(x *sparse.Vector) {
	c.s0++
	c.s1.Add(x)
	c.s2.Add(x.Times(x))
}

// ObserveWeighted adds a point with the given weight to the running
// statistics. A weight of 1 is equivalent to Observe.
func (c *Cluster) ObserveWeighted(x *sparse.Vector, weight float64) {
	if weight == 1 {
		c.Observe(x)
		return
	}

	c.s0 += weight
	c.s1.AddScaled(x, weight)
	c.s2.AddScaled(x.Times(x), weight)
}

// Merge folds the pending statistics of other into c, as if every
// point observed by other since its last recompute had been observed
// by c. The state of other is left untouched.
func (c *Cluster) Merge(other *Cluster) {
	c.s0 += other.s0
	c.s1.Add(other.s1)
	c.s2.Add(other.s2)
}

// Centroid returns the mean of the points observed since the last
// recompute, or a copy of the current center when there are none.
func (c *Cluster) Centroid() *sparse.Vector {
	if c.s0 == 0 {
		return c.center.Clone()
	}

	return c.s1.Divide(c.s0)
}

// ComputeParameters replaces the center with the centroid of the
// observations accumulated so far, derives the radius from them, and
// resets the running statistics. It is a no-op when nothing has been
// observed.
func (c *Cluster) ComputeParameters() {
	if c.s0 == 0 {
		return
	}

	c.numObservations = int64(c.s0)
	c.totalObservations += c.numObservations
	c.center = c.s1.Divide(c.s0)

	if c.s0 > 1 {
		radius := c.center.Like()
		s0 := c.s0
		c.s2.Range(func(i int, v2 float64) bool {
			v1 := c.s1.Get(i)
			// The variance term can dip below zero from rounding.
			if d := v2*s0 - v1*v1; d > 0 {
				radius.Set(i, math.Sqrt(d)/s0)
			}

			return true
		})
		c.radius = radius
	}

	c.s0 = 0
	c.s1 = c.center.Like()
	c.s2 = c.center.Like()
}

// String renders the cluster as "<identifier>{n=<count> c=<center>
// r=<radius>}", where the identifier is CL-<id> for an unconverged
// cluster and VL-<id> for a converged one.
func (c *Cluster) String() string {
	return fmt.Sprintf("%s{n=%d c=%s r=%s}", c.identifier(), c.numObservations, c.center, c.radius)
}

func (c *Cluster) identifier() string {
	if c.converged {
		return fmt.Sprintf("VL-%d", c.id)
	}

	return fmt.Sprintf("CL-%d", c.id)
}

type clusterDoc struct {
	ID        int       `json:"id"`
	Converged bool      `json:"converged"`
	N         int64     `json:"n"`
	Total     int64     `json:"total"`
	Center    []float64 `json:"center"`
	Radius    []float64 `json:"radius"`
}

// MarshalJSON encodes the cluster state as a dense JSON document.
// Pending observation sums are not part of the encoding; call
// ComputeParameters first to fold them in.
func (c *Cluster) MarshalJSON() ([]byte, error) {
	return sonnet.Marshal(clusterDoc{
		ID:        c.id,
		Converged: c.converged,
		N:         c.numObservations,
		Total:     c.totalObservations,
		Center:    c.center.ToSlice(),
		Radius:    c.radius.ToSlice(),
	})
}

// UnmarshalJSON decodes a cluster previously encoded with MarshalJSON.
// The decoded cluster has no pending observations.
func (c *Cluster) UnmarshalJSON(data []byte) error {
	var doc clusterDoc
	if err := sonnet.Unmarshal(data, &doc); err != nil {
		return err
	}

	center := sparse.FromSlice(doc.Center)
	radius := sparse.FromSlice(doc.Radius)
	if radius.Len() != center.Len() {
		radius = center.Like()
	}

	*c = Cluster{
		id:                doc.ID,
		converged:         doc.Converged,
		numObservations:   doc.N,
		totalObservations: doc.Total,
		center:            center,
		radius:            radius,
		s1:                center.Like(),
		s2:                center.Like(),
	}

	return nil
}
