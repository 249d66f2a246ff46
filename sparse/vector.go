// Package sparse provides a sparse float64 vector backed by a
// primitive-typed hash map from index to value. Only non-zero elements
// are stored, so memory usage scales with the number of set elements
// rather than with the dimension.
package sparse

import (
	"fmt"
	"math"
	"strings"

	"github.com/homier/primemap"
)

// Vector is a fixed-dimension sparse vector of float64 values. Elements
// that were never set, or that have been set back to zero, occupy no
// storage. The zero value is not usable; construct vectors with New,
// FromSlice or Like.
//
// Vector is not safe for concurrent use.
type Vector struct {
	dim   int
	elems *primemap.Map[int, float64]
}

// New returns an empty vector of the given dimension. It panics if dim
// is negative.
func New(dim int) *Vector {
	if dim < 0 {
		panic(fmt.Sprintf("sparse: negative dimension %d", dim))
	}

	return &Vector{dim: dim, elems: newElems()}
}

// FromSlice returns a vector with the dimension and contents of vals.
// Zero entries are skipped.
func FromSlice(vals []float64) *Vector {
	v := New(len(vals))
	for i, val := range vals {
		if val != 0 {
			v.elems.Put(i, val)
		}
	}

	return v
}

// Len returns the dimension of the vector.
func (v *Vector) Len() int { return v.dim }

// NonZeros returns the number of stored, non-zero elements.
func (v *Vector) NonZeros() int { return v.elems.Len() }

// Get returns the element at index i, which is zero unless it has been
// set. It panics if i is out of range.
func (v *Vector) Get(i int) float64 {
	v.checkIndex(i)

	val, _ := v.elems.Get(i)
	return val
}

// Set stores val at index i. Setting an element to zero removes it from
// storage. It panics if i is out of range.
func (v *Vector) Set(i int, val float64) {
	v.checkIndex(i)

	if val == 0 {
		v.elems.Delete(i)
		return
	}

	v.elems.Put(i, val)
}

// Incr adds delta to the element at index i and returns the new value.
// An element incremented back to exactly zero is removed from storage.
// It panics if i is out of range.
func (v *Vector) Incr(i int, delta float64) float64 {
	v.checkIndex(i)

	val := v.elems.AdjustOrPut(i, delta, delta)
	if val == 0 {
		v.elems.Delete(i)
	}

	return val
}

// Range calls f for every non-zero element until f returns false.
// Elements are visited in storage order, not index order.
func (v *Vector) Range(f func(i int, val float64) bool) {
	v.elems.Range(f)
}

// Clone returns an independent copy of the vector.
func (v *Vector) Clone() *Vector {
	return &Vector{dim: v.dim, elems: v.elems.Clone()}
}

// Like returns an empty vector of the same dimension.
func (v *Vector) Like() *Vector { return New(v.dim) }

// Equal reports whether other has the same dimension and the same
// elements. A nil other is never equal.
func (v *Vector) Equal(other *Vector) bool {
	if other == nil {
		return false
	}

	return v.dim == other.dim && v.elems.Equal(other.elems)
}

// Plus returns a new vector holding the elementwise sum v + other. It
// panics if the dimensions differ.
func (v *Vector) Plus(other *Vector) *Vector {
	v.checkDims(other)

	r := v.Clone()
	other.Range(func(i int, val float64) bool {
		r.Incr(i, val)
		return true
	})

	return r
}

// Minus returns a new vector holding the elementwise difference
// v - other. It panics if the dimensions differ.
func (v *Vector) Minus(other *Vector) *Vector {
	v.checkDims(other)

	r := v.Clone()
	other.Range(func(i int, val float64) bool {
		r.Incr(i, -val)
		return true
	})

	return r
}

// Times returns a new vector holding the elementwise product
// v * other. Only indices non-zero in both vectors can be non-zero in
// the result. It panics if the dimensions differ.
func (v *Vector) Times(other *Vector) *Vector {
	v.checkDims(other)

	a, b := v, other
	if b.NonZeros() < a.NonZeros() {
		a, b = b, a
	}

	r := v.Like()
	a.Range(func(i int, av float64) bool {
		bv, ok := b.elems.Get(i)
		if !ok {
			return true
		}

		if p := av * bv; p != 0 {
			r.elems.Put(i, p)
		}

		return true
	})

	return r
}

// Scale returns a new vector holding v scaled by c.
func (v *Vector) Scale(c float64) *Vector {
	r := v.Like()
	if c == 0 {
		return r
	}

	v.Range(func(i int, val float64) bool {
		if p := c * val; p != 0 {
			r.elems.Put(i, p)
		}

		return true
	})

	return r
}

// Divide returns a new vector holding v divided elementwise by c.
func (v *Vector) Divide(c float64) *Vector { return v.Scale(1 / c) }

// Add adds other to v in place and returns v. It panics if the
// dimensions differ.
func (v *Vector) Add(other *Vector) *Vector {
	v.checkDims(other)

	other.Range(func(i int, val float64) bool {
		v.Incr(i, val)
		return true
	})

	return v
}

// Apply replaces every non-zero element with fn(element) in place and
// returns v. Zero elements are not visited, and results of exactly zero
// are removed from storage.
func (v *Vector) Apply(fn func(val float64) float64) *Vector {
	// Deleting while ranging could rehash mid-walk, so snapshot first.
	keys, vals := v.elems.AppendPairs(nil, nil, nil)
	for i, k := range keys {
		v.Set(k, fn(vals[i]))
	}

	return v
}

// AddScaled adds c * other to v in place and returns v. It panics if
// the dimensions differ.
func (v *Vector) AddScaled(other *Vector, c float64) *Vector {
	v.checkDims(other)

	if c == 0 {
		return v
	}

	other.Range(func(i int, val float64) bool {
		v.Incr(i, c*val)
		return true
	})

	return v
}

// Dot returns the dot product of v and other. It panics if the
// dimensions differ.
func (v *Vector) Dot(other *Vector) float64 {
	v.checkDims(other)

	a, b := v, other
	if b.NonZeros() < a.NonZeros() {
		a, b = b, a
	}

	var sum float64
	a.Range(func(i int, av float64) bool {
		if bv, ok := b.elems.Get(i); ok {
			sum += av * bv
		}

		return true
	})

	return sum
}

// ZSum returns the sum of all elements.
func (v *Vector) ZSum() float64 {
	var sum float64
	v.Range(func(_ int, val float64) bool {
		sum += val
		return true
	})

	return sum
}

// Norm2 returns the Euclidean norm of the vector.
func (v *Vector) Norm2() float64 { return math.Sqrt(v.Dot(v)) }

// SquaredDistance returns the squared Euclidean distance between v and
// other. It panics if the dimensions differ.
func (v *Vector) SquaredDistance(other *Vector) float64 {
	v.checkDims(other)

	var sum float64
	v.Range(func(i int, val float64) bool {
		d := val - other.Get(i)
		sum += d * d
		return true
	})
	other.Range(func(i int, val float64) bool {
		if !v.elems.ContainsKey(i) {
			sum += val * val
		}

		return true
	})

	return sum
}

// ToSlice returns the vector as a dense slice of length Len.
func (v *Vector) ToSlice() []float64 {
	out := make([]float64, v.dim)
	v.Range(func(i int, val float64) bool {
		out[i] = val
		return true
	})

	return out
}

// String renders the non-zero elements in index order, for example
// "vec(8)[0:1.5 3:2]".
func (v *Vector) String() string {
	keys, vals := v.elems.PairsSortedByKey(nil, nil)

	var sb strings.Builder
	fmt.Fprintf(&sb, "vec(%d)[", v.dim)
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}

		fmt.Fprintf(&sb, "%d:%v", k, vals[i])
	}
	sb.WriteByte(']')

	return sb.String()
}

func (v *Vector) checkIndex(i int) {
	if i < 0 || i >= v.dim {
		panic(fmt.Sprintf("sparse: index %d out of range for dimension %d", i, v.dim))
	}
}

func (v *Vector) checkDims(other *Vector) {
	if v.dim != other.dim {
		panic(fmt.Sprintf("sparse: dimension mismatch %d != %d", v.dim, other.dim))
	}
}

func newElems() *primemap.Map[int, float64] {
	m, err := primemap.New[int, float64]()
	if err != nil {
		panic(err)
	}

	return m
}
