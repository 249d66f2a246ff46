package primemap

import (
	"fmt"
	"slices"
	"strings"
)

// Set is a hash set of primitive keys backed by the same open-addressing
// table as Map, with a zero-byte value slot. Not safe for concurrent use.
type Set[K Key] struct {
	table[K, struct{}]
}

// SetOption configures a Set.
type SetOption[K Key] func(t *table[K, struct{}])

// WithSetCapacity requests an initial capacity, rounded up to the next
// prime.
func WithSetCapacity[K Key](capacity int) SetOption[K] {
	return func(t *table[K, struct{}]) {
		t.initialCapacity = capacity
	}
}

// WithSetLoadFactors overrides the growth and shrink watermarks.
func WithSetLoadFactors[K Key](minLoad, maxLoad float64) SetOption[K] {
	return func(t *table[K, struct{}]) {
		t.minLoad = minLoad
		t.maxLoad = maxLoad
	}
}

// WithSetHashFunc overrides the default hash function.
func WithSetHashFunc[K Key](f HashFunc[K]) SetOption[K] {
	return func(t *table[K, struct{}]) {
		t.hashFn = f
	}
}

// NewSet returns an empty set.
func NewSet[K Key](opts ...SetOption[K]) (*Set[K], error) {
	s := &Set[K]{}
	s.defaults()

	for _, opt := range opts {
		opt(&s.table)
	}

	if err := s.build(); err != nil {
		return nil, err
	}

	return s, nil
}

// Len returns the number of members.
func (s *Set[K]) Len() int {
	return s.occupied
}

// Add inserts key and reports whether it was absent.
func (s *Set[K]) Add(key K) bool {
	i, found := s.locate(key)
	if found {
		return false
	}

	s.setSlot(i, key, struct{}{})
	s.growIfNeeded()

	return true
}

// Has reports whether key is a member.
func (s *Set[K]) Has(key K) bool {
	_, found := s.locate(key)
	return found
}

// Delete removes key and reports whether it was present.
func (s *Set[K]) Delete(key K) bool {
	return s.remove(key)
}

// Clear drops every member and resets storage to the minimum capacity.
func (s *Set[K]) Clear() {
	s.clear()
}

// EnsureCapacity grows storage until minEntries members fit without a
// rehash.
func (s *Set[K]) EnsureCapacity(minEntries int) error {
	return s.ensureEntries(minEntries)
}

// Trim shrinks storage to the smallest capacity that keeps the current
// members within the max load factor.
func (s *Set[K]) Trim() {
	s.trim()
}

// Range calls f for every member in storage order until f returns false.
// The set must not be modified during the walk.
func (s *Set[K]) Range(f func(key K) bool) {
	for i, st := range s.states {
		if st != slotOccupied {
			continue
		}

		if !f(s.keys[i]) {
			return
		}
	}
}

// All returns the members as an iterator for range-over-func loops.
func (s *Set[K]) All() func(yield func(K) bool) {
	return s.Range
}

// Keys returns the members in storage order.
func (s *Set[K]) Keys() []K {
	return s.AppendKeys(make([]K, 0, s.Len()))
}

// AppendKeys appends the members in storage order to dst. Pass dst[:0] to
// reuse a buffer.
func (s *Set[K]) AppendKeys(dst []K) []K {
	s.Range(func(k K) bool {
		dst = append(dst, k)
		return true
	})

	return dst
}

// KeysSorted appends the members in ascending order to dst.
func (s *Set[K]) KeysSorted(dst []K) []K {
	i := len(dst)
	dst = s.AppendKeys(dst)
	slices.Sort(dst[i:])

	return dst
}

// Clone returns an independent copy sharing only the hash function.
func (s *Set[K]) Clone() *Set[K] {
	c := &Set[K]{table: s.table}
	c.keys = slices.Clone(s.keys)
	c.vals = slices.Clone(s.vals)
	c.states = slices.Clone(s.states)

	return c
}

// Equal reports whether s and other hold exactly the same members.
func (s *Set[K]) Equal(other *Set[K]) bool {
	if other == nil || s.occupied != other.occupied {
		return false
	}

	equal := true
	s.Range(func(k K) bool {
		equal = other.Has(k)
		return equal
	})

	return equal
}

// Stats returns a snapshot of the table's internal factors.
func (s *Set[K]) Stats() Stats {
	return s.stats()
}

// String renders the set in Go literal style with members sorted
// ascending, e.g. set[1 2 3].
func (s *Set[K]) String() string {
	keys := s.KeysSorted(nil)

	var b strings.Builder
	b.WriteString("set[")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v", k)
	}
	b.WriteByte(']')

	return b.String()
}
