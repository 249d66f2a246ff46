package primemap

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Key is the set of key types a Map or Set accepts: the fixed-width
// integers and anything derived from them.
type Key interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Value is the set of value types a Map accepts: every Key type plus the
// floats.
type Value interface {
	Key | ~float32 | ~float64
}

// Map is a hash map of primitive keys to primitive values built on open
// addressing with linear probing. Entries live in flat parallel arrays, so
// there is no per-entry allocation or boxing. Zero values are ordinary
// values: storing 0 is not a deletion. Not safe for concurrent use.
type Map[K Key, V Value] struct {
	table[K, V]
}

// New returns an empty map. Options tune capacity, load factors and
// hashing; the zero-option form is ready to use.
func New[K Key, V Value](opts ...Option[K, V]) (*Map[K, V], error) {
	m := &Map[K, V]{}
	if err := m.init(opts...); err != nil {
		return nil, err
	}

	return m, nil
}

// Len returns the number of live entries.
func (m *Map[K, V]) Len() int {
	return m.occupied
}

// Put associates value with key, overwriting any previous association.
func (m *Map[K, V]) Put(key K, value V) {
	m.upsert(key, value)
}

// Get returns the value stored for key. The second return is false on a
// miss, which tells an absent key apart from a stored zero.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if i, found := m.locate(key); found {
		return m.vals[i], true
	}

	var zero V
	return zero, false
}

// ContainsKey reports whether key is present.
func (m *Map[K, V]) ContainsKey(key K) bool {
	_, found := m.locate(key)
	return found
}

// ContainsValue reports whether any entry holds value. Linear scan.
func (m *Map[K, V]) ContainsValue(value V) bool {
	found := false
	m.Range(func(_ K, v V) bool {
		found = v == value
		return !found
	})

	return found
}

// Delete removes key and reports whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	return m.remove(key)
}

// AdjustOrPut adds adjust to the stored value when key is present,
// otherwise inserts initial. Returns the value now associated with key.
// The table is probed once for the whole operation.
func (m *Map[K, V]) AdjustOrPut(key K, adjust, initial V) V {
	i, found := m.locate(key)
	if found {
		m.vals[i] += adjust
		return m.vals[i]
	}

	m.setSlot(i, key, initial)
	m.growIfNeeded()

	return initial
}

// Clear drops every entry and resets storage to the minimum capacity.
func (m *Map[K, V]) Clear() {
	m.clear()
}

// EnsureCapacity grows storage until minEntries entries fit without a
// rehash. Use it ahead of bulk loads to skip incremental growth.
func (m *Map[K, V]) EnsureCapacity(minEntries int) error {
	return m.ensureEntries(minEntries)
}

// Trim shrinks storage to the smallest capacity that keeps the current
// entries within the max load factor.
func (m *Map[K, V]) Trim() {
	m.trim()
}

// Range calls f for every entry in storage order until f returns false.
// The map must not be modified during the walk.
func (m *Map[K, V]) Range(f func(key K, value V) bool) {
	for i, s := range m.states {
		if s != slotOccupied {
			continue
		}

		if !f(m.keys[i], m.vals[i]) {
			return
		}
	}
}

// RangeKeys is Range over keys alone.
func (m *Map[K, V]) RangeKeys(f func(key K) bool) {
	m.Range(func(k K, _ V) bool {
		return f(k)
	})
}

// All returns the entries as an iterator for range-over-func loops.
func (m *Map[K, V]) All() func(yield func(K, V) bool) {
	return m.Range
}

// Keys returns the keys in storage order.
func (m *Map[K, V]) Keys() []K {
	return m.AppendKeys(make([]K, 0, m.Len()))
}

// AppendKeys appends the keys in storage order to dst. Pass dst[:0] to
// reuse a buffer.
func (m *Map[K, V]) AppendKeys(dst []K) []K {
	m.RangeKeys(func(k K) bool {
		dst = append(dst, k)
		return true
	})

	return dst
}

// Values returns the values in storage order.
func (m *Map[K, V]) Values() []V {
	return m.AppendValues(make([]V, 0, m.Len()))
}

// AppendValues appends the values in storage order to dst.
func (m *Map[K, V]) AppendValues(dst []V) []V {
	m.Range(func(_ K, v V) bool {
		dst = append(dst, v)
		return true
	})

	return dst
}

// AppendPairs appends every entry satisfying pred to keys and vals, in
// storage order. A nil pred matches everything. The outputs are appended
// to, never cleared, so results can accumulate across calls.
func (m *Map[K, V]) AppendPairs(pred func(key K, value V) bool, keys []K, vals []V) ([]K, []V) {
	m.Range(func(k K, v V) bool {
		if pred == nil || pred(k, v) {
			keys = append(keys, k)
			vals = append(vals, v)
		}

		return true
	})

	return keys, vals
}

// PairsSortedByKey appends every entry to keys and vals, ordered by
// ascending key. Pass dst[:0] slices to reuse buffers.
func (m *Map[K, V]) PairsSortedByKey(keys []K, vals []V) ([]K, []V) {
	i, j := len(keys), len(vals)
	keys, vals = m.AppendPairs(nil, keys, vals)
	sort.Stable(&pairSorter[K, V]{keys: keys[i:], vals: vals[j:], byKey: true})

	return keys, vals
}

// PairsSortedByValue appends every entry to keys and vals, ordered by
// ascending value. Entries with equal values keep their storage order.
func (m *Map[K, V]) PairsSortedByValue(keys []K, vals []V) ([]K, []V) {
	i, j := len(keys), len(vals)
	keys, vals = m.AppendPairs(nil, keys, vals)
	sort.Stable(&pairSorter[K, V]{keys: keys[i:], vals: vals[j:]})

	return keys, vals
}

// KeysSortedByValue appends the keys to dst, ordered by ascending value
// with ties resolved by storage order.
func (m *Map[K, V]) KeysSortedByValue(dst []K) []K {
	i := len(dst)
	dst, vals := m.AppendPairs(nil, dst, make([]V, 0, m.Len()))
	sort.Stable(&pairSorter[K, V]{keys: dst[i:], vals: vals})

	return dst
}

// Clone returns an independent copy. Only the hash function is shared, so
// clone and original keep identical slot layouts until one of them
// rehashes.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{table: m.table}
	c.keys = slices.Clone(m.keys)
	c.vals = slices.Clone(m.vals)
	c.states = slices.Clone(m.states)

	return c
}

// Equal reports whether m and other hold exactly the same key/value
// pairs. Capacity, load factors and storage layout do not participate.
func (m *Map[K, V]) Equal(other *Map[K, V]) bool {
	if other == nil || m.occupied != other.occupied {
		return false
	}

	equal := true
	m.Range(func(k K, v V) bool {
		ov, ok := other.Get(k)
		equal = ok && ov == v
		return equal
	})

	return equal
}

// Stats returns a snapshot of the table's internal factors.
func (m *Map[K, V]) Stats() Stats {
	return m.stats()
}

// String renders the map in Go literal style with entries sorted by key,
// e.g. map[1:10 2:20].
func (m *Map[K, V]) String() string {
	keys, vals := m.PairsSortedByKey(nil, nil)

	var b strings.Builder
	b.WriteString("map[")
	for i := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v:%v", keys[i], vals[i])
	}
	b.WriteByte(']')

	return b.String()
}

// pairSorter stable-sorts parallel key/value slices as one unit, by key or
// by value. The two slices have to move together, hence sort.Interface.
type pairSorter[K Key, V Value] struct {
	keys  []K
	vals  []V
	byKey bool
}

func (p *pairSorter[K, V]) Len() int { return len(p.keys) }

func (p *pairSorter[K, V]) Less(i, j int) bool {
	if p.byKey {
		return p.keys[i] < p.keys[j]
	}

	return p.vals[i] < p.vals[j]
}

func (p *pairSorter[K, V]) Swap(i, j int) {
	p.keys[i], p.keys[j] = p.keys[j], p.keys[i]
	p.vals[i], p.vals[j] = p.vals[j], p.vals[i]
}
