package primemap

import (
	"errors"
	"math"
)

// Construction errors. Checked with errors.Is.
var (
	ErrInvalidCapacity   = errors.New("capacity must be positive")
	ErrInvalidLoadFactor = errors.New("load factors must satisfy 0 < min < max < 1")
)

const (
	// DefaultCapacity is the initial capacity when no WithCapacity option
	// is given. Same default as the classic Colt tables.
	DefaultCapacity = 277

	// DefaultMinCapacity floors every shrink and is the capacity a
	// cleared table restarts from.
	DefaultMinCapacity = 17

	DefaultMinLoadFactor = 0.2
	DefaultMaxLoadFactor = 0.5
)

// Slot states. A lookup may only stop at a genuinely empty slot: tombstones
// (slotRemoved) keep probe chains walkable past deleted entries.
type state uint8

const (
	slotEmpty state = iota
	slotOccupied
	slotRemoved
)

// table is the open-addressing core shared by Map and Set. Keys, values and
// slot states live in parallel arrays indexed by slot. Capacity is always
// prime, so linear probing with the modulo reduction cannot degenerate on
// stride-patterned key sets.
type table[K comparable, V any] struct {
	keys   []K
	vals   []V
	states []state

	occupied int // live entries
	removed  int // tombstones

	growAt   int // occupied above this triggers a grow rehash
	shrinkAt int // occupied below this triggers a shrink rehash

	rehashes int

	minLoad float64
	maxLoad float64

	initialCapacity int

	hashFn HashFunc[K]
}

type Option[K comparable, V any] func(t *table[K, V])

// WithCapacity requests an initial capacity, rounded up to the next prime.
func WithCapacity[K comparable, V any](capacity int) Option[K, V] {
	return func(t *table[K, V]) {
		t.initialCapacity = capacity
	}
}

// WithLoadFactors overrides the watermarks steering growth and shrinkage.
// Requires 0 < minLoad < maxLoad < 1.
func WithLoadFactors[K comparable, V any](minLoad, maxLoad float64) Option[K, V] {
	return func(t *table[K, V]) {
		t.minLoad = minLoad
		t.maxLoad = maxLoad
	}
}

// Override default hash function.
func WithHashFunc[K comparable, V any](f HashFunc[K]) Option[K, V] {
	return func(t *table[K, V]) {
		t.hashFn = f
	}
}

func (t *table[K, V]) defaults() {
	t.initialCapacity = DefaultCapacity
	t.minLoad = DefaultMinLoadFactor
	t.maxLoad = DefaultMaxLoadFactor
}

// build validates the configured parameters and allocates storage.
func (t *table[K, V]) build() error {
	if t.initialCapacity <= 0 {
		return ErrInvalidCapacity
	}
	if t.minLoad <= 0 || t.minLoad >= t.maxLoad || t.maxLoad >= 1 {
		return ErrInvalidLoadFactor
	}

	capacity, err := NextPrime(t.initialCapacity)
	if err != nil {
		return err
	}

	if t.hashFn == nil {
		t.hashFn = MakeDefaultHashFunc[K]()
	}

	t.alloc(capacity)

	return nil
}

func (t *table[K, V]) init(opts ...Option[K, V]) error {
	t.defaults()

	for _, opt := range opts {
		opt(t)
	}

	return t.build()
}

// alloc replaces storage with a fresh table of the given prime capacity and
// recomputes the watermarks. Entry counters reset; rehashes is left alone.
func (t *table[K, V]) alloc(capacity int) {
	t.keys = make([]K, capacity)
	t.vals = make([]V, capacity)
	t.states = make([]state, capacity)
	t.occupied = 0
	t.removed = 0

	// growAt stays below capacity-1 so a full-looking table still has
	// empty slots for probes to terminate on.
	t.growAt = min(capacity-2, int(t.maxLoad*float64(capacity)))
	t.shrinkAt = int(t.minLoad * float64(capacity))
}

// locate finds the slot for key. On a hit it returns (slot, true). On a
// miss it returns (insertion slot, false): the first tombstone passed on
// the probe path if there was one, otherwise the empty slot that ended the
// scan. The scan is bounded by capacity; the grow watermarks guarantee an
// empty slot exists, so a miss cannot loop.
func (t *table[K, V]) locate(key K) (int, bool) {
	capacity := len(t.keys)
	i := int(t.hashFn(key) % uint64(capacity))
	reuse := -1

	for range capacity {
		switch t.states[i] {
		case slotEmpty:
			if reuse >= 0 {
				return reuse, false
			}

			return i, false
		case slotOccupied:
			if t.keys[i] == key {
				return i, true
			}
		default: // slotRemoved
			if reuse < 0 {
				reuse = i
			}
		}

		i++
		if i == capacity {
			i = 0
		}
	}

	return reuse, false
}

// upsert stores key/value, overwriting any previous value for key. The
// grow check runs strictly after the write.
func (t *table[K, V]) upsert(key K, value V) {
	i, found := t.locate(key)
	if found {
		t.vals[i] = value
		return
	}

	t.setSlot(i, key, value)
	t.growIfNeeded()
}

// setSlot writes a new entry into a slot locate reported as free.
func (t *table[K, V]) setSlot(i int, key K, value V) {
	if t.states[i] == slotRemoved {
		t.removed--
	}

	t.keys[i] = key
	t.vals[i] = value
	t.states[i] = slotOccupied
	t.occupied++
}

// growIfNeeded rehashes when the table is past its high watermark or has
// run out of empty slots. Callers invoke it after the triggering insert.
func (t *table[K, V]) growIfNeeded() {
	if t.occupied <= t.growAt && t.occupied+t.removed < len(t.keys) {
		return
	}

	t.rehash(chooseGrowCapacity(t.occupied, t.minLoad, t.maxLoad))
}

// remove deletes key, leaving a tombstone so probe chains through the slot
// stay intact. Shrinks when occupancy falls below the low watermark.
func (t *table[K, V]) remove(key K) bool {
	i, found := t.locate(key)
	if !found {
		return false
	}

	t.states[i] = slotRemoved
	t.occupied--
	t.removed++

	t.shrinkIfNeeded()

	return true
}

func (t *table[K, V]) shrinkIfNeeded() {
	if t.occupied >= t.shrinkAt {
		return
	}

	capacity := max(chooseShrinkCapacity(t.occupied, t.minLoad, t.maxLoad), DefaultMinCapacity)
	if capacity < len(t.keys) {
		t.rehash(capacity)
	}
}

// rehash moves every live entry into freshly allocated storage of the
// given prime capacity, dropping all tombstones along the way. The new
// table is built completely before it is swapped in, so an allocation
// failure leaves the receiver as it was.
func (t *table[K, V]) rehash(capacity int) {
	n := *t
	n.alloc(capacity)
	n.rehashes++

	for i, s := range t.states {
		if s != slotOccupied {
			continue
		}

		j, _ := n.locate(t.keys[i])
		n.setSlot(j, t.keys[i], t.vals[i])
	}

	*t = n
}

// ensureEntries grows storage until minEntries entries fit without any
// further rehash. It never shrinks, and non-positive arguments are no-ops.
func (t *table[K, V]) ensureEntries(minEntries int) error {
	if minEntries <= 0 {
		return nil
	}

	capacity, err := NextPrime(int(math.Ceil(float64(minEntries) / t.maxLoad)))
	if err != nil {
		return err
	}

	if capacity > len(t.keys) {
		t.rehash(capacity)
	}

	return nil
}

// clear drops every entry and resets storage to the minimum capacity.
func (t *table[K, V]) clear() {
	t.alloc(DefaultMinCapacity)
}

// trim rehashes into the smallest capacity that still honors the max load
// factor, reclaiming slack left behind by deletions.
func (t *table[K, V]) trim() {
	capacity := max(nextPrimeClamped(int(math.Ceil(float64(t.occupied)/t.maxLoad))), DefaultMinCapacity)
	if capacity < len(t.keys) {
		t.rehash(capacity)
	}
}

func (t *table[K, V]) stats() Stats {
	return Stats{
		Capacity:      len(t.keys),
		Size:          t.occupied,
		Tombstones:    t.removed,
		MinLoadFactor: t.minLoad,
		MaxLoadFactor: t.maxLoad,
		Rehashes:      t.rehashes,
	}
}

// chooseGrowCapacity picks the post-grow capacity for a table holding size
// entries: the next prime at or above 4*size/(3*minLoad+maxLoad), which
// lands occupancy between the watermarks, nearer the low one.
func chooseGrowCapacity(size int, minLoad, maxLoad float64) int {
	return nextPrimeClamped(max(size+1, int(4.0*float64(size)/(3.0*minLoad+maxLoad))))
}

// chooseShrinkCapacity mirrors chooseGrowCapacity with the bias flipped
// toward the high watermark, so grow/shrink cycles cannot thrash.
func chooseShrinkCapacity(size int, minLoad, maxLoad float64) int {
	return nextPrimeClamped(max(size+1, int(4.0*float64(size)/(minLoad+3.0*maxLoad))))
}
