package primemap

import "hash/maphash"

// HashFunc hashes a key to 64 bits. The table reduces the result modulo
// its prime capacity, so even weakly mixed functions spread acceptably;
// an identity function is fine for keys that are already uniform.
type HashFunc[K comparable] func(K) uint64

// MakeDefaultHashFunc returns a maphash-backed hash function with a fresh
// random seed. Two functions from separate calls hash the same key
// differently, so hashes must never leak across tables.
func MakeDefaultHashFunc[K comparable]() HashFunc[K] {
	seed := maphash.MakeSeed()

	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}

// MakeSeededHashFunc is MakeDefaultHashFunc with an explicit seed, for
// callers that need reproducible placement across runs or tables.
func MakeSeededHashFunc[K comparable](seed maphash.Seed) HashFunc[K] {
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}
