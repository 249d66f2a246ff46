package primemap

import (
	"errors"
	"sort"
)

// MaxCapacity is the largest capacity a table can reach. It is itself
// prime, so every request up to and including it has an exact answer.
const MaxCapacity = 1<<31 - 1

// ErrCapacityExceeded is returned when a requested capacity is beyond the
// largest supported prime.
var ErrCapacityExceeded = errors.New("capacity exceeds the largest supported prime")

// smallPrimes lists every prime below 1000. Requests past the table fall
// back to trial division.
var smallPrimes = []int{
	2, 3, 5, 7, 11, 13, 17, 19, 23, 29,
	31, 37, 41, 43, 47, 53, 59, 61, 67, 71,
	73, 79, 83, 89, 97, 101, 103, 107, 109, 113,
	127, 131, 137, 139, 149, 151, 157, 163, 167, 173,
	179, 181, 191, 193, 197, 199, 211, 223, 227, 229,
	233, 239, 241, 251, 257, 263, 269, 271, 277, 281,
	283, 293, 307, 311, 313, 317, 331, 337, 347, 349,
	353, 359, 367, 373, 379, 383, 389, 397, 401, 409,
	419, 421, 431, 433, 439, 443, 449, 457, 461, 463,
	467, 479, 487, 491, 499, 503, 509, 521, 523, 541,
	547, 557, 563, 569, 571, 577, 587, 593, 599, 601,
	607, 613, 617, 619, 631, 641, 643, 647, 653, 659,
	661, 673, 677, 683, 691, 701, 709, 719, 727, 733,
	739, 743, 751, 757, 761, 769, 773, 787, 797, 809,
	811, 821, 823, 827, 829, 839, 853, 857, 859, 863,
	877, 881, 883, 887, 907, 911, 919, 929, 937, 941,
	947, 953, 967, 971, 977, 983, 991, 997,
}

// NextPrime returns the smallest prime greater than or equal to n.
// Arguments below 2 round up to 2. Fails with ErrCapacityExceeded when n
// is larger than MaxCapacity.
func NextPrime(n int) (int, error) {
	if n > MaxCapacity {
		return 0, ErrCapacityExceeded
	}
	if n <= 2 {
		return 2, nil
	}
	if last := smallPrimes[len(smallPrimes)-1]; n <= last {
		return smallPrimes[sort.SearchInts(smallPrimes, n)], nil
	}
	if n%2 == 0 {
		n++
	}
	for !isPrime(n) {
		n += 2
	}
	return n, nil
}

// nextPrimeClamped is NextPrime for internal growth math: instead of
// failing past MaxCapacity it saturates there.
func nextPrimeClamped(n int) int {
	if n >= MaxCapacity {
		return MaxCapacity
	}
	p, _ := NextPrime(n)
	return p
}

func isPrime(n int) bool {
	if n%2 == 0 {
		return n == 2
	}
	// d <= n/d avoids overflowing d*d near the int32 boundary.
	for d := 3; d <= n/d; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}
