package primemap

import "unsafe"

// CapacityFromSize estimates how many slots fit in a memory budget of
// `size` bytes, from the per-slot cost of the parallel key, value and
// state arrays. Feed the result to WithCapacity to bound a map's memory.
func CapacityFromSize[K Key, V Value](size uintptr) int {
	var (
		k K
		v V
	)

	perSlot := unsafe.Sizeof(k) + unsafe.Sizeof(v) + unsafe.Sizeof(state(0))

	return int(size / perSlot)
}
