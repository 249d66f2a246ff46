package primemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapacityFromSize(t *testing.T) {
	// uint64 key + uint64 value + one state byte: 17 bytes per slot.
	require.Equal(t, 100, CapacityFromSize[uint64, uint64](1700))

	// int32 key + float64 value + one state byte: 13 bytes per slot.
	require.Equal(t, 10, CapacityFromSize[int32, float64](130))

	require.Equal(t, 0, CapacityFromSize[uint64, uint64](16))
}

func TestCapacityFromSize_FeedsWithCapacity(t *testing.T) {
	capacity := CapacityFromSize[uint64, uint64](1 << 20)
	require.Positive(t, capacity)

	m := mustNewMap(t, WithCapacity[uint64, uint64](capacity))
	require.GreaterOrEqual(t, m.Stats().Capacity, capacity)
}
