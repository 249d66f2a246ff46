package primemap

// Stats is a point-in-time snapshot of a table's sizing state.
type Stats struct {
	Capacity      int
	Size          int
	Tombstones    int
	MinLoadFactor float64
	MaxLoadFactor float64
	Rehashes      int
}

// Load returns the fraction of slots holding live entries.
func (s Stats) Load() float64 {
	if s.Capacity == 0 {
		return 0
	}

	return float64(s.Size) / float64(s.Capacity)
}

// TombstoneRatio returns the fraction of slots lost to tombstones.
func (s Stats) TombstoneRatio() float64 {
	if s.Capacity == 0 {
		return 0
	}

	return float64(s.Tombstones) / float64(s.Capacity)
}
