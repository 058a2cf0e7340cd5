package lrucache

import "fmt"

// Stats contains cache statistics.
type Stats struct {
	Size      int
	Capacity  int
	Hits      int64
	Misses    int64
	Evictions int64
	Inserts   int64
}

// HitRate returns hits/(hits+misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Lookups returns the total number of Get calls counted.
func (s Stats) Lookups() int64 {
	return s.Hits + s.Misses
}

func (s Stats) String() string {
	return fmt.Sprintf("size=%d/%d hits=%d misses=%d hit_rate=%.2f%% evictions=%d inserts=%d",
		s.Size, s.Capacity, s.Hits, s.Misses, s.HitRate()*100, s.Evictions, s.Inserts)
}
