package report

// PageCapacity is the number of photos on one photo page: two columns by three rows
const PageCapacity = 6

// Chunk partitions items into consecutive groups of at most capacity elements,
// preserving order. Group i holds items [i*capacity, i*capacity+capacity).
// An empty input yields no groups. A non-positive capacity falls back to PageCapacity.
func Chunk[T any](items []T, capacity int) [][]T {
	if capacity <= 0 {
		capacity = PageCapacity
	}
	if len(items) == 0 {
		return nil
	}

	groups := make([][]T, 0, (len(items)+capacity-1)/capacity)
	for start := 0; start < len(items); start += capacity {
		end := min(start+capacity, len(items))
		// full slice expression keeps appends on one group from leaking into the next
		groups = append(groups, items[start:end:end])
	}
	return groups
}
