package collect

// Partition splits items into consecutive, non-overlapping batches of at
// most size elements, preserving order. The last batch may be smaller. It
// always produces ceil(len(items)/size) batches and never copies.
func Partition(items []string, size int) [][]string {
	if size < 1 {
		size = 1
	}

	var batches [][]string
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches
}
