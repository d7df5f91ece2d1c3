package collect

import (
	"fmt"
	"testing"
)

func genAddrs(n int) []string {
	addrs := make([]string, n)
	for i := range addrs {
		addrs[i] = fmt.Sprintf("0x%040d", i)
	}
	return addrs
}

func TestPartition(t *testing.T) {
	tests := []struct {
		n, size   int
		wantSizes []int
	}{
		{250, 100, []int{100, 100, 50}},
		{100, 100, []int{100}},
		{0, 100, nil},
		{1, 100, []int{1}},
		{5, 1, []int{1, 1, 1, 1, 1}},
		{7, 3, []int{3, 3, 1}},
		{5, 0, []int{1, 1, 1, 1, 1}}, // size clamps to 1
	}

	for _, tt := range tests {
		items := genAddrs(tt.n)
		batches := Partition(items, tt.size)

		if len(batches) != len(tt.wantSizes) {
			t.Errorf("Partition(n=%d, size=%d): %d batches, want %d",
				tt.n, tt.size, len(batches), len(tt.wantSizes))
			continue
		}
		for i, want := range tt.wantSizes {
			if len(batches[i]) != want {
				t.Errorf("Partition(n=%d, size=%d): batch %d has %d items, want %d",
					tt.n, tt.size, i, len(batches[i]), want)
			}
		}

		// Concatenation equals the input, in order, with no duplicates.
		var flat []string
		for _, b := range batches {
			flat = append(flat, b...)
		}
		if len(flat) != tt.n {
			t.Errorf("Partition(n=%d, size=%d): flattened to %d items", tt.n, tt.size, len(flat))
			continue
		}
		for i, addr := range flat {
			if addr != items[i] {
				t.Errorf("Partition(n=%d, size=%d): item %d reordered", tt.n, tt.size, i)
				break
			}
		}
	}
}
