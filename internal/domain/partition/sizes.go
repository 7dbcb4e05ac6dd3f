package partition

import (
	"fmt"
	"maps"
	"slices"
)

// SizeTable maps a population count to the group-size multisets that are
// acceptable for it.
type SizeTable map[int][][]int

// DefaultSizeTable returns the built-in templates for 6 to 16 people.
func DefaultSizeTable() SizeTable {
	return SizeTable{
		6:  {{3, 3}},
		7:  {{3, 4}},
		8:  {{4, 4}},
		9:  {{3, 3, 3}, {4, 5}},
		10: {{3, 3, 4}, {5, 5}},
		11: {{3, 4, 4}, {5, 6}},
		12: {{3, 3, 3, 3}, {4, 4, 4}},
		13: {{3, 3, 3, 4}, {4, 4, 5}},
		14: {{3, 3, 4, 4}, {4, 5, 5}},
		15: {{3, 3, 3, 3, 3}, {3, 4, 4, 4}, {5, 5, 5}},
		16: {{4, 4, 4, 4}, {3, 3, 3, 3, 4}},
	}
}

// Lookup returns the templates for a population of n. A missing entry is a
// configuration error.
func (t SizeTable) Lookup(n int) ([][]int, error) {
	sizes, ok := t[n]
	if !ok || len(sizes) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoSizeTemplate, n)
	}
	out := make([][]int, len(sizes))
	for i, s := range sizes {
		out[i] = slices.Clone(s)
	}
	return out, nil
}

// Validate checks that every template covers its population exactly with
// positive group sizes.
func (t SizeTable) Validate() error {
	for _, n := range slices.Sorted(maps.Keys(t)) {
		for _, sizes := range t[n] {
			sum := 0
			for _, s := range sizes {
				if s <= 0 {
					return fmt.Errorf("%w: template %v for %d", ErrInvalidSize, sizes, n)
				}
				sum += s
			}
			if sum != n {
				return fmt.Errorf("%w: template %v sums to %d, want %d", ErrInvalidSize, sizes, sum, n)
			}
		}
	}
	return nil
}
