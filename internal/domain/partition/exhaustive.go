// Package partition generates candidate groupings of a population.
package partition

import (
	"fmt"
	"iter"
	"math/big"
	"slices"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/okian/revgroups/internal/domain/model"
)

// Exhaustive yields every partition of members into unordered groups of
// size, each exactly once. The first remaining member is always bound and
// its co-members are picked by lexicographic combination of the rest, so
// the order is stable across runs.
func Exhaustive(members []model.Member, size int) (iter.Seq[[]model.Group], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if len(members)%size != 0 {
		return nil, fmt.Errorf("%w: %d members into groups of %d", ErrIndivisible, len(members), size)
	}
	pool := slices.Clone(members)
	return func(yield func([]model.Group) bool) {
		partitions(pool, size, make([]model.Group, 0, len(pool)/size), yield)
	}, nil
}

func partitions(rest []model.Member, size int, acc []model.Group, yield func([]model.Group) bool) bool {
	if len(rest) == 0 {
		out := make([]model.Group, len(acc))
		for i, g := range acc {
			out[i] = slices.Clone(g)
		}
		return yield(out)
	}

	head, tail := rest[0], rest[1:]
	for picked := range combinations(len(tail), size-1) {
		group := make(model.Group, 0, size)
		group = append(group, head)
		remaining := make([]model.Member, 0, len(tail)-len(picked))
		j := 0
		for i, m := range tail {
			if j < len(picked) && picked[j] == i {
				group = append(group, m)
				j++
				continue
			}
			remaining = append(remaining, m)
		}
		if !partitions(remaining, size, append(acc, group), yield) {
			return false
		}
	}
	return true
}

// combinations yields k-subsets of [0, n) as ascending index slices in
// lexicographic order. The yielded slice is reused between iterations.
func combinations(n, k int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if k < 0 || k > n {
			return
		}
		if k == 0 {
			yield(nil)
			return
		}
		gen := combin.NewCombinationGenerator(n, k)
		idx := make([]int, k)
		for gen.Next() {
			if !yield(gen.Combination(idx)) {
				return
			}
		}
	}
}

// ExhaustiveCount returns how many groupings Exhaustive yields for n
// members in groups of k: n! / (k!^(n/k) * (n/k)!).
func ExhaustiveCount(n, k int) (*big.Int, error) {
	if k <= 0 || n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, k)
	}
	if n%k != 0 {
		return nil, fmt.Errorf("%w: %d members into groups of %d", ErrIndivisible, n, k)
	}
	count := big.NewInt(1)
	var b big.Int
	for left := n; left > 0; left -= k {
		count.Mul(count, b.Binomial(int64(left-1), int64(k-1)))
	}
	return count, nil
}
