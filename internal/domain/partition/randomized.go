package partition

import (
	"cmp"
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"

	"github.com/okian/revgroups/internal/domain/model"
)

// RandomOption configures Randomized.
type RandomOption func(*randomConfig)

type randomConfig struct {
	onReject func(sizes []int, err error)
}

// WithRejectHook is called once for every template that cannot be used.
func WithRejectHook(fn func(sizes []int, err error)) RandomOption {
	return func(c *randomConfig) {
		if fn != nil {
			c.onReject = fn
		}
	}
}

// Randomized yields, for every feasible template and every trial, one
// grouping built by shuffling presenters and reviewers independently and
// slicing them into groups with balanced presenter quotas. Reproducible
// only when rng is seeded.
func Randomized(presenters, reviewers []model.Participant, sizes [][]int, trials int, rng *rand.Rand, opts ...RandomOption) iter.Seq[[]model.Group] {
	cfg := randomConfig{onReject: func([]int, error) {}}
	for _, opt := range opts {
		opt(&cfg)
	}
	ps := slices.Clone(presenters)
	rs := slices.Clone(reviewers)
	templates := make([][]int, len(sizes))
	for i, s := range sizes {
		templates[i] = slices.Clone(s)
	}

	return func(yield func([]model.Group) bool) {
		for _, template := range templates {
			quotas, err := planTemplate(len(ps), len(rs), template)
			if err != nil {
				cfg.onReject(slices.Clone(template), err)
				continue
			}
			for range trials {
				rng.Shuffle(len(ps), func(i, j int) { ps[i], ps[j] = ps[j], ps[i] })
				rng.Shuffle(len(rs), func(i, j int) { rs[i], rs[j] = rs[j], rs[i] })
				if !yield(deal(ps, rs, template, quotas)) {
					return
				}
			}
		}
	}
}

func planTemplate(presenters, reviewers int, sizes []int) ([]int, error) {
	total := 0
	for _, s := range sizes {
		total += s
	}
	if total != presenters+reviewers {
		return nil, fmt.Errorf("%w: template %v holds %d, population is %d", ErrInfeasibleTemplate, sizes, total, presenters+reviewers)
	}
	return PlanPresenters(presenters, sizes)
}

// PlanPresenters splits total presenters over groups of the given sizes so
// every group gets floor or ceil of total/len(sizes). Larger groups take the
// ceil share first. A template where some group would get no presenter, or
// more presenters than seats, is infeasible.
func PlanPresenters(total int, sizes []int) ([]int, error) {
	g := len(sizes)
	if g == 0 {
		return nil, fmt.Errorf("%w: empty template", ErrInfeasibleTemplate)
	}
	base, extra := total/g, total%g

	order := make([]int, g)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(sizes[b], sizes[a])
	})

	quotas := make([]int, g)
	for rank, i := range order {
		quotas[i] = base
		if rank < extra {
			quotas[i]++
		}
	}
	for i, q := range quotas {
		if q == 0 || q > sizes[i] {
			return nil, fmt.Errorf("%w: %d presenters over %v", ErrInfeasibleTemplate, total, sizes)
		}
	}
	return quotas, nil
}

func deal(presenters, reviewers []model.Participant, sizes, quotas []int) []model.Group {
	groups := make([]model.Group, len(sizes))
	p, r := 0, 0
	for i, size := range sizes {
		g := make(model.Group, 0, size)
		for range quotas[i] {
			g = append(g, model.Member{Participant: presenters[p], Presenter: true})
			p++
		}
		for range size - quotas[i] {
			g = append(g, model.Member{Participant: reviewers[r]})
			r++
		}
		groups[i] = g
	}
	return groups
}
