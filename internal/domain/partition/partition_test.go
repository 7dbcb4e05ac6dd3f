package partition_test

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/partition"
	"github.com/okian/revgroups/internal/domain/registry"
)

func members(n int) []model.Member {
	out := make([]model.Member, n)
	for i := range out {
		out[i] = model.Member{Participant: model.Real(fmt.Sprintf("p%02d", i)), Presenter: true}
	}
	return out
}

func participants(prefix string, n int) []model.Participant {
	out := make([]model.Participant, n)
	for i := range out {
		out[i] = model.Real(fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

func canonical(groups []model.Group) string {
	keys := make([]string, len(groups))
	for i, g := range groups {
		ids := make([]string, len(g))
		for j, m := range g {
			ids[j] = m.Participant.Key()
		}
		slices.Sort(ids)
		keys[i] = fmt.Sprint(ids)
	}
	slices.Sort(keys)
	return fmt.Sprint(keys)
}

func TestExhaustiveCount(t *testing.T) {
	cases := []struct {
		n, k int
		want int64
	}{
		{0, 3, 1},
		{4, 2, 3},
		{6, 2, 15},
		{6, 3, 10},
		{8, 4, 35},
		{9, 3, 280},
		{12, 4, 5775},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d/%d", tc.n, tc.k), func(t *testing.T) {
			got, err := partition.ExhaustiveCount(tc.n, tc.k)
			require.NoError(t, err)
			require.Equal(t, tc.want, got.Int64())

			seq, err := partition.Exhaustive(members(tc.n), tc.k)
			require.NoError(t, err)

			seen := make(map[string]struct{})
			for groups := range seq {
				covered := make(map[string]int)
				for _, g := range groups {
					require.Len(t, g, tc.k)
					for _, m := range g {
						covered[m.Participant.Key()]++
					}
				}
				require.Len(t, covered, tc.n)
				for id, c := range covered {
					require.Equal(t, 1, c, "member %s appears twice", id)
				}
				key := canonical(groups)
				require.NotContains(t, seen, key)
				seen[key] = struct{}{}
			}
			require.Len(t, seen, int(tc.want))
		})
	}
}

func TestExhaustiveOrderIsStable(t *testing.T) {
	first, err := partition.Exhaustive(members(6), 3)
	require.NoError(t, err)
	second, err := partition.Exhaustive(members(6), 3)
	require.NoError(t, err)

	var a, b []string
	for g := range first {
		a = append(a, canonical(g))
	}
	for g := range second {
		b = append(b, canonical(g))
	}
	require.Equal(t, a, b)
	require.Equal(t, "[[p00 p01 p02] [p03 p04 p05]]", a[0])
}

func TestExhaustiveStopsEarly(t *testing.T) {
	seq, err := partition.Exhaustive(members(8), 2)
	require.NoError(t, err)
	n := 0
	for range seq {
		n++
		if n == 5 {
			break
		}
	}
	require.Equal(t, 5, n)
}

func TestExhaustiveRejectsBadSizes(t *testing.T) {
	_, err := partition.Exhaustive(members(7), 3)
	require.ErrorIs(t, err, partition.ErrIndivisible)
	_, err = partition.Exhaustive(members(6), 0)
	require.ErrorIs(t, err, partition.ErrInvalidSize)
	_, err = partition.ExhaustiveCount(7, 2)
	require.ErrorIs(t, err, partition.ErrIndivisible)
}

func TestSizeTable(t *testing.T) {
	table := partition.DefaultSizeTable()
	require.NoError(t, table.Validate())

	sizes, err := table.Lookup(9)
	require.NoError(t, err)
	require.Equal(t, [][]int{{3, 3, 3}, {4, 5}}, sizes)

	_, err = table.Lookup(5)
	require.ErrorIs(t, err, partition.ErrNoSizeTemplate)

	bad := partition.SizeTable{5: {{2, 2}}}
	require.ErrorIs(t, bad.Validate(), partition.ErrInvalidSize)
}

func TestPlanPresenters(t *testing.T) {
	q, err := partition.PlanPresenters(6, []int{3, 3, 3})
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 2}, q)

	q, err = partition.PlanPresenters(7, []int{4, 5})
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, q)

	q, err = partition.PlanPresenters(4, []int{3, 3, 4})
	require.NoError(t, err)
	require.Equal(t, []int{1, 1, 2}, q)

	_, err = partition.PlanPresenters(2, []int{3, 3, 3})
	require.ErrorIs(t, err, partition.ErrInfeasibleTemplate)

	_, err = partition.PlanPresenters(9, []int{4, 4})
	require.ErrorIs(t, err, partition.ErrInfeasibleTemplate)
}

func TestRandomizedBalancesPresenters(t *testing.T) {
	presenters := participants("p", 6)
	reviewers := participants("r", 3)
	rng := rand.New(rand.NewPCG(7, 11))

	count := 0
	for groups := range partition.Randomized(presenters, reviewers, [][]int{{3, 3, 3}}, 50, rng) {
		count++
		total := 0
		seen := make(map[string]struct{})
		for _, g := range groups {
			require.Len(t, g, 3)
			require.NotZero(t, g.Presenters())
			total += g.Presenters()
			for _, m := range g {
				seen[m.Participant.Key()] = struct{}{}
			}
		}
		require.Equal(t, 6, total)
		require.Len(t, seen, 9)
	}
	require.Equal(t, 50, count)
}

func TestRandomizedIsReproducible(t *testing.T) {
	presenters := participants("p", 6)
	reviewers := participants("r", 3)
	sizes := [][]int{{3, 3, 3}, {4, 5}}

	run := func() []string {
		var out []string
		rng := rand.New(rand.NewPCG(42, 42))
		for g := range partition.Randomized(presenters, reviewers, sizes, 5, rng) {
			out = append(out, canonical(g))
		}
		return out
	}
	a, b := run(), run()
	require.Len(t, a, 10)
	require.Equal(t, a, b)
}

func TestRandomizedSkipsInfeasibleTemplates(t *testing.T) {
	var rejected [][]int
	hook := partition.WithRejectHook(func(sizes []int, err error) {
		require.ErrorIs(t, err, partition.ErrInfeasibleTemplate)
		rejected = append(rejected, sizes)
	})
	rng := rand.New(rand.NewPCG(1, 2))
	seq := partition.Randomized(participants("p", 2), participants("r", 7), [][]int{{3, 3, 3}, {4, 5}, {4, 4}}, 3, rng, hook)

	count := 0
	for range seq {
		count++
	}
	require.Equal(t, 3, count)
	require.Equal(t, [][]int{{3, 3, 3}, {4, 4}}, rejected)
}

func TestGuestCompositions(t *testing.T) {
	roles := []model.Role{model.RoleViz, model.RoleData, model.RoleEngineer}

	var all [][]model.Role
	for comp := range partition.GuestCompositions(roles, 2) {
		all = append(all, comp)
	}
	require.Len(t, all, 6)
	require.Equal(t, []model.Role{model.RoleViz, model.RoleViz}, all[0])
	require.Equal(t, []model.Role{model.RoleEngineer, model.RoleEngineer}, all[5])

	var none [][]model.Role
	for comp := range partition.GuestCompositions(roles, 0) {
		none = append(none, comp)
	}
	require.Equal(t, [][]model.Role{{}}, none)

	limits := partition.RoleLimits{model.RoleEngineer: 1}
	require.True(t, limits.Allows([]model.Role{model.RoleViz, model.RoleEngineer}))
	require.False(t, limits.Allows([]model.Role{model.RoleEngineer, model.RoleEngineer}))
	require.True(t, limits.Allows([]model.Role{model.RoleData, model.RoleData, model.RoleData}))

	guests := partition.Guests([]model.Role{model.RoleData, model.RoleData})
	require.NotEqual(t, guests[0].Key(), guests[1].Key())
	require.True(t, guests[1].IsGuest())
}

func TestGuestFilter(t *testing.T) {
	reg, err := registry.New([]model.Person{
		{ID: "E1", Role: model.RoleEngineer, Squad: "X"},
		{ID: "E2", Role: model.RoleEngineer, Squad: "X"},
		{ID: "V1", Role: model.RoleViz, Squad: "X"},
		{ID: "V2", Role: model.RoleViz, Squad: "Y"},
	})
	require.NoError(t, err)

	guest := model.Member{Participant: model.Guest(model.RoleEngineer, 0)}
	member := func(id string) model.Member { return model.Member{Participant: model.Real(id), Presenter: true} }
	filter := partition.GuestFilter{MinSameRole: 2}

	ok, err := filter.Accept(reg, []model.Group{{guest, member("E1"), member("V1"), member("V2")}})
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = filter.Accept(reg, []model.Group{{guest, member("E1"), member("E2"), member("V1")}})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = filter.Accept(reg, []model.Group{{member("V1"), member("V2")}})
	require.NoError(t, err)
	require.True(t, ok)

	_, err = filter.Accept(reg, []model.Group{{guest, member("nobody")}})
	require.ErrorIs(t, err, registry.ErrUnknownPerson)
}

func TestFingerprint(t *testing.T) {
	a := model.Member{Participant: model.Real("A"), Presenter: true}
	b := model.Member{Participant: model.Real("B")}
	c := model.Member{Participant: model.Real("C"), Presenter: true}
	g0 := model.Member{Participant: model.Guest(model.RoleViz, 0)}
	g1 := model.Member{Participant: model.Guest(model.RoleViz, 1)}

	base := partition.Fingerprint([]model.Group{{a, b}, {c, g0}})
	require.Equal(t, base, partition.Fingerprint([]model.Group{{c, g1}, {b, a}}))
	require.NotEqual(t, base, partition.Fingerprint([]model.Group{{a, c}, {b, g0}}))

	flipped := model.Member{Participant: model.Real("B"), Presenter: true}
	require.NotEqual(t, base, partition.Fingerprint([]model.Group{{a, flipped}, {c, g0}}))
}
