package partition

import (
	"fmt"
	"iter"

	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/registry"
)

// GuestCompositions yields every multiset of slots guest roles, as
// combinations with replacement in the order roles are given. No slots
// yields a single empty composition.
func GuestCompositions(roles []model.Role, slots int) iter.Seq[[]model.Role] {
	return func(yield func([]model.Role) bool) {
		if slots < 0 || (slots > 0 && len(roles) == 0) {
			return
		}
		idx := make([]int, slots)
		for {
			comp := make([]model.Role, slots)
			for i, j := range idx {
				comp[i] = roles[j]
			}
			if !yield(comp) {
				return
			}
			i := slots - 1
			for i >= 0 && idx[i] == len(roles)-1 {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < slots; j++ {
				idx[j] = idx[i]
			}
		}
	}
}

// RoleLimits caps how many guests of a role one composition may hold.
// Roles without an entry are unlimited.
type RoleLimits map[model.Role]int

// Allows reports whether comp stays within every cap.
func (l RoleLimits) Allows(comp []model.Role) bool {
	counts := make(map[model.Role]int, len(comp))
	for _, r := range comp {
		counts[r]++
		if limit, ok := l[r]; ok && counts[r] > limit {
			return false
		}
	}
	return true
}

// Guests turns a composition into placeholder participants with distinct
// slots.
func Guests(comp []model.Role) []model.Participant {
	out := make([]model.Participant, len(comp))
	for i, r := range comp {
		out[i] = model.Guest(r, i)
	}
	return out
}

// GuestFilter rejects groups where a guest of some role would sit with too
// few genuine members of that role.
type GuestFilter struct {
	MinSameRole int
}

// Accept reports whether every group holding a guest of role R also holds at
// least MinSameRole real members of R.
func (f GuestFilter) Accept(reg *registry.Registry, groups []model.Group) (bool, error) {
	for gi, g := range groups {
		var guestRoles []model.Role
		genuine := make(map[model.Role]int, len(g))
		for _, m := range g {
			if m.Participant.IsGuest() {
				guestRoles = append(guestRoles, m.Participant.GuestRole())
				continue
			}
			a, err := reg.Lookup(m.Participant)
			if err != nil {
				return false, fmt.Errorf("group %d: %w", gi, err)
			}
			genuine[a.Role]++
		}
		for _, r := range guestRoles {
			if genuine[r] < f.MinSameRole {
				return false, nil
			}
		}
	}
	return true, nil
}
