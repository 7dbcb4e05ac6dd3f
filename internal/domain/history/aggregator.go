package history

import (
	"fmt"
	"slices"

	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/registry"
)

// Stats is the aggregated review state of every participant, keyed by
// participant key.
type Stats struct {
	people map[string]*PersonStats
	keys   []string // sorted; iteration order for reproducible float sums
	frozen bool
}

// NewStats returns pristine stats seeded with every person in reg.
func NewStats(reg *registry.Registry) *Stats {
	ids := reg.IDs()
	s := &Stats{
		people: make(map[string]*PersonStats, len(ids)),
		keys:   ids,
	}
	for _, id := range ids {
		s.people[id] = newPersonStats()
	}
	return s
}

// Replay aggregates records, oldest first, into frozen stats. Clones of the
// result share its read-only parts.
func Replay(reg *registry.Registry, records []model.Session) (*Stats, error) {
	s := NewStats(reg)
	for i, rec := range records {
		if err := s.Shift(); err != nil {
			return nil, err
		}
		if err := s.Record(reg, rec); err != nil {
			return nil, fmt.Errorf("history record %d (%s): %w", i, rec.Label, err)
		}
	}
	s.Freeze()
	return s, nil
}

// Freeze makes s read-only. Clones of frozen stats are cheap.
func (s *Stats) Freeze() { s.frozen = true }

// Frozen reports whether s is read-only.
func (s *Stats) Frozen() bool { return s.frozen }

// Clone returns an independent copy. Mutating the copy never changes s.
func (s *Stats) Clone() *Stats {
	c := &Stats{
		people: make(map[string]*PersonStats, len(s.people)),
		keys:   slices.Clone(s.keys),
	}
	for k, p := range s.people {
		c.people[k] = p.clone(s.frozen)
	}
	return c
}

// Shift rotates every participant's review window once, marking the start
// of a new session.
func (s *Stats) Shift() error {
	if s.frozen {
		return ErrFrozen
	}
	for _, p := range s.people {
		p.shift()
	}
	return nil
}

// Record applies one session's presenter/reviewer accounting. Every member
// of a group reviews every flagged presenter in that group except
// themselves. Unknown people are fatal; guests get an entry on first use.
func (s *Stats) Record(reg *registry.Registry, session model.Session) error {
	if s.frozen {
		return ErrFrozen
	}
	for gi, group := range session.Groups {
		attrs := make([]registry.Attributes, len(group))
		for i, m := range group {
			a, err := reg.Lookup(m.Participant)
			if err != nil {
				return fmt.Errorf("group %d: %w", gi, err)
			}
			attrs[i] = a
			s.ensure(m.Participant.Key())
		}

		for pi, presenter := range group {
			if !presenter.Presenter {
				continue
			}
			pKey := presenter.Participant.Key()
			p := s.people[pKey]
			for ri, reviewer := range group {
				rKey := reviewer.Participant.Key()
				if rKey == pKey {
					continue
				}
				r := s.people[rKey]
				if registry.SameRole(attrs[pi], attrs[ri]) {
					p.ReviewedBySameRole++
					r.ReviewedSameRole++
				} else {
					p.ReviewedByOtherRole++
					r.ReviewedOtherRole++
				}
				if registry.SameSquad(attrs[pi], attrs[ri]) {
					p.ReviewedBySameSquad++
					r.ReviewedSameSquad++
				} else {
					p.ReviewedByOtherSquad++
					r.ReviewedOtherSquad++
				}
				r.reviewed(pKey)
			}
		}
	}
	return nil
}

func (s *Stats) ensure(key string) {
	if _, ok := s.people[key]; ok {
		return
	}
	s.people[key] = newPersonStats()
	i, _ := slices.BinarySearch(s.keys, key)
	s.keys = slices.Insert(s.keys, i, key)
}

// Person returns the stats for key. The returned value must be treated as
// read-only.
func (s *Stats) Person(key string) (*PersonStats, bool) {
	p, ok := s.people[key]
	return p, ok
}

// Keys returns participant keys in sorted order.
func (s *Stats) Keys() []string {
	return slices.Clone(s.keys)
}

// Each calls fn for every participant in key order.
func (s *Stats) Each(fn func(key string, p *PersonStats)) {
	for _, k := range s.keys {
		fn(k, s.people[k])
	}
}

// Len returns the number of tracked participants.
func (s *Stats) Len() int { return len(s.keys) }
