// Package registry holds the immutable person -> attributes table.
package registry

import (
	"fmt"
	"slices"

	"github.com/okian/revgroups/internal/domain/model"
)

// Attributes are the categorical properties used for fairness accounting.
type Attributes struct {
	Role  model.Role
	Squad model.Squad
	Guest bool
}

// Registry maps person ids to attributes. It is populated once and never
// mutated, so it is safe for concurrent readers.
type Registry struct {
	people map[string]model.Person
	ids    []string
}

// New builds a registry from the attribute table.
func New(people []model.Person) (*Registry, error) {
	r := &Registry{
		people: make(map[string]model.Person, len(people)),
		ids:    make([]string, 0, len(people)),
	}
	for _, p := range people {
		if p.ID == "" || p.Role == "" {
			return nil, fmt.Errorf("%w: id=%q role=%q", ErrInvalidPerson, p.ID, p.Role)
		}
		if _, ok := r.people[p.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePerson, p.ID)
		}
		if p.Squad == "" {
			p.Squad = model.SquadNone
		}
		r.people[p.ID] = p
		r.ids = append(r.ids, p.ID)
	}
	slices.Sort(r.ids)
	return r, nil
}

// AttributesOf returns the attributes of a real person.
func (r *Registry) AttributesOf(id string) (Attributes, error) {
	p, ok := r.people[id]
	if !ok {
		return Attributes{}, fmt.Errorf("%w: %s", ErrUnknownPerson, id)
	}
	return Attributes{Role: p.Role, Squad: p.Squad}, nil
}

// Lookup resolves any participant. Guests resolve to their placeholder role
// without consulting the table.
func (r *Registry) Lookup(p model.Participant) (Attributes, error) {
	if p.IsGuest() {
		return Attributes{Role: p.GuestRole(), Squad: model.SquadNone, Guest: true}, nil
	}
	return r.AttributesOf(p.ID())
}

// Contains reports whether id is in the table.
func (r *Registry) Contains(id string) bool {
	_, ok := r.people[id]
	return ok
}

// IDs returns every person id in sorted order.
func (r *Registry) IDs() []string {
	return slices.Clone(r.ids)
}

// Len returns the table size.
func (r *Registry) Len() int { return len(r.ids) }

// SameRole reports whether two participants share a role.
func SameRole(a, b Attributes) bool {
	return a.Role == b.Role
}

// SameSquad reports whether two participants share a squad. A guest comes
// from an unknown squad and shares it with nobody, other guests included.
func SameSquad(a, b Attributes) bool {
	if a.Guest || b.Guest {
		return false
	}
	return a.Squad == b.Squad
}
