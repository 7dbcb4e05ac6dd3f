// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is a functional discipline label. The set is open; the constants
// below are the ones the default configuration knows about.
type Role string

// Well-known roles.
const (
	RoleViz      Role = "Viz"
	RoleData     Role = "Data"
	RoleEngineer Role = "Engineer"
)

// ParseRole canonicalizes a role label so that "viz", "VIZ" and "Viz" name
// the same role. Only the first letter of each word is changed.
func ParseRole(s string) Role {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return Role(cases.Title(language.Und, cases.NoLower).String(s))
}

// Squad is an organizational sub-team label, independent of role.
type Squad string

// SquadNone marks people outside every squad. Guests always carry it.
const SquadNone Squad = "none"

// Person is a member of the attribute table. Attributes never change
// during a run.
type Person struct {
	ID    string
	Role  Role
	Squad Squad
}

// Participant is either a real person from the roster or a guest
// placeholder standing in for "someone of role R from outside the roster".
type Participant struct {
	id    string
	role  Role
	slot  int
	guest bool
}

// Real returns the participant for a person in the attribute table.
func Real(id string) Participant {
	return Participant{id: id}
}

// Guest returns a guest placeholder of the given role. slot distinguishes
// several guests of the same role within one candidate.
func Guest(role Role, slot int) Participant {
	return Participant{role: role, slot: slot, guest: true}
}

// IsGuest reports whether p is a placeholder.
func (p Participant) IsGuest() bool { return p.guest }

// ID returns the person id; empty for guests.
func (p Participant) ID() string { return p.id }

// GuestRole returns the placeholder role; empty for real people.
func (p Participant) GuestRole() Role { return p.role }

// Key is unique per participant within a candidate and is used to index
// per-person statistics.
func (p Participant) Key() string {
	if !p.guest {
		return p.id
	}
	return p.Kind() + "#" + strconv.Itoa(p.slot)
}

// Kind drops the guest slot, so two guests of the same role compare equal.
// Real people return their id.
func (p Participant) Kind() string {
	if !p.guest {
		return p.id
	}
	return "guest:" + string(p.role)
}

func (p Participant) String() string {
	if p.guest {
		return "<" + string(p.role) + " guest>"
	}
	return p.id
}
