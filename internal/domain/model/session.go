package model

// Member is one seat in a group: who sits there and whether they present.
type Member struct {
	Participant Participant
	Presenter   bool
}

// Group is one review sub-group. Every presenter is reviewed by every other
// member of the same group.
type Group []Member

// Presenters counts the presenting members.
func (g Group) Presenters() int {
	n := 0
	for _, m := range g {
		if m.Presenter {
			n++
		}
	}
	return n
}

// Session is one full round of reviews: a historical record or a candidate.
type Session struct {
	Label  string
	Groups []Group
}

// Participants returns every member of the session in group order.
func (s Session) Participants() []Participant {
	var out []Participant
	for _, g := range s.Groups {
		for _, m := range g {
			out = append(out, m.Participant)
		}
	}
	return out
}

// Candidate is one grouping produced by the partition generator.
type Candidate struct {
	// Seq is the generation order; earlier candidates win exact ties.
	Seq     uint64
	Session Session
	// Guests lists the guest roles mixed into this candidate.
	Guests []Role
}
