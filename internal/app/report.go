package service

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/revgroups/internal/adapters/repository"
	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/scoring"
)

// Input is everything one run needs besides configuration.
type Input struct {
	People []model.Person
	// Roster is this round's population with presenter flags.
	Roster []model.Member
	// History is ordered oldest first.
	History []model.Session
}

// Capacity compares the roster with the seats the search fills.
type Capacity struct {
	Seats      int
	Roster     int
	GuestSlots int
}

func (c Capacity) String() string {
	switch {
	case c.Roster > c.Seats:
		return "insufficient: " + strconv.Itoa(c.Roster) + " people for " + strconv.Itoa(c.Seats) + " seats"
	case c.GuestSlots == 0:
		return "just enough"
	default:
		return "need " + strconv.Itoa(c.GuestSlots) + " guest reviewers"
	}
}

// Solution is the winning candidate.
type Solution struct {
	Seq     uint64
	Session model.Session
	Guests  []model.Role
	Result  scoring.Result
}

// Stats counts what happened to generated candidates.
type Stats struct {
	Compositions         int64
	CompositionsRejected int64
	TemplatesRejected    int64
	Generated            int64
	Rejected             int64
	Duplicates           int64
	Scored               int64
	Shortlisted          int64
}

// Report is the outcome of one run.
type Report struct {
	RunID     uuid.UUID
	Strategy  Strategy
	Capacity  Capacity
	Best      Solution
	Shortlist []repository.Entry
	Stats     Stats
	Duration  time.Duration
}
