// Package history aggregates past review sessions into per-person statistics.
package history

import (
	"maps"

	mapset "github.com/deckarep/golang-set/v2"
)

// PersonStats holds the review counters and the two-deep rolling window of
// recent pairings for one participant.
//
// The Reviewed* counters count reviews this person gave; the ReviewedBy*
// counters count reviews this person received.
type PersonStats struct {
	ReviewedBySameRole   int
	ReviewedByOtherRole  int
	ReviewedSameRole     int
	ReviewedOtherRole    int
	ReviewedBySameSquad  int
	ReviewedByOtherSquad int
	ReviewedSameSquad    int
	ReviewedOtherSquad   int

	// PeopleReviewedCounts maps presenter key -> times this person reviewed them.
	PeopleReviewedCounts map[string]int

	// Presenters this person reviewed in the latest three sessions.
	ThisTime     mapset.Set[string]
	LastTime     mapset.Set[string]
	LastLastTime mapset.Set[string]

	// Set when the map or ThisTime still belong to the stats this was cloned from.
	sharedCounts bool
	sharedThis   bool
}

func newPersonStats() *PersonStats {
	return &PersonStats{
		PeopleReviewedCounts: make(map[string]int),
		ThisTime:             mapset.NewThreadUnsafeSet[string](),
		LastTime:             mapset.NewThreadUnsafeSet[string](),
		LastLastTime:         mapset.NewThreadUnsafeSet[string](),
	}
}

// ReviewedByTotal is the number of reviews received.
func (p *PersonStats) ReviewedByTotal() int {
	return p.ReviewedBySameRole + p.ReviewedByOtherRole
}

// ReviewedTotal is the number of reviews given.
func (p *PersonStats) ReviewedTotal() int {
	return p.ReviewedSameRole + p.ReviewedOtherRole
}

// shift rotates the window: last-last <- last, last <- this, this <- empty.
// Sets that leave ThisTime are never written again, so clones may share them.
func (p *PersonStats) shift() {
	p.LastLastTime = p.LastTime
	p.LastTime = p.ThisTime
	p.ThisTime = mapset.NewThreadUnsafeSet[string]()
	p.sharedThis = false
}

func (p *PersonStats) reviewed(presenter string) {
	if p.sharedCounts {
		p.PeopleReviewedCounts = maps.Clone(p.PeopleReviewedCounts)
		p.sharedCounts = false
	}
	if p.sharedThis {
		p.ThisTime = p.ThisTime.Clone()
		p.sharedThis = false
	}
	p.PeopleReviewedCounts[presenter]++
	p.ThisTime.Add(presenter)
}

// clone copies the counters. When share is false the map and the current
// window set are copied as well.
func (p *PersonStats) clone(share bool) *PersonStats {
	c := *p
	if share {
		c.sharedCounts = true
		c.sharedThis = true
		return &c
	}
	c.PeopleReviewedCounts = maps.Clone(p.PeopleReviewedCounts)
	c.ThisTime = p.ThisTime.Clone()
	c.sharedCounts = false
	c.sharedThis = false
	return &c
}
