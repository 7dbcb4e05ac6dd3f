// Package repository keeps the ranked shortlist of good candidates.
package repository

import (
	"context"

	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/scoring"
)

// Entry represents a shortlist row.
type Entry struct {
	Rank      int
	Seq       uint64
	Score     float64
	Breakdown scoring.Breakdown
	Guests    []model.Role
	Session   model.Session
}

// Store provides read/write access to the shortlist.
type Store interface {
	// Insert adds a scored candidate. Returns false when the store is full
	// and the entry ranks below every kept entry.
	Insert(ctx context.Context, e Entry) (bool, error)

	// Rank returns the current rank and score for a candidate.
	// Returns ErrNotFound if the candidate is not kept.
	Rank(ctx context.Context, seq uint64) (Entry, error)

	// TopN returns the best N entries ordered by score asc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of kept candidates.
	Count(ctx context.Context) int
}
