// Package scoring rates a candidate grouping against review history.
package scoring

import (
	"context"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/revgroups/internal/domain/history"
	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/registry"
)

// Default scoring configuration constants.
const (
	defaultTargetFraction = 0.67
	immediateRepeat       = 1.0
	olderRepeat           = 0.5
)

// Weights scale the five score terms. Zero disables a term.
type Weights struct {
	RoleStdev    float64
	SquadStdev   float64
	Duplicates   float64
	RoleMean     float64
	ReviewerDist float64
}

// DefaultWeights returns the tuned production weights.
func DefaultWeights() Weights {
	return Weights{
		RoleStdev:    0.9,
		SquadStdev:   1,
		Duplicates:   0.5,
		RoleMean:     2,
		ReviewerDist: 0.15,
	}
}

// Scope selects the members whose review fractions are compared.
type Scope string

const (
	// ScopeAll uses every real person with review history.
	ScopeAll Scope = "all"
	// ScopeHome uses only members of the home squad.
	ScopeHome Scope = "home"
)

// Breakdown holds the weighted terms; they sum to Result.Total.
type Breakdown struct {
	RoleStdev    float64
	SquadStdev   float64
	Duplicates   float64
	RoleMean     float64
	ReviewerDist float64
}

// Metrics holds the unweighted statistics behind a score.
type Metrics struct {
	RoleStdev    float64
	RoleMean     float64
	SquadStdev   float64
	DupNum       float64
	ReviewerDist float64
	// Qualifying is how many members contributed role fractions.
	Qualifying int
}

// Result is the score of one candidate. Lower is better.
type Result struct {
	Total     float64
	Breakdown Breakdown
	Metrics   Metrics
}

// Scorer rates a session as if it happened right after baseline.
type Scorer interface {
	// Score must not modify baseline.
	Score(ctx context.Context, baseline *history.Stats, session model.Session) (Result, error)
}

// FairnessScorer implements Scorer with the weighted fairness criteria.
type FairnessScorer struct {
	reg        *registry.Registry
	weights    Weights
	target     float64
	homeSquad  model.Squad
	scope      Scope
	population int
}

// NewFairnessScorer creates a scorer over the given attribute table.
func NewFairnessScorer(reg *registry.Registry, opts ...Option) *FairnessScorer {
	s := &FairnessScorer{
		reg:        reg,
		weights:    DefaultWeights(),
		target:     defaultTargetFraction,
		scope:      ScopeAll,
		population: reg.Len(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score replays session on a private clone of baseline and computes the
// weighted fairness score.
func (s *FairnessScorer) Score(ctx context.Context, baseline *history.Stats, session model.Session) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	if baseline == nil {
		return Result{}, ErrNoBaseline
	}

	stats := baseline.Clone()
	if err := stats.Shift(); err != nil {
		return Result{}, err
	}
	if err := stats.Record(s.reg, session); err != nil {
		return Result{}, fmt.Errorf("record candidate: %w", err)
	}

	roleFracs, squadFracs, err := s.fractions(stats)
	if err != nil {
		return Result{}, err
	}
	if len(roleFracs) == 0 {
		return Result{}, fmt.Errorf("%w: no member has same-role history (scope %s)", ErrUnscoreable, s.scope)
	}
	if len(squadFracs) == 0 {
		return Result{}, fmt.Errorf("%w: no member has same-squad history (scope %s)", ErrUnscoreable, s.scope)
	}
	if s.population <= 0 {
		return Result{}, fmt.Errorf("%w: empty population", ErrUnscoreable)
	}

	roleMean, roleStdev := stat.PopMeanStdDev(roleFracs, nil)
	_, squadStdev := stat.PopMeanStdDev(squadFracs, nil)
	m := Metrics{
		RoleStdev:    roleStdev,
		RoleMean:     roleMean,
		SquadStdev:   squadStdev,
		DupNum:       duplicates(stats) / float64(s.population),
		ReviewerDist: s.reviewerDist(stats),
		Qualifying:   len(roleFracs),
	}
	b := Breakdown{
		RoleStdev:    s.weights.RoleStdev * m.RoleStdev,
		SquadStdev:   s.weights.SquadStdev * m.SquadStdev,
		Duplicates:   s.weights.Duplicates * m.DupNum,
		RoleMean:     s.weights.RoleMean * math.Abs(m.RoleMean-s.target),
		ReviewerDist: s.weights.ReviewerDist * m.ReviewerDist,
	}
	return Result{
		Total:     b.RoleStdev + b.SquadStdev + b.Duplicates + b.RoleMean + b.ReviewerDist,
		Breakdown: b,
		Metrics:   m,
	}, nil
}

// fractions collects same-role and same-squad review rates of the real
// members in scope, in key order.
func (s *FairnessScorer) fractions(stats *history.Stats) ([]float64, []float64, error) {
	var role, squad []float64
	for _, key := range stats.Keys() {
		if !s.reg.Contains(key) {
			continue // guest
		}
		attrs, err := s.reg.AttributesOf(key)
		if err != nil {
			return nil, nil, err
		}
		if s.scope == ScopeHome && attrs.Squad != s.homeSquad {
			continue
		}
		p, _ := stats.Person(key)
		if total := p.ReviewedBySameRole + p.ReviewedByOtherRole; total > 0 {
			role = append(role, float64(p.ReviewedBySameRole)/float64(total))
		}
		if total := p.ReviewedBySameSquad + p.ReviewedByOtherSquad; total > 0 {
			squad = append(squad, float64(p.ReviewedBySameSquad)/float64(total))
		}
	}
	return role, squad, nil
}

// duplicates counts repeated pairings: full weight against the previous
// session, half weight against the one before.
func duplicates(stats *history.Stats) float64 {
	sum := 0.0
	stats.Each(func(_ string, p *history.PersonStats) {
		sum += immediateRepeat * float64(p.ThisTime.Intersect(p.LastTime).Cardinality())
		sum += olderRepeat * float64(p.ThisTime.Intersect(p.LastLastTime).Cardinality())
	})
	return sum
}

// reviewerDist is the largest spread, over home-squad members, of how often
// they reviewed each same-squad colleague.
func (s *FairnessScorer) reviewerDist(stats *history.Stats) float64 {
	if s.homeSquad == "" {
		return 0
	}
	worst := 0.0
	for _, key := range stats.Keys() {
		attrs, err := s.reg.AttributesOf(key)
		if err != nil || attrs.Squad != s.homeSquad {
			continue
		}
		p, _ := stats.Person(key)
		counts := make([]float64, 0, len(p.PeopleReviewedCounts))
		for presenter, n := range p.PeopleReviewedCounts {
			other, err := s.reg.AttributesOf(presenter)
			if err != nil || other.Squad != attrs.Squad {
				continue
			}
			counts = append(counts, float64(n))
		}
		if len(counts) == 0 {
			continue
		}
		// map order is random; a fixed summation order keeps the result stable
		slices.Sort(counts)
		_, sd := stat.PopMeanStdDev(counts, nil)
		worst = max(worst, sd)
	}
	return worst
}
