package scoring

import "github.com/okian/revgroups/internal/domain/model"

// Option applies a configuration option to the FairnessScorer.
type Option func(*FairnessScorer)

// WithWeights sets the five term weights.
func WithWeights(w Weights) Option {
	return func(s *FairnessScorer) {
		s.weights = w
	}
}

// WithTargetFraction sets the desired mean same-role review rate.
func WithTargetFraction(target float64) Option {
	return func(s *FairnessScorer) {
		if target >= 0 && target <= 1 {
			s.target = target
		}
	}
}

// WithHomeSquad names the squad whose reviewer spread is measured and which
// ScopeHome restricts fairness fractions to.
func WithHomeSquad(squad model.Squad) Option {
	return func(s *FairnessScorer) {
		s.homeSquad = squad
	}
}

// WithScope selects which members contribute fairness fractions.
func WithScope(scope Scope) Option {
	return func(s *FairnessScorer) {
		if scope == ScopeAll || scope == ScopeHome {
			s.scope = scope
		}
	}
}

// WithPopulation sets the divisor for the repeat-pairing penalty.
func WithPopulation(n int) Option {
	return func(s *FairnessScorer) {
		if n > 0 {
			s.population = n
		}
	}
}
