package service

import (
	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/partition"
	"github.com/okian/revgroups/internal/domain/scoring"
	"github.com/okian/revgroups/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the candidate queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the fingerprint cache used by randomized search.
// Zero or less means unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithShortlistThreshold keeps every candidate scoring strictly below t.
func WithShortlistThreshold(t float64) Option {
	return func(s *Service) {
		s.threshold = t
	}
}

// WithShortlistLimit caps the shortlist; zero keeps everything.
func WithShortlistLimit(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.shortlistLimit = n
		}
	}
}

// WithScorerOptions passes options through to the fairness scorer.
func WithScorerOptions(opts ...scoring.Option) Option {
	return func(s *Service) {
		s.scorerOpts = append(s.scorerOpts, opts...)
	}
}

// WithStrategy selects exhaustive or randomized search.
func WithStrategy(strategy Strategy) Option {
	return func(s *Service) {
		if strategy == StrategyExhaustive || strategy == StrategyRandomized {
			s.strategy = strategy
		}
	}
}

// WithGroupShape sets group size and count for exhaustive search.
func WithGroupShape(size, count int) Option {
	return func(s *Service) {
		if size > 0 && count > 0 {
			s.groupSize = size
			s.groupCount = count
		}
	}
}

// WithTrials sets the shuffles per size template for randomized search.
func WithTrials(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.trials = n
		}
	}
}

// WithSeed seeds the randomized generator.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithSizeTable replaces the population to group sizes table.
func WithSizeTable(t partition.SizeTable) Option {
	return func(s *Service) {
		if len(t) > 0 {
			s.sizes = t
		}
	}
}

// WithGuestSlots sets how many guests randomized search mixes in. Exhaustive
// search derives its guest count from the group shape.
func WithGuestSlots(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.guestSlots = n
		}
	}
}

// WithGuestRoles sets the candidate guest roles and their per-role caps.
func WithGuestRoles(roles []model.Role, limits partition.RoleLimits) Option {
	return func(s *Service) {
		s.guestRoles = roles
		s.roleLimits = limits
	}
}

// WithMinSameRole sets how many genuine members of a guest's role its group
// must hold.
func WithMinSameRole(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.minSameRole = n
		}
	}
}
