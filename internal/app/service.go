// Package service runs one review group search: it replays history into a
// baseline, streams candidate groupings into the worker pool and reduces
// the results into a report.
package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/okian/revgroups/internal/adapters/mq/queue"
	"github.com/okian/revgroups/internal/adapters/mq/worker"
	"github.com/okian/revgroups/internal/adapters/repository"
	"github.com/okian/revgroups/internal/domain/dedupe"
	"github.com/okian/revgroups/internal/domain/history"
	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/partition"
	"github.com/okian/revgroups/internal/domain/registry"
	"github.com/okian/revgroups/internal/domain/scoring"
	"github.com/okian/revgroups/pkg/logger"
	"github.com/okian/revgroups/pkg/metrics"
)

const tracerName = "github.com/okian/revgroups/internal/app"

// Strategy names a partition generator.
type Strategy string

// Supported strategies.
const (
	StrategyExhaustive Strategy = "exhaustive"
	StrategyRandomized Strategy = "randomized"
)

// Service searches for the fairest grouping of one round.
type Service struct {
	strategy    Strategy
	groupSize   int
	groupCount  int
	trials      int
	seed        uint64
	sizes       partition.SizeTable
	guestSlots  int
	guestRoles  []model.Role
	roleLimits  partition.RoleLimits
	minSameRole int

	scorerOpts     []scoring.Option
	threshold      float64
	shortlistLimit int

	workerCount int
	queueSize   int
	dedupeSize  int

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		strategy:    StrategyExhaustive,
		groupSize:   4,
		groupCount:  2,
		trials:      1000,
		seed:        1,
		sizes:       partition.DefaultSizeTable(),
		guestRoles:  []model.Role{model.RoleViz, model.RoleData, model.RoleEngineer},
		roleLimits:  partition.RoleLimits{model.RoleEngineer: 1},
		minSameRole: 2,
		threshold:   0.64,
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
		dedupeSize:  500_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("search")
	}
	return s
}

// plan is the validated shape of one run.
type plan struct {
	capacity  Capacity
	members   []model.Member
	templates [][]int
}

// tally is written only by the producer goroutine.
type tally struct {
	compositions         int64
	compositionsRejected int64
	templatesRejected    int64
	generated            int64
	rejected             int64
	duplicates           int64
}

// Run executes one search. Infeasible settings fail with ErrInfeasible
// before anything is generated; a run in which every candidate was
// filtered out fails with ErrNoSolution.
func (s *Service) Run(ctx context.Context, in Input) (*Report, error) {
	start := time.Now()
	runID := uuid.New()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "service.run", trace.WithAttributes(
		attribute.String("run_id", runID.String()),
		attribute.String("strategy", string(s.strategy)),
	))
	defer span.End()

	report, err := s.run(ctx, runID, in)
	elapsed := time.Since(start)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrInfeasible):
		outcome = "infeasible"
	case errors.Is(err, ErrNoSolution):
		outcome = "no_solution"
	case err != nil:
		outcome = "error"
	}
	metrics.RecordRun(string(s.strategy), outcome, elapsed.Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error(ctx, "search failed",
			logger.String("run", runID.String()),
			logger.String("outcome", outcome),
			logger.Error(err),
		)
		return nil, err
	}
	report.Duration = elapsed
	s.logger.Info(ctx, "search finished",
		logger.String("run", runID.String()),
		logger.Float64("best", report.Best.Result.Total),
		logger.Int("shortlist", len(report.Shortlist)),
		logger.Duration("took", elapsed),
	)
	return report, nil
}

func (s *Service) run(ctx context.Context, runID uuid.UUID, in Input) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reg, err := registry.New(in.People)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	p, err := s.plan(reg, in.Roster)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "capacity",
		logger.Int("roster", p.capacity.Roster),
		logger.Int("seats", p.capacity.Seats),
		logger.String("status", p.capacity.String()),
	)

	baseline, err := history.Replay(reg, in.History)
	if err != nil {
		return nil, fmt.Errorf("replay history: %w", err)
	}
	metrics.UpdateHistorySessions(len(in.History))
	metrics.UpdatePopulationSize(len(in.Roster))

	population := len(in.Roster)
	if population == 0 {
		population = reg.Len()
	}
	scorer := scoring.NewFairnessScorer(reg,
		append([]scoring.Option{scoring.WithPopulation(population)}, s.scorerOpts...)...,
	)

	var storeOpts []repository.Option
	if s.shortlistLimit > 0 {
		storeOpts = append(storeOpts, repository.WithCapacity(s.shortlistLimit))
	}
	shortlist := repository.NewTreapStore(storeOpts...)
	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	pool := worker.NewPool(q, scorer, baseline,
		worker.WithWorkerCount(s.workerCount),
		worker.WithShortlist(shortlist, s.threshold),
		worker.WithLogger(s.logger.Named("pool")),
	)

	var (
		t   tally
		out worker.Outcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer func() { _ = q.Close() }()
		return s.produce(gctx, reg, p, q, &t)
	})
	g.Go(func() error {
		var err error
		out, err = pool.Run(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := Stats{
		Compositions:         t.compositions,
		CompositionsRejected: t.compositionsRejected,
		TemplatesRejected:    t.templatesRejected,
		Generated:            t.generated,
		Rejected:             t.rejected,
		Duplicates:           t.duplicates,
		Scored:               out.Scored,
		Shortlisted:          out.Shortlisted,
	}
	if !out.Best.Found {
		return nil, fmt.Errorf("%w: %d generated, %d rejected, %d duplicates",
			ErrNoSolution, stats.Generated, stats.Rejected, stats.Duplicates)
	}

	return &Report{
		RunID:    runID,
		Strategy: s.strategy,
		Capacity: p.capacity,
		Best: Solution{
			Seq:     out.Best.Candidate.Seq,
			Session: out.Best.Candidate.Session,
			Guests:  out.Best.Candidate.Guests,
			Result:  out.Best.Result,
		},
		Shortlist: shortlist.All(ctx),
		Stats:     stats,
	}, nil
}

// plan checks the roster against the registry and the selected strategy.
func (s *Service) plan(reg *registry.Registry, roster []model.Member) (plan, error) {
	seen := make(map[string]struct{}, len(roster))
	for _, m := range roster {
		if m.Participant.IsGuest() {
			return plan{}, fmt.Errorf("%w: roster holds a guest %s", ErrInfeasible, m.Participant)
		}
		id := m.Participant.ID()
		if _, err := reg.AttributesOf(id); err != nil {
			return plan{}, fmt.Errorf("%w: roster: %w", ErrInfeasible, err)
		}
		if _, dup := seen[id]; dup {
			return plan{}, fmt.Errorf("%w: %s listed twice", ErrInfeasible, id)
		}
		seen[id] = struct{}{}
	}

	p := plan{members: slices.Clone(roster)}
	switch s.strategy {
	case StrategyRandomized:
		p.capacity = Capacity{Seats: len(roster) + s.guestSlots, Roster: len(roster), GuestSlots: s.guestSlots}
		templates, err := s.sizes.Lookup(p.capacity.Seats)
		if err != nil {
			return plan{}, fmt.Errorf("%w: %w", ErrInfeasible, err)
		}
		p.templates = templates
	default:
		seats := s.groupSize * s.groupCount
		p.capacity = Capacity{Seats: seats, Roster: len(roster), GuestSlots: max(seats-len(roster), 0)}
		if len(roster) > seats {
			return plan{}, fmt.Errorf("%w: %s", ErrInfeasible, p.capacity)
		}
	}
	if p.capacity.GuestSlots > 0 && len(s.guestRoles) == 0 {
		return plan{}, fmt.Errorf("%w: %s but no guest roles are configured", ErrInfeasible, p.capacity)
	}
	return p, nil
}

// produce feeds the queue with every surviving candidate, numbering them in
// generation order.
func (s *Service) produce(ctx context.Context, reg *registry.Registry, p plan, q queue.Queue, t *tally) error {
	filter := partition.GuestFilter{MinSameRole: s.minSameRole}
	var seen dedupe.Deduper
	var rng *rand.Rand
	if s.strategy == StrategyRandomized {
		seen = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
		rng = rand.New(rand.NewPCG(s.seed, s.seed)) //nolint:gosec // reproducible sampling, not security
	}

	var seq uint64
	for comp := range partition.GuestCompositions(s.guestRoles, p.capacity.GuestSlots) {
		if !s.roleLimits.Allows(comp) {
			t.compositionsRejected++
			metrics.RecordCandidateRejected(metrics.ReasonGuestRole)
			continue
		}
		t.compositions++
		metrics.RecordGuestComposition()

		groupings, err := s.groupings(ctx, p, comp, rng, t)
		if err != nil {
			return err
		}
		check := seen
		if check == nil && repeatsRole(comp) {
			// guests of one role are interchangeable, so swapping their
			// slots repeats a grouping
			check = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		}
		for groups := range groupings {
			ok, err := filter.Accept(reg, groups)
			if err != nil {
				return fmt.Errorf("guest filter: %w", err)
			}
			if !ok {
				t.rejected++
				metrics.RecordCandidateRejected(metrics.ReasonGuestRole)
				continue
			}
			if check != nil && check.SeenAndRecord(ctx, partition.Fingerprint(groups)) {
				t.duplicates++
				metrics.RecordCandidateRejected(metrics.ReasonDuplicate)
				continue
			}

			seq++
			c := model.Candidate{Seq: seq, Session: model.Session{Groups: groups}, Guests: slices.Clone(comp)}
			if err := q.Enqueue(ctx, c); err != nil {
				return err
			}
			t.generated++
			metrics.RecordCandidateGenerated()
		}
	}
	return nil
}

func repeatsRole(comp []model.Role) bool {
	for i, r := range comp {
		if slices.Contains(comp[i+1:], r) {
			return true
		}
	}
	return false
}

func (s *Service) groupings(ctx context.Context, p plan, comp []model.Role, rng *rand.Rand, t *tally) (iter.Seq[[]model.Group], error) {
	guests := partition.Guests(comp)

	if s.strategy == StrategyRandomized {
		var presenters, reviewers []model.Participant
		for _, m := range p.members {
			if m.Presenter {
				presenters = append(presenters, m.Participant)
			} else {
				reviewers = append(reviewers, m.Participant)
			}
		}
		reviewers = append(reviewers, guests...)
		onReject := func(sizes []int, err error) {
			t.templatesRejected++
			metrics.RecordCandidateRejected(metrics.ReasonTemplate)
			s.logger.Debug(ctx, "template skipped",
				logger.Any("sizes", sizes),
				logger.Error(err),
			)
		}
		return partition.Randomized(presenters, reviewers, p.templates, s.trials, rng, partition.WithRejectHook(onReject)), nil
	}

	members := slices.Clone(p.members)
	for _, g := range guests {
		members = append(members, model.Member{Participant: g})
	}
	groupings, err := partition.Exhaustive(members, s.groupSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInfeasible, err)
	}
	return groupings, nil
}
