// Package worker scores queued candidates in parallel and reduces the
// per-worker results.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/okian/revgroups/internal/adapters/repository"
	"github.com/okian/revgroups/internal/domain/history"
	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/scoring"
	"github.com/okian/revgroups/pkg/logger"
	"github.com/okian/revgroups/pkg/metrics"
)

const tracerName = "github.com/okian/revgroups/internal/adapters/mq/worker"

// Scorer rates one candidate session against the shared baseline.
type Scorer interface {
	Score(ctx context.Context, baseline *history.Stats, session model.Session) (scoring.Result, error)
}

// Queue defines how workers receive candidates.
type Queue interface {
	Dequeue() <-chan model.Candidate
}

// Sink receives candidates scoring below the shortlist threshold.
type Sink interface {
	Insert(ctx context.Context, e repository.Entry) (bool, error)
}

// Best is the lowest-scoring candidate one worker, or the whole pool, saw.
type Best struct {
	Candidate model.Candidate
	Result    scoring.Result
	Found     bool
}

// Beats reports whether b should replace other. Lower totals win and the
// earlier generated candidate wins exact ties.
func (b Best) Beats(other Best) bool { //nolint:gocritic // hugeParam: compared by value
	if !b.Found {
		return false
	}
	if !other.Found {
		return true
	}
	if b.Result.Total != other.Result.Total {
		return b.Result.Total < other.Result.Total
	}
	return b.Candidate.Seq < other.Candidate.Seq
}

// Outcome is the reduced result of one pool run.
type Outcome struct {
	Best        Best
	Scored      int64
	Shortlisted int64
}

// Pool runs a fixed number of scoring workers over one queue.
type Pool struct {
	queue     Queue
	scorer    Scorer
	baseline  *history.Stats
	sink      Sink
	workers   int
	threshold float64
	hasLimit  bool
	logger    logger.Logger

	scored      atomic.Int64
	shortlisted atomic.Int64
}

// NewPool creates a new worker pool. baseline must not be mutated while
// the pool runs.
func NewPool(queue Queue, scorer Scorer, baseline *history.Stats, opts ...Option) *Pool {
	p := &Pool{
		queue:    queue,
		scorer:   scorer,
		baseline: baseline,
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("worker-pool")
	}
	return p
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// Run drains the queue until it is closed and returns the best candidate.
// The first scoring error cancels every worker and is returned.
func (p *Pool) Run(ctx context.Context) (Outcome, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pool.run")
	defer span.End()
	span.SetAttributes(attribute.Int("workers", p.workers))

	metrics.UpdateWorkerCount(p.workers)
	p.scored.Store(0)
	p.shortlisted.Store(0)

	bests := make([]Best, p.workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range p.workers {
		name := "worker-" + strconv.Itoa(i)
		g.Go(func() error {
			best, err := p.work(gctx, p.logger.Named(name))
			bests[i] = best
			return err
		})
	}
	err := g.Wait()

	out := Outcome{Scored: p.scored.Load(), Shortlisted: p.shortlisted.Load()}
	span.SetAttributes(attribute.Int64("scored", out.Scored))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}

	for _, b := range bests {
		if b.Beats(out.Best) {
			out.Best = b
		}
	}
	if out.Best.Found {
		metrics.UpdateBestScore(out.Best.Result.Total)
	}
	return out, nil
}

func (p *Pool) work(ctx context.Context, log logger.Logger) (Best, error) {
	var best Best
	candidates := p.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return best, fmt.Errorf("worker stopped: %w", ctx.Err())
		case c, ok := <-candidates:
			if !ok {
				return best, nil
			}
			res, err := p.score(ctx, c)
			if err != nil {
				log.Error(ctx, "scoring failed", logger.Uint64("seq", c.Seq), logger.Error(err))
				return best, err
			}
			if cur := (Best{Candidate: c, Result: res, Found: true}); cur.Beats(best) {
				best = cur
			}
			if err := p.offer(ctx, c, res); err != nil {
				return best, err
			}
		}
	}
}

func (p *Pool) score(ctx context.Context, c model.Candidate) (scoring.Result, error) { //nolint:gocritic // hugeParam: candidates arrive by value
	start := time.Now()
	res, err := p.scorer.Score(ctx, p.baseline, c.Session)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError()
		return scoring.Result{}, fmt.Errorf("score candidate %d: %w", c.Seq, err)
	}
	metrics.RecordCandidateScored()
	p.scored.Add(1)
	return res, nil
}

func (p *Pool) offer(ctx context.Context, c model.Candidate, res scoring.Result) error { //nolint:gocritic // hugeParam: candidates arrive by value
	if p.sink == nil || !p.hasLimit || res.Total >= p.threshold {
		return nil
	}
	kept, err := p.sink.Insert(ctx, repository.Entry{
		Seq:       c.Seq,
		Score:     res.Total,
		Breakdown: res.Breakdown,
		Guests:    c.Guests,
		Session:   c.Session,
	})
	if err != nil {
		return fmt.Errorf("shortlist candidate %d: %w", c.Seq, err)
	}
	if kept {
		p.shortlisted.Add(1)
	}
	return nil
}
