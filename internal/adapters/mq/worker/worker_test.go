package worker_test

import (
	"context"
	"errors"
	"testing"

	queue "github.com/okian/revgroups/internal/adapters/mq/queue"
	worker "github.com/okian/revgroups/internal/adapters/mq/worker"
	"github.com/okian/revgroups/internal/adapters/repository"
	"github.com/okian/revgroups/internal/domain/history"
	model "github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/scoring"
	logging "github.com/okian/revgroups/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

var errBoom = errors.New("boom")

// stubScorer reads the score out of the session label.
type stubScorer struct {
	totals map[string]float64
	fail   string
}

func (s *stubScorer) Score(ctx context.Context, _ *history.Stats, session model.Session) (scoring.Result, error) {
	if err := ctx.Err(); err != nil {
		return scoring.Result{}, err
	}
	if session.Label == s.fail {
		return scoring.Result{}, errBoom
	}
	t := s.totals[session.Label]
	return scoring.Result{Total: t, Breakdown: scoring.Breakdown{RoleMean: t}}, nil
}

func fill(q *queue.InMemoryQueue, labels ...string) {
	for i, l := range labels {
		if err := q.Enqueue(context.Background(), model.Candidate{Seq: uint64(i), Session: model.Session{Label: l}}); err != nil {
			panic(err)
		}
	}
	_ = q.Close()
}

func TestPoolBest(t *testing.T) {
	convey.Convey("Given candidates with a tie for the lowest score", t, func() {
		scorer := &stubScorer{totals: map[string]float64{"a": 0.7, "b": 0.2, "c": 0.9, "d": 0.2, "e": 0.5}}
		labels := []string{"a", "b", "c", "d", "e"}

		for _, workers := range []int{1, 3, 8} {
			q := queue.NewInMemoryQueue(queue.WithCapacity(len(labels)))
			fill(q, labels...)
			pool := worker.NewPool(q, scorer, nil, worker.WithWorkerCount(workers), worker.WithLogger(logging.Nop()))

			out, err := pool.Run(context.Background())

			convey.So(err, convey.ShouldBeNil)
			convey.So(pool.Workers(), convey.ShouldEqual, workers)
			convey.So(out.Scored, convey.ShouldEqual, 5)
			convey.So(out.Best.Found, convey.ShouldBeTrue)
			convey.So(out.Best.Candidate.Seq, convey.ShouldEqual, 1)
			convey.So(out.Best.Result.Total, convey.ShouldEqual, 0.2)
		}
	})
}

func TestPoolShortlist(t *testing.T) {
	convey.Convey("Given a shortlist threshold", t, func() {
		scorer := &stubScorer{totals: map[string]float64{"a": 0.7, "b": 0.2, "c": 0.64, "d": 0.1}}
		store := repository.NewTreapStore()
		q := queue.NewInMemoryQueue()
		fill(q, "a", "b", "c", "d")

		pool := worker.NewPool(q, scorer, nil,
			worker.WithWorkerCount(2),
			worker.WithShortlist(store, 0.64),
			worker.WithLogger(logging.Nop()),
		)
		out, err := pool.Run(context.Background())

		convey.Convey("Then only candidates strictly below it are kept", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(out.Shortlisted, convey.ShouldEqual, 2)
			entries, err := store.TopN(context.Background(), 10)
			convey.So(err, convey.ShouldBeNil)
			convey.So(entries, convey.ShouldHaveLength, 2)
			convey.So(entries[0].Seq, convey.ShouldEqual, 3)
			convey.So(entries[1].Seq, convey.ShouldEqual, 1)
			convey.So(entries[0].Breakdown.RoleMean, convey.ShouldEqual, 0.1)
		})
	})
}

func TestPoolErrors(t *testing.T) {
	convey.Convey("Given a candidate that cannot be scored", t, func() {
		scorer := &stubScorer{totals: map[string]float64{"a": 0.1}, fail: "bad"}
		q := queue.NewInMemoryQueue()
		fill(q, "a", "bad", "a")
		pool := worker.NewPool(q, scorer, nil, worker.WithWorkerCount(2), worker.WithLogger(logging.Nop()))

		_, err := pool.Run(context.Background())

		convey.Convey("Then the run fails with the scoring error", func() {
			convey.So(errors.Is(err, errBoom), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "score candidate 1")
		})
	})

	convey.Convey("Given a queue that is never closed", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(q, &stubScorer{}, nil, worker.WithWorkerCount(2), worker.WithLogger(logging.Nop()))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := pool.Run(ctx)

		convey.Convey("Then cancellation stops the workers", func() {
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}

func TestBestBeats(t *testing.T) {
	convey.Convey("Given local bests", t, func() {
		none := worker.Best{}
		low := worker.Best{Found: true, Candidate: model.Candidate{Seq: 9}, Result: scoring.Result{Total: 0.1}}
		tieEarly := worker.Best{Found: true, Candidate: model.Candidate{Seq: 2}, Result: scoring.Result{Total: 0.1}}
		high := worker.Best{Found: true, Candidate: model.Candidate{Seq: 1}, Result: scoring.Result{Total: 0.3}}

		convey.So(low.Beats(none), convey.ShouldBeTrue)
		convey.So(none.Beats(low), convey.ShouldBeFalse)
		convey.So(low.Beats(high), convey.ShouldBeTrue)
		convey.So(tieEarly.Beats(low), convey.ShouldBeTrue)
		convey.So(low.Beats(tieEarly), convey.ShouldBeFalse)
	})
}
