package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/revgroups/internal/domain/history"
	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/registry"
	scoring "github.com/okian/revgroups/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func p(id string) model.Member { return model.Member{Participant: model.Real(id), Presenter: true} }
func r(id string) model.Member { return model.Member{Participant: model.Real(id)} }

func session(groups ...model.Group) model.Session { return model.Session{Groups: groups} }

func mustRegistry(people ...model.Person) *registry.Registry {
	reg, err := registry.New(people)
	So(err, ShouldBeNil)
	return reg
}

func mustReplay(reg *registry.Registry, records ...model.Session) *history.Stats {
	stats, err := history.Replay(reg, records)
	So(err, ShouldBeNil)
	return stats
}

func TestFairnessScorer_RoleMeanTarget(t *testing.T) {
	Convey("Given a home member reviewed 67 times by their role out of 100", t, func() {
		reg := mustRegistry(
			model.Person{ID: "P", Role: model.RoleViz, Squad: "H"},
			model.Person{ID: "V", Role: model.RoleViz, Squad: "X"},
			model.Person{ID: "D", Role: model.RoleData, Squad: "X"},
		)
		var records []model.Session
		for range 67 {
			records = append(records, session(model.Group{p("P"), r("V")}))
		}
		for range 33 {
			records = append(records, session(model.Group{p("P"), r("D")}))
		}
		baseline := mustReplay(reg, records...)

		scorer := scoring.NewFairnessScorer(reg,
			scoring.WithWeights(scoring.Weights{RoleMean: 1}),
			scoring.WithTargetFraction(0.67),
			scoring.WithHomeSquad("H"),
			scoring.WithScope(scoring.ScopeHome),
		)

		Convey("When the candidate leaves that member's counters alone", func() {
			res, err := scorer.Score(context.Background(), baseline, session(model.Group{p("V"), r("D")}, model.Group{r("P")}))

			Convey("Then the mean hits the target and the score is zero", func() {
				So(err, ShouldBeNil)
				So(res.Metrics.RoleMean, ShouldEqual, 0.67)
				So(res.Metrics.Qualifying, ShouldEqual, 1)
				So(res.Total, ShouldEqual, 0)
			})
		})
	})
}

func TestFairnessScorer_Duplicates(t *testing.T) {
	Convey("Given four people and two past sessions", t, func() {
		reg := mustRegistry(
			model.Person{ID: "A", Role: model.RoleViz, Squad: "X"},
			model.Person{ID: "B", Role: model.RoleViz, Squad: "X"},
			model.Person{ID: "C", Role: model.RoleViz, Squad: "X"},
			model.Person{ID: "D", Role: model.RoleViz, Squad: "X"},
		)
		baseline := mustReplay(reg,
			session(model.Group{p("A"), p("B")}, model.Group{p("C"), p("D")}),
			session(model.Group{p("A"), p("C")}, model.Group{p("B"), p("D")}),
		)
		scorer := scoring.NewFairnessScorer(reg, scoring.WithWeights(scoring.Weights{Duplicates: 1}))

		Convey("When repeating the latest session", func() {
			res, err := scorer.Score(context.Background(), baseline, session(model.Group{p("A"), p("C")}, model.Group{p("B"), p("D")}))
			So(err, ShouldBeNil)
			So(res.Metrics.DupNum, ShouldEqual, 1.0)
			So(res.Total, ShouldEqual, 1.0)
		})

		Convey("When repeating the session before it", func() {
			res, err := scorer.Score(context.Background(), baseline, session(model.Group{p("A"), p("B")}, model.Group{p("C"), p("D")}))
			So(err, ShouldBeNil)
			So(res.Metrics.DupNum, ShouldEqual, 0.5)
		})

		Convey("When every pairing is new", func() {
			res, err := scorer.Score(context.Background(), baseline, session(model.Group{p("A"), p("D")}, model.Group{p("B"), p("C")}))
			So(err, ShouldBeNil)
			So(res.Metrics.DupNum, ShouldEqual, 0)
		})

		Convey("When the population divisor is overridden", func() {
			s := scoring.NewFairnessScorer(reg, scoring.WithWeights(scoring.Weights{Duplicates: 1}), scoring.WithPopulation(8))
			res, err := s.Score(context.Background(), baseline, session(model.Group{p("A"), p("C")}, model.Group{p("B"), p("D")}))
			So(err, ShouldBeNil)
			So(res.Metrics.DupNum, ShouldEqual, 0.5)
		})

		Convey("Then scoring never touches the baseline", func() {
			before, _ := baseline.Person("A")
			count := before.PeopleReviewedCounts["C"]
			this := before.ThisTime.Clone()

			for range 3 {
				_, err := scorer.Score(context.Background(), baseline, session(model.Group{p("A"), p("C")}, model.Group{p("B"), p("D")}))
				So(err, ShouldBeNil)
			}

			after, _ := baseline.Person("A")
			So(after.PeopleReviewedCounts["C"], ShouldEqual, count)
			So(after.ThisTime.Equal(this), ShouldBeTrue)
			So(after.ReviewedBySameRole, ShouldEqual, 2)
		})
	})
}

func TestFairnessScorer_ReviewerDist(t *testing.T) {
	Convey("Given a home member who reviewed colleagues unevenly", t, func() {
		reg := mustRegistry(
			model.Person{ID: "A", Role: model.RoleViz, Squad: "H"},
			model.Person{ID: "B", Role: model.RoleViz, Squad: "H"},
			model.Person{ID: "C", Role: model.RoleViz, Squad: "H"},
			model.Person{ID: "D", Role: model.RoleData, Squad: "X"},
		)
		baseline := mustReplay(reg,
			session(model.Group{p("B"), r("A")}),
			session(model.Group{p("B"), r("A")}),
			session(model.Group{p("C"), r("A")}),
			session(model.Group{p("D"), r("A")}),
			session(model.Group{p("D"), r("A")}),
			session(model.Group{p("D"), r("A")}),
		)
		quiet := session(model.Group{r("A")}, model.Group{r("B")}, model.Group{r("C")}, model.Group{r("D")})

		Convey("When a home squad is configured", func() {
			scorer := scoring.NewFairnessScorer(reg,
				scoring.WithWeights(scoring.Weights{ReviewerDist: 1}),
				scoring.WithHomeSquad("H"),
			)
			res, err := scorer.Score(context.Background(), baseline, quiet)

			Convey("Then only same-squad presenters count", func() {
				So(err, ShouldBeNil)
				So(res.Metrics.ReviewerDist, ShouldEqual, 0.5)
				So(res.Breakdown.ReviewerDist, ShouldEqual, 0.5)
			})

			Convey("Then repeated scoring gives the identical spread", func() {
				for range 50 {
					again, err := scorer.Score(context.Background(), baseline, quiet)
					So(err, ShouldBeNil)
					So(again.Metrics.ReviewerDist, ShouldEqual, res.Metrics.ReviewerDist)
				}
			})
		})

		Convey("When no home squad is configured", func() {
			scorer := scoring.NewFairnessScorer(reg)
			res, err := scorer.Score(context.Background(), baseline, quiet)
			So(err, ShouldBeNil)
			So(res.Metrics.ReviewerDist, ShouldEqual, 0)
		})
	})
}

func TestFairnessScorer_Totals(t *testing.T) {
	Convey("Given default weights and mixed history", t, func() {
		reg := mustRegistry(
			model.Person{ID: "A", Role: model.RoleViz, Squad: "H"},
			model.Person{ID: "B", Role: model.RoleData, Squad: "H"},
			model.Person{ID: "C", Role: model.RoleViz, Squad: "X"},
			model.Person{ID: "D", Role: model.RoleEngineer, Squad: "X"},
		)
		baseline := mustReplay(reg,
			session(model.Group{p("A"), p("B")}, model.Group{p("C"), p("D")}),
			session(model.Group{p("A"), p("C")}, model.Group{p("B"), p("D")}),
		)
		scorer := scoring.NewFairnessScorer(reg, scoring.WithHomeSquad("H"))

		res, err := scorer.Score(context.Background(), baseline,
			model.Session{Groups: []model.Group{
				{p("A"), p("D"), {Participant: model.Guest(model.RoleViz, 0)}},
				{p("B"), p("C")},
			}})

		Convey("Then the breakdown sums to the total", func() {
			So(err, ShouldBeNil)
			b := res.Breakdown
			So(res.Total, ShouldAlmostEqual, b.RoleStdev+b.SquadStdev+b.Duplicates+b.RoleMean+b.ReviewerDist, 1e-12)
			So(res.Total, ShouldBeGreaterThan, 0)
			So(res.Metrics.Qualifying, ShouldEqual, 4)
		})
	})
}

func TestFairnessScorer_Errors(t *testing.T) {
	Convey("Given people without any history", t, func() {
		reg := mustRegistry(
			model.Person{ID: "A", Role: model.RoleViz, Squad: "X"},
			model.Person{ID: "B", Role: model.RoleData, Squad: "X"},
		)
		baseline := mustReplay(reg)
		scorer := scoring.NewFairnessScorer(reg)

		Convey("When the candidate has no presenter", func() {
			_, err := scorer.Score(context.Background(), baseline, session(model.Group{r("A"), r("B")}))
			So(errors.Is(err, scoring.ErrUnscoreable), ShouldBeTrue)
		})

		Convey("When the home squad has no members", func() {
			s := scoring.NewFairnessScorer(reg, scoring.WithHomeSquad("Z"), scoring.WithScope(scoring.ScopeHome))
			_, err := s.Score(context.Background(), baseline, session(model.Group{p("A"), r("B")}))
			So(errors.Is(err, scoring.ErrUnscoreable), ShouldBeTrue)
		})

		Convey("When the candidate names an unknown person", func() {
			_, err := scorer.Score(context.Background(), baseline, session(model.Group{p("A"), r("Q")}))
			So(errors.Is(err, registry.ErrUnknownPerson), ShouldBeTrue)
		})

		Convey("When the baseline is missing", func() {
			_, err := scorer.Score(context.Background(), nil, session(model.Group{p("A"), r("B")}))
			So(errors.Is(err, scoring.ErrNoBaseline), ShouldBeTrue)
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := scorer.Score(ctx, baseline, session(model.Group{p("A"), r("B")}))
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})
}
