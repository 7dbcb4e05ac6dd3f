// Package report renders a search report for people or for scripts.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	service "github.com/okian/revgroups/internal/app"
	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/scoring"
)

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Write renders r in the given format.
func Write(w io.Writer, r *service.Report, format string) error {
	var err error
	switch format {
	case "", FormatText:
		err = writeText(w, r)
	case FormatYAML:
		err = writeYAML(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func writeText(w io.Writer, r *service.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", r.RunID)
	fmt.Fprintf(tw, "strategy\t%s\n", r.Strategy)
	fmt.Fprintf(tw, "capacity\t%s\n", r.Capacity)
	fmt.Fprintf(tw, "candidates\t%d generated, %d rejected, %d duplicates, %d scored\n",
		r.Stats.Generated, r.Stats.Rejected, r.Stats.Duplicates, r.Stats.Scored)
	fmt.Fprintf(tw, "took\t%s\n", r.Duration.Round(time.Millisecond))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nshortlist (%d)\n", len(r.Shortlist))
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "rank\tseq\tscore\trole sd\tsquad sd\tdup\trole mean\treviewer\tguests\tgroups")
	for _, e := range r.Shortlist {
		fmt.Fprintf(tw, "%d\t%d\t%.4f\t%s\t%s\t%s\n",
			e.Rank, e.Seq, e.Score, breakdownColumns(e.Breakdown), roles(e.Guests), groups(e.Session.Groups))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	b := r.Best
	fmt.Fprintf(w, "\nbest #%d score %.4f guests %s\n", b.Seq, b.Result.Total, roles(b.Guests))
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "role stdev\t%.4f\t(weighted %.4f)\n", b.Result.Metrics.RoleStdev, b.Result.Breakdown.RoleStdev)
	fmt.Fprintf(tw, "squad stdev\t%.4f\t(weighted %.4f)\n", b.Result.Metrics.SquadStdev, b.Result.Breakdown.SquadStdev)
	fmt.Fprintf(tw, "duplicates\t%.4f\t(weighted %.4f)\n", b.Result.Metrics.DupNum, b.Result.Breakdown.Duplicates)
	fmt.Fprintf(tw, "role mean\t%.4f\t(weighted %.4f)\n", b.Result.Metrics.RoleMean, b.Result.Breakdown.RoleMean)
	fmt.Fprintf(tw, "reviewer dist\t%.4f\t(weighted %.4f)\n", b.Result.Metrics.ReviewerDist, b.Result.Breakdown.ReviewerDist)
	for i, g := range b.Session.Groups {
		fmt.Fprintf(tw, "group %d\t%s\n", i+1, group(g))
	}
	return tw.Flush()
}

func breakdownColumns(b scoring.Breakdown) string {
	return fmt.Sprintf("%.4f\t%.4f\t%.4f\t%.4f\t%.4f", b.RoleStdev, b.SquadStdev, b.Duplicates, b.RoleMean, b.ReviewerDist)
}

func roles(rs []model.Role) string {
	if len(rs) == 0 {
		return "-"
	}
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// group lists presenters first, marked with an asterisk.
func group(g model.Group) string {
	var presenters, reviewers []string
	for _, m := range g {
		if m.Presenter {
			presenters = append(presenters, m.Participant.String()+"*")
		} else {
			reviewers = append(reviewers, m.Participant.String())
		}
	}
	return strings.Join(append(presenters, reviewers...), " ")
}

func groups(gs []model.Group) string {
	parts := make([]string, len(gs))
	for i, g := range gs {
		parts[i] = "[" + group(g) + "]"
	}
	return strings.Join(parts, " ")
}

type yamlMember struct {
	ID        string `yaml:"id"`
	Guest     bool   `yaml:"guest,omitempty"`
	Presenter bool   `yaml:"presenter"`
}

type yamlCandidate struct {
	Rank      int               `yaml:"rank,omitempty"`
	Seq       uint64            `yaml:"seq"`
	Score     float64           `yaml:"score"`
	Breakdown scoring.Breakdown `yaml:"breakdown"`
	Guests    []string          `yaml:"guests,omitempty"`
	Groups    [][]yamlMember    `yaml:"groups"`
}

type yamlReport struct {
	Run       string          `yaml:"run"`
	Strategy  string          `yaml:"strategy"`
	Capacity  string          `yaml:"capacity"`
	Took      string          `yaml:"took"`
	Stats     service.Stats   `yaml:"stats"`
	Best      yamlCandidate   `yaml:"best"`
	Shortlist []yamlCandidate `yaml:"shortlist"`
}

func writeYAML(w io.Writer, r *service.Report) error {
	doc := yamlReport{
		Run:      r.RunID.String(),
		Strategy: string(r.Strategy),
		Capacity: r.Capacity.String(),
		Took:     r.Duration.String(),
		Stats:    r.Stats,
		Best:     candidate(0, r.Best.Seq, r.Best.Result.Total, r.Best.Result.Breakdown, r.Best.Guests, r.Best.Session),
	}
	for _, e := range r.Shortlist {
		doc.Shortlist = append(doc.Shortlist, candidate(e.Rank, e.Seq, e.Score, e.Breakdown, e.Guests, e.Session))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func candidate(rank int, seq uint64, score float64, b scoring.Breakdown, guests []model.Role, s model.Session) yamlCandidate {
	c := yamlCandidate{Rank: rank, Seq: seq, Score: score, Breakdown: b}
	for _, r := range guests {
		c.Guests = append(c.Guests, string(r))
	}
	for _, g := range s.Groups {
		ms := make([]yamlMember, len(g))
		for i, m := range g {
			ms[i] = yamlMember{ID: m.Participant.String(), Guest: m.Participant.IsGuest(), Presenter: m.Presenter}
		}
		c.Groups = append(c.Groups, ms)
	}
	return c
}
