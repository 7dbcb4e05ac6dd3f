// Package dataset loads the attribute table, this round's roster and the
// review history from YAML.
package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/okian/revgroups/internal/domain/model"
)

// Dataset is the decoded input of one run.
type Dataset struct {
	People []model.Person
	// Presenters present this round; Reviewers only review.
	Presenters []string
	Reviewers  []string
	// History is ordered oldest first.
	History []model.Session
}

// Roster returns this round's members, presenters first.
func (d *Dataset) Roster() []model.Member {
	out := make([]model.Member, 0, len(d.Presenters)+len(d.Reviewers))
	for _, id := range d.Presenters {
		out = append(out, model.Member{Participant: model.Real(id), Presenter: true})
	}
	for _, id := range d.Reviewers {
		out = append(out, model.Member{Participant: model.Real(id)})
	}
	return out
}

// Load reads and decodes the dataset at path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode parses a dataset document. Unknown fields are rejected.
func Decode(r io.Reader) (*Dataset, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	if err := validator.New().Struct(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	for _, id := range doc.Roster.Reviewers {
		if slices.Contains(doc.Roster.Presenters, id) {
			return nil, fmt.Errorf("%w: %s is both presenter and reviewer", ErrInvalidDataset, id)
		}
	}

	ds := &Dataset{
		People:     make([]model.Person, 0, len(doc.People)),
		Presenters: slices.Clone(doc.Roster.Presenters),
		Reviewers:  slices.Clone(doc.Roster.Reviewers),
		History:    make([]model.Session, 0, len(doc.History)),
	}
	for _, p := range doc.People {
		ds.People = append(ds.People, model.Person{
			ID:    p.ID,
			Role:  model.ParseRole(p.Role),
			Squad: model.Squad(p.Squad),
		})
	}
	for i, rec := range doc.History {
		label := rec.Label
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		s := model.Session{Label: label, Groups: make([]model.Group, 0, len(rec.Groups))}
		for _, g := range rec.Groups {
			group := make(model.Group, 0, len(g))
			for _, m := range g {
				group = append(group, model.Member{Participant: model.Real(m.ID), Presenter: m.Presenter})
			}
			s.Groups = append(s.Groups, group)
		}
		ds.History = append(ds.History, s)
	}
	return ds, nil
}
