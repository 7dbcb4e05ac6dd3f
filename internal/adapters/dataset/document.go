package dataset

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// document mirrors the on-disk layout.
type document struct {
	People  []personDoc `yaml:"people" validate:"required,min=1,dive"`
	Roster  rosterDoc   `yaml:"roster"`
	History []recordDoc `yaml:"history" validate:"dive"`
}

type personDoc struct {
	ID    string `yaml:"id" validate:"required"`
	Role  string `yaml:"role" validate:"required"`
	Squad string `yaml:"squad"`
}

type rosterDoc struct {
	Presenters []string `yaml:"presenters" validate:"required,min=1,unique,dive,required"`
	Reviewers  []string `yaml:"reviewers" validate:"unique,dive,required"`
}

type recordDoc struct {
	Label  string     `yaml:"label"`
	Groups []groupDoc `yaml:"groups" validate:"required,min=1,dive,min=1"`
}

// groupDoc is one history group. YAML mappings lose their order when decoded
// into a Go map, so the node is walked by hand.
type groupDoc []memberDoc

type memberDoc struct {
	ID        string
	Presenter bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (g *groupDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: group must be a mapping of id to flag", ErrInvalidDataset, node.Line)
	}
	seen := make(map[string]struct{}, len(node.Content)/2)
	out := make(groupDoc, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		id := strings.TrimSpace(key.Value)
		if id == "" {
			return fmt.Errorf("%w: line %d: empty member id", ErrInvalidDataset, key.Line)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: line %d: %s listed twice in one group", ErrInvalidDataset, key.Line, id)
		}
		seen[id] = struct{}{}
		flag, err := parseFlag(val.Value)
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", val.Line, id, err)
		}
		out = append(out, memberDoc{ID: id, Presenter: flag})
	}
	*g = out
	return nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrBadFlag, s)
	}
}
