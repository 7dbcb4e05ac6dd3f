// Package config defines run configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and the environment.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/partition"
	"github.com/okian/revgroups/internal/domain/scoring"
)

// Search strategies.
const (
	StrategyExhaustive = "exhaustive"
	StrategyRandomized = "randomized"
)

// Weights mirrors scoring.Weights with config tags.
type Weights struct {
	RoleStdev    float64 `koanf:"role_stdev" validate:"gte=0"`
	SquadStdev   float64 `koanf:"squad_stdev" validate:"gte=0"`
	Duplicates   float64 `koanf:"duplicates" validate:"gte=0"`
	RoleMean     float64 `koanf:"role_mean" validate:"gte=0"`
	ReviewerDist float64 `koanf:"reviewer_dist" validate:"gte=0"`
}

// Config contains run configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// LogFormat selects text or json log lines on stderr.
	LogFormat string `koanf:"log_format" validate:"omitempty,oneof=text json"`

	// Dataset is the path of the people/roster/history YAML file.
	Dataset string `koanf:"dataset"`

	// Strategy picks the partition generator.
	Strategy string `koanf:"strategy" validate:"oneof=exhaustive randomized"`

	// GroupSize and GroupCount shape exhaustive search.
	GroupSize  int `koanf:"group_size" validate:"min=1"`
	GroupCount int `koanf:"group_count" validate:"min=1"`

	// Trials is the number of shuffles per size template in randomized search.
	Trials int `koanf:"trials" validate:"min=1"`

	// Seed makes randomized search reproducible.
	Seed uint64 `koanf:"seed"`

	// GuestSlots is how many guests randomized search mixes in.
	GuestSlots int `koanf:"guest_slots" validate:"min=0"`

	// GuestRoles lists the roles a guest may have, in composition order.
	GuestRoles []string `koanf:"guest_roles" validate:"dive,required"`

	// MinSameRole is how many real members of a guest's role its group needs.
	MinSameRole int `koanf:"min_same_role" validate:"min=0"`

	// RoleMaximums caps guests per role; absent roles are unlimited.
	RoleMaximums map[string]int `koanf:"role_maximums" validate:"dive,min=0"`

	Weights Weights `koanf:"weights"`

	// TargetFraction is the desired mean same-role review rate.
	TargetFraction float64 `koanf:"target_fraction" validate:"gte=0,lte=1"`

	// HomeSquad is the squad whose reviewer spread is measured.
	HomeSquad string `koanf:"home_squad"`

	// FairnessScope is "all" or "home".
	FairnessScope string `koanf:"fairness_scope" validate:"oneof=all home"`

	// ShortlistThreshold keeps candidates scoring strictly below it.
	ShortlistThreshold float64 `koanf:"shortlist_threshold"`

	// ShortlistLimit bounds the shortlist; 0 keeps everything.
	ShortlistLimit int `koanf:"shortlist_limit" validate:"min=0"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count" validate:"min=1"`

	// QueueSize bounds the candidate queue.
	QueueSize int `koanf:"queue_size" validate:"min=1"`

	// DedupeSize bounds the fingerprint cache; 0 or less is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// SizeTemplates overrides the built-in population -> group sizes table.
	SizeTemplates map[string][][]int `koanf:"size_templates"`

	// ReportFormat selects the stdout report: text or yaml.
	ReportFormat string `koanf:"report_format" validate:"oneof=text yaml"`

	// MetricsFile receives a Prometheus textfile dump after the run.
	MetricsFile string `koanf:"metrics_file"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Strategy:           StrategyExhaustive,
		GroupSize:          4,
		GroupCount:         2,
		Trials:             1000,
		Seed:               1,
		GuestRoles:         []string{"Viz", "Data", "Engineer"},
		MinSameRole:        2,
		RoleMaximums:       map[string]int{"Engineer": 1},
		Weights:            Weights{RoleStdev: 0.9, SquadStdev: 1, Duplicates: 0.5, RoleMean: 2, ReviewerDist: 0.15},
		TargetFraction:     0.67,
		FairnessScope:      string(scoring.ScopeAll),
		ShortlistThreshold: 0.64,
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          1024,
		DedupeSize:         500_000,
		ReportFormat:       "text",
	}
}

// ScoringWeights converts the configured weights.
func (c *Config) ScoringWeights() scoring.Weights {
	return scoring.Weights(c.Weights)
}

// Roles returns the guest roles in canonical form.
func (c *Config) Roles() []model.Role {
	out := make([]model.Role, len(c.GuestRoles))
	for i, r := range c.GuestRoles {
		out[i] = model.ParseRole(r)
	}
	return out
}

// Limits returns the per-role guest caps in canonical form.
func (c *Config) Limits() partition.RoleLimits {
	out := make(partition.RoleLimits, len(c.RoleMaximums))
	for r, n := range c.RoleMaximums {
		out[model.ParseRole(r)] = n
	}
	return out
}

// SizeTable returns the configured templates, or the built-in table when
// none are configured.
func (c *Config) SizeTable() (partition.SizeTable, error) {
	if len(c.SizeTemplates) == 0 {
		return partition.DefaultSizeTable(), nil
	}
	t := make(partition.SizeTable, len(c.SizeTemplates))
	for key, sizes := range c.SizeTemplates {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: size_templates key %q is not a number", ErrInvalidConfig, key)
		}
		t[n] = sizes
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return t, nil
}
