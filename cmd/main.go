package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/revgroups/internal/adapters/dataset"
	"github.com/okian/revgroups/internal/adapters/report"
	service "github.com/okian/revgroups/internal/app"
	"github.com/okian/revgroups/internal/config"
	"github.com/okian/revgroups/internal/domain/model"
	"github.com/okian/revgroups/internal/domain/scoring"
	"github.com/okian/revgroups/pkg/logger"
	"github.com/okian/revgroups/pkg/metrics"
)

// Exit codes.
const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitInfeasible = 3
	exitNoSolution = 4
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run is main without process globals: logs go to stderr and the report
// to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("revgroups", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file (overrides REVGROUPS_CONFIG)")
	datasetPath := fs.String("dataset", "", "dataset YAML file (overrides the dataset key)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx, config.WithFile(*configPath))
	if err != nil {
		// logger isn't configured until the config is known
		_, _ = io.WriteString(stderr, "failed to load config: "+err.Error()+"\n")
		return exitFailure
	}

	if err := logger.InitWith(stderr, cfg.LogFormat); err != nil {
		_, _ = io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n")
		return exitFailure
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	path := cfg.Dataset
	if *datasetPath != "" {
		path = *datasetPath
	}
	if path == "" {
		log.Error(ctx, "no dataset given; set dataset in config or pass -dataset")
		return exitUsage
	}
	ds, err := dataset.Load(path)
	if err != nil {
		log.Error(ctx, "failed to load dataset", logger.String("path", path), logger.Error(err))
		return exitFailure
	}

	opts, err := serviceOptions(cfg, log)
	if err != nil {
		log.Error(ctx, "invalid configuration", logger.Error(err))
		return exitFailure
	}
	rep, runErr := service.New(opts...).Run(ctx, service.Input{
		People:  ds.People,
		Roster:  ds.Roster(),
		History: ds.History,
	})

	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn(ctx, "failed to write metrics", logger.String("path", cfg.MetricsFile), logger.Error(err))
	}

	switch {
	case errors.Is(runErr, service.ErrInfeasible):
		return exitInfeasible
	case errors.Is(runErr, service.ErrNoSolution):
		return exitNoSolution
	case runErr != nil:
		return exitFailure
	}

	if err := report.Write(stdout, rep, cfg.ReportFormat); err != nil {
		log.Error(ctx, "failed to write report", logger.Error(err))
		return exitFailure
	}
	return exitOK
}

func serviceOptions(cfg *config.Config, log logger.Logger) ([]service.Option, error) {
	table, err := cfg.SizeTable()
	if err != nil {
		return nil, err
	}
	return []service.Option{
		service.WithLogger(log.Named("search")),
		service.WithStrategy(service.Strategy(cfg.Strategy)),
		service.WithGroupShape(cfg.GroupSize, cfg.GroupCount),
		service.WithTrials(cfg.Trials),
		service.WithSeed(cfg.Seed),
		service.WithSizeTable(table),
		service.WithGuestSlots(cfg.GuestSlots),
		service.WithGuestRoles(cfg.Roles(), cfg.Limits()),
		service.WithMinSameRole(cfg.MinSameRole),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithShortlistThreshold(cfg.ShortlistThreshold),
		service.WithShortlistLimit(cfg.ShortlistLimit),
		service.WithScorerOptions(
			scoring.WithWeights(cfg.ScoringWeights()),
			scoring.WithTargetFraction(cfg.TargetFraction),
			scoring.WithHomeSquad(model.Squad(cfg.HomeSquad)),
			scoring.WithScope(scoring.Scope(cfg.FairnessScope)),
		),
	}, nil
}
