package worker

import (
	"github.com/okian/revgroups/pkg/logger"
)

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithWorkerCount sets how many candidates are scored concurrently.
func WithWorkerCount(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithShortlist sends every candidate scoring below threshold to sink.
func WithShortlist(sink Sink, threshold float64) Option {
	return func(p *Pool) {
		if sink != nil {
			p.sink = sink
			p.threshold = threshold
			p.hasLimit = true
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(logger logger.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}
