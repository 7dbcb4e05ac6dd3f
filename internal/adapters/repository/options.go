package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithCapacity bounds the shortlist. The worst entry is evicted when a
// better one arrives at capacity. Zero or negative means unbounded.
func WithCapacity(capacity int) Option {
	return func(s *TreapStore) {
		s.capacity = capacity
	}
}
