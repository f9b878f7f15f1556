package codec

// Options is threaded through every codec call instead of relying on
// hidden global state (spec.md §9). It carries the per-call concurrency
// budget the concurrency controller computed for codec-internal work.
type Options struct {
	// Concurrency is the number of goroutines this codec call may use
	// internally.
	Concurrency int
}

// DefaultOptions returns single-threaded codec options.
func DefaultOptions() Options {
	return Options{Concurrency: 1}
}

// WithConcurrency returns a copy of o with Concurrency set to n (at least 1).
func (o Options) WithConcurrency(n int) Options {
	if n < 1 {
		n = 1
	}
	o.Concurrency = n
	return o
}
