package facetgo

import "runtime"

type options struct {
	logger      *Logger
	metrics     MetricsCollector
	allowUnsafe bool
	parallelism int
}

func defaultOptions() options {
	return options{
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// Option configures engine construction.
type Option func(*options)

// WithLogger configures structured logging. Pass nil to keep the
// default no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithAllowUnsafe selects the pointer-arithmetic vector kernels for
// every vector the engine creates. Construction fails with
// bitvec.ErrUnsafeUnavailable on builds compiled without them.
func WithAllowUnsafe(allow bool) Option {
	return func(o *options) {
		o.allowUnsafe = allow
	}
}

// WithParallelism caps the worker count of the parallel facet scan and
// the compaction read phase. Defaults to GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}
