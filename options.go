package except

import "github.com/rs/zerolog"

// Option configures a Registry at construction time. Capacities are
// fixed once New returns.
type Option interface{ apply(r *Registry) }

// WithEnvCapacity bounds the number of concurrently-open protected
// blocks across all goroutines.
func WithEnvCapacity(n int) Option { return envCapOption(n) }

// WithRecordCapacity bounds the number of concurrently-allocated
// exception records across all goroutines.
func WithRecordCapacity(n int) Option { return recCapOption(n) }

// WithMessageLimit bounds the formatted message length per record, in
// bytes; longer messages are truncated.
func WithMessageLimit(n int) Option { return msgLimitOption(n) }

// WithLogger routes the registry's trace and leak diagnostics through
// the given logger. The default logger discards everything.
func WithLogger(log zerolog.Logger) Option { return loggerOption{log} }

type envCapOption int
type recCapOption int
type msgLimitOption int
type loggerOption struct{ zerolog.Logger }

func (n envCapOption) apply(r *Registry) {
	if n > 0 {
		r.envCap = int(n)
	}
}

func (n recCapOption) apply(r *Registry) {
	if n > 0 {
		r.recCap = int(n)
	}
}

func (n msgLimitOption) apply(r *Registry) {
	if n > 0 {
		r.msgLimit = int(n)
	}
}

func (o loggerOption) apply(r *Registry) {
	r.log = o.Logger
}
