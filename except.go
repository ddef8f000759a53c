package except

import (
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Pool sizes and the message limit default to the values the package
// has always shipped with; tune them with the corresponding options.
const (
	DefaultEnvCapacity    = 16
	DefaultRecordCapacity = 16
	DefaultMessageLimit   = 2048
)

// Registry owns the two fixed pools behind the mechanism: resumption
// points (one per currently-open protected block) and exception
// records. A single mutex serializes every pool mutation; the control
// transfer itself happens outside the lock on the throwing goroutine.
//
// A Registry allocates nothing after New. Exhausting either pool
// panics with ResourceExhaustedError rather than corrupting state.
type Registry struct {
	mu   sync.Mutex
	envs []envEntry
	recs []Exception

	envCap   int
	recCap   int
	msgLimit int
	closed   bool

	log zerolog.Logger
}

// New constructs a registry, applying any options over the defaults.
func New(opts ...Option) *Registry {
	r := &Registry{
		envCap:   DefaultEnvCapacity,
		recCap:   DefaultRecordCapacity,
		msgLimit: DefaultMessageLimit,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(r)
		}
	}

	if id, err := uuid.NewV4(); err == nil {
		r.log = r.log.With().Str("registry", id.String()).Logger()
	}

	r.envs = make([]envEntry, r.envCap)
	r.recs = make([]Exception, r.recCap)
	for i := range r.recs {
		r.recs[i].reg = r
		r.recs[i].msg = make([]byte, r.msgLimit)
	}
	r.log.Debug().Int("envs", r.envCap).Int("records", r.recCap).Int("msgLimit", r.msgLimit).Msg("registry initialized")
	return r
}

// Close tears the registry down and reports leaks: every resumption
// point still reserved and every record still allocated is logged and
// collected into the returned error. Diagnostics only; pool state is
// not touched, and a clean registry returns nil. Idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errs *multierror.Error
	for i := range r.envs {
		ent := &r.envs[i]
		if !ent.used {
			continue
		}
		r.log.Warn().Int64("goroutine", ent.owner).Int("level", ent.level).
			Msg("a resumption point was never released; did a protected block exit abnormally?")
		errs = multierror.Append(errs, LeakError{
			Pool:   "environment",
			Detail: fmt.Sprintf("level %v on goroutine %v", ent.level, ent.owner),
		})
	}
	for i := range r.recs {
		e := &r.recs[i]
		if e.state == stateFree {
			continue
		}
		r.log.Warn().Stringer("code", e.code).Str("msg", e.Message()).
			Msg("an exception record was never freed")
		errs = multierror.Append(errs, LeakError{
			Pool:   "exception",
			Detail: e.Error(),
		})
	}
	return errs.ErrorOrNil()
}
