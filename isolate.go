package except

import (
	"fmt"

	"github.com/ivanchev/except/internal/panicerr"
)

// Isolate runs f on its own goroutine and waits for it, giving the
// mechanism a defined outer boundary: the boundary reserves a
// resumption point of its own, so an exception that unwinds past every
// protected block inside f is delivered here, released back to the
// pool, and reported as an UncaughtError instead of being a contract
// violation. Stray panics and runtime.Goexit are likewise converted
// into errors.
func (r *Registry) Isolate(name string, f func()) error {
	return panicerr.Run(name, func() (err error) {
		r.reserveEnv()
		e := r.runProtected(f)
		if e == nil {
			return nil
		}

		msg := e.Message()
		if e.cause != nil {
			msg = fmt.Sprintf("%v (caused by: %v)", msg, e.cause.Error())
		}
		ue := UncaughtError{Name: name, Code: e.code, Message: msg}

		r.mu.Lock()
		r.freeChain(e)
		r.mu.Unlock()

		r.log.Warn().Str("name", name).Stringer("code", ue.Code).Str("msg", ue.Message).
			Msg("exception escaped to its isolation boundary")
		return ue
	})
}
