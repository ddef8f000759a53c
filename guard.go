package except

import "github.com/petermattis/goid"

// thrown is the panic payload that carries an in-flight record from
// its throw site to the innermost protected block of the same
// goroutine. It is the package's rendering of a longjmp: panics unwind
// exactly one goroutine, so delivery can never cross to another.
type thrown struct {
	reg *Registry
	e   *Exception
}

// Try runs body as a protected block. On normal fall-through the
// block's resumption point is released and catch is skipped. If body
// (or anything it calls, however deep) throws, control resumes here
// and catch runs exactly once with the delivered record; catch then
// owns the record and must eventually free it, repeat it, or attach it
// as a cause.
//
// catch runs after the block's resumption point has been released, so
// a Throw or Repeat from inside catch targets the next enclosing
// block. Panics that are not exceptions pass through after the slot is
// released.
func (r *Registry) Try(body func(), catch func(*Exception)) {
	if body == nil || catch == nil {
		panic(ContractError{Op: "try", Rule: "protected block needs a body and exactly one catch"})
	}
	r.reserveEnv()
	if e := r.runProtected(body); e != nil {
		catch(e)
	}
}

// runProtected executes body with the delivery continuation armed.
func (r *Registry) runProtected(body func()) (caught *Exception) {
	defer func() {
		caught = r.deliver(recover())
	}()
	body()
	return nil
}

// deliver releases the goroutine's deepest resumption point and, when
// the block was resumed by a throw, hands back the record with its
// in-flight bit cleared. Foreign panic values (including exceptions of
// other registries) keep unwinding.
func (r *Registry) deliver(pv interface{}) *Exception {
	self := goid.Get()

	e, passthru := r.deliverUnder(self, pv)
	if passthru != nil {
		panic(passthru)
	}
	if e != nil {
		r.log.Debug().Int64("goroutine", self).Stringer("code", e.code).Msg("delivered exception")
	}
	return e
}

func (r *Registry) deliverUnder(self int64, pv interface{}) (*Exception, interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.releaseTopEnv(self)

	t, ok := pv.(thrown)
	if !ok || t.reg != r {
		return nil, pv
	}
	if t.e.state != stateInFlight || t.e.owner != self {
		panic(ContractError{Op: "deliver", Rule: "record is not in flight on this goroutine"})
	}
	t.e.state = stateAllocated
	return t.e, nil
}

// Throw builds a record exactly like Alloc and transfers control to
// the calling goroutine's innermost protected block. Never returns.
// Throwing outside any protected block is a contract violation.
func (r *Registry) Throw(code Code, cause *Exception, format string, args ...interface{}) {
	self := goid.Get()
	e := r.throwUnder(self, cause)
	e.code = code
	e.setMessage(format, args)
	r.log.Debug().Int64("goroutine", self).Stringer("code", code).Str("msg", e.Message()).Msg("threw exception")
	panic(thrown{r, e})
}

func (r *Registry) throwUnder(self int64, cause *Exception) *Exception {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.topEnv(self) == nil {
		panic(ContractError{Op: "throw", Rule: "throw outside any protected block"})
	}
	r.checkCause("throw", cause)
	e := r.allocRecord(cause)
	e.state = stateInFlight
	e.owner = self
	return e
}

// Repeat re-throws an already-caught record, preserving its identity
// and cause chain, to the calling goroutine's innermost protected
// block. Never returns.
func (r *Registry) Repeat(e *Exception) {
	self := goid.Get()
	r.repeatUnder(self, e)
	r.log.Debug().Int64("goroutine", self).Stringer("code", e.code).Msg("repeated exception")
	panic(thrown{r, e})
}

func (r *Registry) repeatUnder(self int64, e *Exception) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e == nil || e.reg != r || e.state == stateFree {
		panic(ContractError{Op: "repeat", Rule: "record is not allocated"})
	}
	if e.state == stateInFlight {
		panic(ContractError{Op: "repeat", Rule: "record is already in flight"})
	}
	if e.asCause {
		panic(ContractError{Op: "repeat", Rule: "record is the cause of another exception"})
	}
	if r.topEnv(self) == nil {
		panic(ContractError{Op: "repeat", Rule: "repeat outside any protected block"})
	}
	e.state = stateInFlight
	e.owner = self
}
