package except

import "fmt"

// Code classifies an exception. Programs extend the space with their
// own constants; CodeOther is the catch-all.
type Code int

// CodeOther is the default classification.
const CodeOther Code = 0

func (c Code) String() string {
	if c == CodeOther {
		return "other"
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// recState is where a record sits in its lifecycle. The attached-as-a-
// cause condition is tracked separately since it combines with
// stateAllocated.
type recState uint8

const (
	stateFree recState = iota
	stateAllocated
	stateInFlight
)

// Exception is one pooled record: a classification code, a message of
// bounded length, and an optional cause. Records live in their
// registry's fixed pool; identity is the pointer, and "destruction"
// only clears the state back to free.
type Exception struct {
	code  Code
	cause *Exception
	msg   []byte // fixed backing buffer, len == message limit
	n     int    // formatted length, <= len(msg)

	state   recState
	asCause bool  // some other record's cause field points here
	owner   int64 // throwing goroutine, valid while in flight

	reg *Registry
}

// Code returns the record's classification.
func (e *Exception) Code() Code { return e.code }

// Cause returns the record this one wraps, or nil. Read-only after
// construction.
func (e *Exception) Cause() *Exception { return e.cause }

// Message returns the formatted message, truncated at construction to
// the registry's message limit.
func (e *Exception) Message() string { return string(e.msg[:e.n]) }

// Error renders the record as a conventional error value, including
// any cause chain.
func (e *Exception) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%v] %v (caused by: %v)", e.code, e.Message(), e.cause.Error())
	}
	return fmt.Sprintf("[%v] %v", e.code, e.Message())
}

// setMessage formats into the record's fixed buffer, truncating to the
// buffer size. Runs outside the registry lock: the record is
// exclusively owned by the calling goroutine at every call site.
func (e *Exception) setMessage(format string, args []interface{}) {
	b := fmt.Appendf(e.msg[:0], format, args...)
	if len(b) > len(e.msg) {
		// fmt reallocated past the fixed buffer; keep the prefix
		copy(e.msg, b)
		e.n = len(e.msg)
		return
	}
	e.n = len(b)
}

// Appendf extends the message in place, subject to the same length
// limit. Only an allocated (typically just-caught) record may be
// extended.
func (e *Exception) Appendf(format string, args ...interface{}) {
	r := e.reg
	r.mu.Lock()
	if e.state != stateAllocated {
		r.mu.Unlock()
		panic(ContractError{Op: "appendf", Rule: "record is not allocated"})
	}
	r.mu.Unlock()

	b := fmt.Appendf(e.msg[:e.n], format, args...)
	if len(b) > len(e.msg) {
		copy(e.msg[e.n:], b[e.n:])
		e.n = len(e.msg)
		return
	}
	e.n = len(b)
}

// checkCause validates a record about to become the cause of a new
// one. Callers hold r.mu.
func (r *Registry) checkCause(op string, cause *Exception) {
	if cause == nil {
		return
	}
	if cause.reg != r {
		panic(ContractError{Op: op, Rule: "cause belongs to a different registry"})
	}
	if cause.state == stateFree {
		panic(ContractError{Op: op, Rule: "cause is not allocated"})
	}
	if cause.asCause {
		panic(ContractError{Op: op, Rule: "cause already causes another exception"})
	}
	if cause.state == stateInFlight {
		panic(ContractError{Op: op, Rule: "cause is currently in flight"})
	}
}

// allocRecord claims a free record and attaches the (already
// validated) cause. Callers hold r.mu.
func (r *Registry) allocRecord(cause *Exception) *Exception {
	for i := range r.recs {
		e := &r.recs[i]
		if e.state != stateFree {
			continue
		}
		e.state = stateAllocated
		e.asCause = false
		e.cause = cause
		e.n = 0
		if cause != nil {
			cause.asCause = true
		}
		return e
	}
	panic(ResourceExhaustedError{Pool: "exception", Cap: len(r.recs)})
}

// allocUnder takes the lock, validates the cause, and claims a record.
func (r *Registry) allocUnder(op string, cause *Exception) *Exception {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkCause(op, cause)
	return r.allocRecord(cause)
}

// Alloc builds a standalone exception record without throwing it,
// typically to attach as the cause of a later Throw. The message is
// formatted printf-style and truncated to the registry's message
// limit. The cause, if given, must be allocated, not in flight, and
// not already the cause of another record.
func (r *Registry) Alloc(code Code, cause *Exception, format string, args ...interface{}) *Exception {
	e := r.allocUnder("alloc", cause)
	e.code = code
	e.setMessage(format, args)
	return e
}

// Free releases a record and its entire cause chain back to the pool.
// The record must be allocated, must not be in flight, and must not
// itself be the cause of another record; the chain hanging off it is
// privately owned and is reclaimed as a whole.
func (r *Registry) Free(e *Exception) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e == nil || e.reg != r || e.state == stateFree {
		panic(ContractError{Op: "free", Rule: "record is not allocated"})
	}
	if e.state == stateInFlight {
		panic(ContractError{Op: "free", Rule: "record is in flight"})
	}
	if e.asCause {
		panic(ContractError{Op: "free", Rule: "record is the cause of another exception"})
	}

	r.freeChain(e)
}

// freeChain clears a record and every record reachable through its
// cause references. Callers hold r.mu and have validated the root.
func (r *Registry) freeChain(e *Exception) {
	for x := e; x != nil; {
		next := x.cause
		r.log.Debug().Stringer("code", x.code).Str("msg", x.Message()).Msg("freed exception record")
		x.state = stateFree
		x.asCause = false
		x.cause = nil
		x = next
	}
}
