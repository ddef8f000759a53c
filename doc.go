/* Package except implements a goroutine-aware, pool-backed exception
propagation mechanism: try/catch control flow with explicit, resumable
failure delivery instead of error return plumbing.

The general usage pattern is:

	reg := except.New()
	defer reg.Close()

	reg.Try(func() {
		// ... program statements ...

		reg.Throw(except.CodeOther, nil, "something happened")
	}, func(e *except.Exception) {
		switch e.Code() {
		default: // ... process exception ...
		}

		// then either:
		reg.Free(e)
		// or: reg.Repeat(e)
		// or: reg.Throw(except.CodeOther, e, "something else happened")
	})

Consider the following points:

  - An exception consists of a code, a message, and if necessary a cause.

  - A protected block pairs with exactly one catch function. There is
    no finally.

  - Returning early from the body function is safe: the reserved
    resumption point is released on any exit from the body, including
    an unrelated panic or runtime.Goexit, unlike the setjmp-based
    designs this package descends from.

  - A caught exception must eventually be freed, repeated, or attached
    as the cause of a new exception.

  - An exception can be the cause of at most one other exception.

  - Throwing and catching on different goroutines concurrently is safe;
    an exception thrown on one goroutine is only ever delivered on that
    same goroutine. Violating the usage rules (freeing an exception
    currently in flight, repeating an exception that is already in
    flight, attaching a cause that already causes something else, and
    so on) panics with a ContractError.

  - No memory is allocated after New: both the resumption-point pool
    and the exception pool are fixed at construction, and message
    formatting writes into per-record buffers of fixed size.

A Registry holds both pools plus their shared lock. Programs that want
the classic process-global style can use Init, Deinit, and the
package-level Try, Alloc, Throw, Repeat, and Free, which forward to a
default registry.
*/
package except
