package panicerr

// Run executes f in a fresh goroutine, converting any abnormal exit —
// a panic or a call to runtime.Goexit — into a non-nil error returned
// to the caller. The happy path returns whatever f returns.
func Run(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExit(name, errch)
		defer recoverPanic(name, errch)
		errch <- f()
	}()
	return <-errch
}
