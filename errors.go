package except

import "fmt"

// ContractError indicates that calling code broke one of the usage
// rules documented on the package: it is always a bug in the caller,
// never a recoverable runtime condition, so it is raised as a panic.
type ContractError struct {
	Op   string
	Rule string
}

func (ce ContractError) Error() string {
	return fmt.Sprintf("except: %v: %v", ce.Op, ce.Rule)
}

// ResourceExhaustedError indicates that one of the two fixed pools had
// no free entry. Capacity is fixed at New, so this means the program
// holds more concurrently-open protected blocks or live exception
// records than it was configured for; it is raised as a panic rather
// than corrupting pool state.
type ResourceExhaustedError struct {
	Pool string
	Cap  int
}

func (re ResourceExhaustedError) Error() string {
	return fmt.Sprintf("except: %v pool exhausted (capacity %v)", re.Pool, re.Cap)
}

// LeakError describes a pool entry still in use when the registry was
// closed. Close reports these as diagnostics; they are never fatal.
type LeakError struct {
	Pool   string
	Detail string
}

func (le LeakError) Error() string {
	return fmt.Sprintf("except: leaked %v entry: %v", le.Pool, le.Detail)
}

// UncaughtError is returned by Isolate when an exception unwound past
// every protected block of the isolated function. The record and its
// cause chain are released before Isolate returns; Message carries a
// rendering of the whole chain.
type UncaughtError struct {
	Name    string
	Code    Code
	Message string
}

func (ue UncaughtError) Error() string {
	if ue.Name == "" {
		return fmt.Sprintf("uncaught exception [%v]: %v", ue.Code, ue.Message)
	}
	return fmt.Sprintf("%v: uncaught exception [%v]: %v", ue.Name, ue.Code, ue.Message)
}
