package except

import "sync"

// The package-level functions mirror the classic process-global usage
// of this mechanism: Init once at startup, Deinit once at shutdown,
// and Try/Alloc/Throw/Repeat/Free anywhere in between.

var (
	defaultMu  sync.Mutex
	defaultReg *Registry
)

// Init constructs the default registry. Idempotent: later calls (and
// their options) are ignored while the registry is live.
func Init(opts ...Option) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg == nil {
		defaultReg = New(opts...)
	}
}

// Deinit closes the default registry, returning its leak diagnostics,
// and makes Init usable again.
func Deinit() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg == nil {
		return nil
	}
	err := defaultReg.Close()
	defaultReg = nil
	return err
}

// Default returns the default registry. Init must have run first.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg == nil {
		panic(ContractError{Op: "default", Rule: "Init has not been called"})
	}
	return defaultReg
}

// Try runs a protected block on the default registry.
func Try(body func(), catch func(*Exception)) { Default().Try(body, catch) }

// Alloc builds a standalone record on the default registry.
func Alloc(code Code, cause *Exception, format string, args ...interface{}) *Exception {
	return Default().Alloc(code, cause, format, args...)
}

// Throw throws on the default registry. Never returns.
func Throw(code Code, cause *Exception, format string, args ...interface{}) {
	Default().Throw(code, cause, format, args...)
}

// Repeat re-throws on the default registry. Never returns.
func Repeat(e *Exception) { Default().Repeat(e) }

// Free releases a record and its cause chain on the default registry.
func Free(e *Exception) { Default().Free(e) }
