package except

import "github.com/petermattis/goid"

// envEntry is one resumption point: a protected block currently open
// on some goroutine. The continuation itself lives on that goroutine's
// stack as a deferred recover; the pool only tracks ownership and
// nesting so that delivery order and leak diagnostics stay observable.
type envEntry struct {
	used  bool
	level int
	owner int64
}

// reserveEnv claims a free slot for the calling goroutine, at a level
// one past the goroutine's deepest open block. Panics with
// ResourceExhaustedError when every slot is taken.
func (r *Registry) reserveEnv() {
	self := goid.Get()

	r.mu.Lock()
	defer r.mu.Unlock()

	var unused *envEntry
	level := 0
	for i := range r.envs {
		ent := &r.envs[i]
		if unused == nil && !ent.used {
			unused = ent
		} else if ent.used && ent.owner == self {
			level++
		}
	}
	if unused == nil {
		panic(ResourceExhaustedError{Pool: "environment", Cap: len(r.envs)})
	}

	unused.used = true
	unused.level = level
	unused.owner = self
	r.log.Debug().Int64("goroutine", self).Int("level", level).Msg("reserved resumption point")
}

// topEnv returns the deepest in-use slot owned by the given goroutine,
// or nil. Callers hold r.mu.
func (r *Registry) topEnv(owner int64) *envEntry {
	var top *envEntry
	for i := range r.envs {
		ent := &r.envs[i]
		if ent.used && ent.owner == owner {
			if top == nil || ent.level > top.level {
				top = ent
			}
		}
	}
	return top
}

// releaseTopEnv clears the calling goroutine's deepest slot. Called on
// normal block exit and as the first step of delivering an exception.
// Callers hold r.mu.
func (r *Registry) releaseTopEnv(owner int64) {
	top := r.topEnv(owner)
	if top == nil {
		panic(ContractError{Op: "deliver", Rule: "no resumption point reserved for this goroutine"})
	}
	r.log.Debug().Int64("goroutine", owner).Int("level", top.level).Msg("released resumption point")
	top.used = false
}
