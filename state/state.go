package state

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type Module interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on a single Goroutine
type State struct {
	*Env
	Modules map[string]Module
}

// Env can be read from any Goroutine
type Env struct {
	DispatchChannel chan<- func(s *State) error
	LocalCfg
	Context context.Context
	Cancel  context.CancelCauseFunc
	Log     *slog.Logger

	kv atomic.Pointer[KValues]
}

// KValues returns one atomic snapshot of the K coefficients; a snapshot must
// be held for the whole of one event's processing.
func (e *Env) KValues() KValues {
	if k := e.kv.Load(); k != nil {
		return *k
	}
	return DefaultKValues
}

func (e *Env) SetKValues(k KValues) {
	e.kv.Store(&k)
}
