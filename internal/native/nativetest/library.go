// Package nativetest provides an in-memory stand-in for plugin shared
// libraries.
package nativetest

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"firestige.xyz/protosy/internal/native"
)

// Library implements native.Library with Go functions behind the four
// plugin exports. Configure it before opening; counters are safe to read
// concurrently.
type Library struct {
	PluginName string
	State      uintptr
	LoadCode   int32
	UnloadCode int32
	Missing    []string
	CloseErr   error

	// OnLoad and OnUnload, when set, replace the fixed status codes.
	OnLoad   func(state uintptr) int32
	OnUnload func(state uintptr) int32

	NameCalls       atomic.Int32
	InitializeCalls atomic.Int32
	LoadCalls       atomic.Int32
	UnloadCalls     atomic.Int32
	CloseCalls      atomic.Int32

	mu        sync.Mutex
	lastState uintptr
}

var _ native.Library = (*Library)(nil)

func (l *Library) exports() map[string]any {
	return map[string]any{
		native.SymbolName: func() string {
			l.NameCalls.Add(1)
			return l.PluginName
		},
		native.SymbolInitialize: func() uintptr {
			l.InitializeCalls.Add(1)
			return l.State
		},
		native.SymbolOnLoad: func(state uintptr) int32 {
			l.LoadCalls.Add(1)
			l.record(state)
			if l.OnLoad != nil {
				return l.OnLoad(state)
			}
			return l.LoadCode
		},
		native.SymbolOnUnload: func(state uintptr) int32 {
			l.UnloadCalls.Add(1)
			l.record(state)
			if l.OnUnload != nil {
				return l.OnUnload(state)
			}
			return l.UnloadCode
		},
	}
}

func (l *Library) record(state uintptr) {
	l.mu.Lock()
	l.lastState = state
	l.mu.Unlock()
}

// LastState returns the state handle passed to the latest on_load or
// on_unload call.
func (l *Library) LastState() uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastState
}

func (l *Library) Bind(symbol string, fnPtr any) error {
	if slices.Contains(l.Missing, symbol) {
		return fmt.Errorf("undefined symbol: %s", symbol)
	}
	fn, ok := l.exports()[symbol]
	if !ok {
		return fmt.Errorf("undefined symbol: %s", symbol)
	}
	dst := reflect.ValueOf(fnPtr).Elem()
	dst.Set(reflect.ValueOf(fn))
	return nil
}

func (l *Library) Close() error {
	l.CloseCalls.Add(1)
	return l.CloseErr
}

// Opener serves libraries by path. Unknown paths fail the way a missing
// file would.
type Opener struct {
	mu   sync.Mutex
	libs map[string]*Library
}

func NewOpener() *Opener {
	return &Opener{libs: make(map[string]*Library)}
}

// Add registers lib under path and returns lib.
func (o *Opener) Add(path string, lib *Library) *Library {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.libs[path] = lib
	return lib
}

// Open satisfies native.Opener.
func (o *Opener) Open(path string) (native.Library, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	lib, ok := o.libs[path]
	if !ok {
		return nil, fmt.Errorf("%s: cannot open shared object file: No such file or directory", path)
	}
	return lib, nil
}
