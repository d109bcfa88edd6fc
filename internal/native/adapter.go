package native

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"firestige.xyz/protosy/internal/core"
	"firestige.xyz/protosy/internal/log"
	"firestige.xyz/protosy/pkg/plugin"
)

// handle is the opaque state returned by the library's initialize export.
// It is never dereferenced on the Go side and never leaves the Adapter.
type handle uintptr

// TeardownHook receives the deactivation error that Close cannot return.
type TeardownHook func(name string, err error)

// Adapter owns one mapped plugin library and its state handle.
//
// Every native call that receives the state handle runs under mu, so at most
// one such call is in flight per adapter. Unmapping the library takes mu too,
// and no call starts once unmapped is set.
type Adapter struct {
	path string
	name string
	lib  Library

	mu       sync.Mutex
	state    handle
	unmapped bool

	onLoad   func(uintptr) int32
	onUnload func(uintptr) int32

	active atomic.Bool
	closed atomic.Bool

	teardownHook TeardownHook
}

var _ plugin.Plugin = (*Adapter)(nil)

type Option func(*Adapter)

// WithTeardownHook replaces the default hook, which logs at warn level.
func WithTeardownHook(hook TeardownHook) Option {
	return func(a *Adapter) {
		if hook != nil {
			a.teardownHook = hook
		}
	}
}

// Open maps the plugin library at path with the platform loader.
func Open(path string, opts ...Option) (*Adapter, error) {
	return OpenWith(OpenLibrary, path, opts...)
}

// OpenWith maps the plugin library at path through open, resolves the four
// required exports, reads the plugin name and creates its state. The
// returned adapter is inactive. On error nothing stays mapped.
func OpenWith(open Opener, path string, opts ...Option) (*Adapter, error) {
	logger := log.GetLogger().WithField("path", path)
	logger.Debug("Loading library")

	lib, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", core.ErrLoadFailure, path, err)
	}

	var (
		nameFn       func() string
		initializeFn func() uintptr
		a            = &Adapter{path: path, lib: lib}
	)
	symbols := []struct {
		name  string
		fnPtr any
	}{
		{SymbolName, &nameFn},
		{SymbolInitialize, &initializeFn},
		{SymbolOnLoad, &a.onLoad},
		{SymbolOnUnload, &a.onUnload},
	}
	for _, sym := range symbols {
		if err := lib.Bind(sym.name, sym.fnPtr); err != nil {
			if cerr := lib.Close(); cerr != nil {
				logger.WithError(cerr).Warn("Failed to close library after symbol lookup failure")
			}
			return nil, fmt.Errorf("%w %q in %s: %v", core.ErrSymbolResolution, sym.name, path, err)
		}
	}

	a.name = strings.Clone(strings.ToValidUTF8(nameFn(), "\uFFFD"))
	a.state = handle(initializeFn())
	a.teardownHook = func(name string, err error) {
		log.GetLogger().WithField("plugin", name).WithError(err).Warn("Deactivation during teardown failed")
	}
	for _, opt := range opts {
		opt(a)
	}

	logger.WithField("plugin", a.name).Debug("Library loaded")
	return a, nil
}

// Name returns the name the library reported when it was opened.
func (a *Adapter) Name() string { return a.name }

// Path returns the path the library was opened from.
func (a *Adapter) Path() string { return a.path }

// Active reports whether the adapter is between Activate and Deactivate.
func (a *Adapter) Active() bool { return a.active.Load() }

// Activate runs the library's on_load export.
//
// A non-zero status is returned as a *core.NativeError, and the adapter is
// left active all the same: a later Activate fails with ErrAlreadyActive
// and Deactivate still reaches on_unload.
func (a *Adapter) Activate() error {
	if a.closed.Load() {
		return fmt.Errorf("%w: %s", core.ErrClosed, a.name)
	}
	if !a.active.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %s", core.ErrAlreadyActive, a.name)
	}
	code, ok := a.call(a.onLoad)
	if !ok {
		a.active.Store(false)
		return fmt.Errorf("%w: %s", core.ErrClosed, a.name)
	}
	if code != 0 {
		return fmt.Errorf("plugin %s: %w", a.name, &core.NativeError{Op: SymbolOnLoad, Code: code})
	}
	return nil
}

// Deactivate runs the library's on_unload export. The adapter reads as
// inactive before the native call starts, whatever its outcome.
func (a *Adapter) Deactivate() error {
	if a.closed.Load() {
		return fmt.Errorf("%w: %s", core.ErrClosed, a.name)
	}
	return a.deactivate()
}

func (a *Adapter) deactivate() error {
	if !a.active.CompareAndSwap(true, false) {
		return fmt.Errorf("%w: %s", core.ErrNotActive, a.name)
	}
	code, ok := a.call(a.onUnload)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrClosed, a.name)
	}
	if code != 0 {
		return fmt.Errorf("plugin %s: %w", a.name, &core.NativeError{Op: SymbolOnUnload, Code: code})
	}
	return nil
}

// OnLoad implements plugin.Plugin.
func (a *Adapter) OnLoad() error { return a.Activate() }

// OnUnload implements plugin.Plugin.
func (a *Adapter) OnUnload() error { return a.Deactivate() }

// Close tears the adapter down. An adapter that is still active is
// deactivated first; that error goes to the teardown hook, not the caller.
// The library is unmapped afterwards. Close is idempotent.
func (a *Adapter) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	if a.active.Load() {
		if err := a.deactivate(); err != nil {
			a.teardownHook(a.name, err)
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unmapped = true
	if err := a.lib.Close(); err != nil {
		return fmt.Errorf("failed to unmap %s: %w", a.path, err)
	}
	return nil
}

// call runs fn with the state handle. It reports false, without calling fn,
// once the library is unmapped.
func (a *Adapter) call(fn func(uintptr) int32) (int32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.unmapped {
		return 0, false
	}
	return fn(uintptr(a.state)), true
}
