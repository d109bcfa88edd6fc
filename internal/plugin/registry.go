// Package plugin holds the registry of active plugins.
package plugin

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"firestige.xyz/protosy/internal/core"
	"firestige.xyz/protosy/internal/log"
	"firestige.xyz/protosy/internal/metrics"
	"firestige.xyz/protosy/internal/native"
	"firestige.xyz/protosy/pkg/plugin"
)

// Factory constructs an inactive plugin from a library path.
type Factory func(path string) (plugin.Plugin, error)

// Registry is an ordered collection of active plugins. Insertion order
// defines the indices used by UnloadAt. Names need not be unique; lookups
// by name resolve to the first match.
//
// A Registry is driven by a single control flow and is not safe for
// concurrent use.
type Registry struct {
	factory Factory
	plugins []plugin.Plugin
}

type Option func(*Registry)

// WithFactory replaces the native library factory.
func WithFactory(factory Factory) Option {
	return func(r *Registry) {
		r.factory = factory
	}
}

// WithOpener builds native adapters through open instead of the platform
// loader.
func WithOpener(open native.Opener) Option {
	return WithFactory(nativeFactory(open))
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		factory: nativeFactory(native.OpenLibrary),
		plugins: make([]plugin.Plugin, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func nativeFactory(open native.Opener) Factory {
	return func(path string) (plugin.Plugin, error) {
		return native.OpenWith(open, path, native.WithTeardownHook(teardownHook))
	}
}

func teardownHook(name string, err error) {
	metrics.TeardownErrorsTotal.Inc()
	countNativeFailure(err)
	log.GetLogger().WithField("plugin", name).WithError(err).Warn("Deactivation during teardown failed")
}

// Load constructs and activates the plugin at path and appends it. A plugin
// whose activation fails is torn down and never becomes visible; the
// construction or activation error is returned unchanged.
func (r *Registry) Load(path string) error {
	logger := log.GetLogger().WithField("path", path)
	logger.Info("Loading plugin")

	p, err := r.factory(path)
	if err != nil {
		metrics.PluginLoadsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}

	if err := p.OnLoad(); err != nil {
		metrics.PluginLoadsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		countNativeFailure(err)
		release(p)
		return err
	}

	r.plugins = append(r.plugins, p)
	metrics.PluginLoadsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.ActivePlugins.Set(float64(len(r.plugins)))
	logger.WithFields(map[string]interface{}{"plugin": p.Name(), "index": len(r.plugins) - 1}).Info("Plugin loaded")
	return nil
}

// Unload removes the first plugin called name.
func (r *Registry) Unload(name string) error {
	index := r.Index(name)
	if index < 0 {
		return fmt.Errorf("%w: %q", core.ErrUnknownPlugin, name)
	}
	return r.UnloadAt(index)
}

// UnloadAt removes the plugin at index and deactivates it. The removal
// stands even when deactivation fails; that error is still returned.
func (r *Registry) UnloadAt(index int) error {
	if index < 0 || index >= len(r.plugins) {
		return fmt.Errorf("%w: %d (registry holds %d)", core.ErrIndexOutOfRange, index, len(r.plugins))
	}

	p := r.plugins[index]
	r.plugins = slices.Delete(r.plugins, index, index+1)
	metrics.ActivePlugins.Set(float64(len(r.plugins)))

	logger := log.GetLogger().WithFields(map[string]interface{}{"plugin": p.Name(), "index": index})
	err := p.OnUnload()
	release(p)
	if err != nil {
		metrics.PluginUnloadsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		countNativeFailure(err)
		logger.WithError(err).Warn("Plugin removed but deactivation failed")
		return err
	}

	metrics.PluginUnloadsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	logger.Info("Plugin unloaded")
	return nil
}

// Index returns the position of the first plugin called name, or -1.
func (r *Registry) Index(name string) int {
	return slices.IndexFunc(r.plugins, func(p plugin.Plugin) bool {
		return p.Name() == name
	})
}

// Len returns the number of active plugins.
func (r *Registry) Len() int {
	return len(r.plugins)
}

// List returns the active plugins in insertion order.
func (r *Registry) List() []plugin.Plugin {
	return slices.Clone(r.plugins)
}

// Names returns the plugin names in insertion order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for _, p := range r.plugins {
		names = append(names, p.Name())
	}
	return names
}

// Close tears down every remaining plugin in insertion order and empties
// the registry. Deactivation errors are reported through the teardown hook
// only; unmap errors are joined and returned.
func (r *Registry) Close() error {
	var errs []error
	for _, p := range r.plugins {
		if _, ok := p.(io.Closer); !ok {
			if err := p.OnUnload(); err != nil {
				teardownHook(p.Name(), err)
			}
		}
		if err := closePlugin(p); err != nil {
			errs = append(errs, err)
		}
	}
	r.plugins = r.plugins[:0]
	metrics.ActivePlugins.Set(0)
	return errors.Join(errs...)
}

// release closes p if it owns resources, logging any error.
func release(p plugin.Plugin) {
	if err := closePlugin(p); err != nil {
		log.GetLogger().WithField("plugin", p.Name()).WithError(err).Warn("Failed to release plugin")
	}
}

func closePlugin(p plugin.Plugin) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func countNativeFailure(err error) {
	var ne *core.NativeError
	if errors.As(err, &ne) {
		metrics.NativeFailuresTotal.WithLabelValues(ne.Op).Inc()
	}
}
