// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// PluginLoadsTotal counts registry load attempts by result
	PluginLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protosy_plugin_loads_total",
			Help: "Total number of plugin load attempts",
		},
		[]string{"result"},
	)

	// PluginUnloadsTotal counts registry removals by result of deactivation
	PluginUnloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protosy_plugin_unloads_total",
			Help: "Total number of plugins removed from the registry",
		},
		[]string{"result"},
	)

	// NativeFailuresTotal counts non-zero status codes from plugin exports
	NativeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protosy_native_failures_total",
			Help: "Total number of non-zero status codes returned by plugin exports",
		},
		[]string{"op"},
	)

	// TeardownErrorsTotal counts deactivation errors swallowed during teardown
	TeardownErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "protosy_teardown_errors_total",
			Help: "Total number of deactivation errors discarded while tearing plugins down",
		},
	)

	// ActivePlugins tracks the registry length
	ActivePlugins = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "protosy_active_plugins",
			Help: "Number of plugins currently held by the registry",
		},
	)
)
