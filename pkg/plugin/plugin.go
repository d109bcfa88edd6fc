// Package plugin defines the plugin capability surface.
package plugin

// Plugin is a unit that reports a name and moves between inactive and
// active. Implementations that hold resources also implement io.Closer; the
// registry closes them once they leave its collection.
type Plugin interface {
	Name() string
	OnLoad() error
	OnUnload() error
}
