package plugin

import (
	"errors"
	"testing"
)

func TestFuncNilHooks(t *testing.T) {
	p := &Func{PluginName: "noop"}

	if p.Name() != "noop" {
		t.Errorf("expected name 'noop', got %s", p.Name())
	}
	if err := p.OnLoad(); err != nil {
		t.Errorf("OnLoad failed: %v", err)
	}
	if err := p.OnUnload(); err != nil {
		t.Errorf("OnUnload failed: %v", err)
	}
}

func TestFuncHooks(t *testing.T) {
	errUnload := errors.New("unload failed")
	var loaded, unloaded int

	p := &Func{
		PluginName: "counter",
		Load:       func() error { loaded++; return nil },
		Unload:     func() error { unloaded++; return errUnload },
	}

	if err := p.OnLoad(); err != nil {
		t.Errorf("OnLoad failed: %v", err)
	}
	if err := p.OnUnload(); !errors.Is(err, errUnload) {
		t.Errorf("expected errUnload, got %v", err)
	}
	if loaded != 1 || unloaded != 1 {
		t.Errorf("expected one call each, got load=%d unload=%d", loaded, unloaded)
	}
}
