package plugin

// Func is an in-process Plugin assembled from plain functions. Nil hooks
// succeed without doing anything.
type Func struct {
	PluginName string
	Load       func() error
	Unload     func() error
}

var _ Plugin = (*Func)(nil)

func (f *Func) Name() string {
	return f.PluginName
}

func (f *Func) OnLoad() error {
	if f.Load == nil {
		return nil
	}
	return f.Load()
}

func (f *Func) OnUnload() error {
	if f.Unload == nil {
		return nil
	}
	return f.Unload()
}
