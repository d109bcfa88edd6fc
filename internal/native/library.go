// Package native bridges C-ABI shared libraries to the plugin capability
// surface.
//
// A plugin library exports four symbols:
//
//	const char *name(void);        // stable until the library is unmapped
//	void       *initialize(void);  // called once per load
//	int         on_load(void *);   // 0 on success
//	int         on_unload(void *); // 0 on success
//
// There is no export to release what initialize allocated; it is reclaimed
// only when the library is unmapped or the process exits.
package native

// Exported symbol names every plugin library must provide.
const (
	SymbolName       = "name"
	SymbolInitialize = "initialize"
	SymbolOnLoad     = "on_load"
	SymbolOnUnload   = "on_unload"
)

// Library is an opened shared library.
type Library interface {
	// Bind resolves symbol and stores a callable Go function in fnPtr,
	// which must be a pointer to a func variable.
	Bind(symbol string, fnPtr any) error
	// Close unmaps the library. Functions bound from it must not be called
	// afterwards.
	Close() error
}

// Opener opens the shared library at path.
type Opener func(path string) (Library, error)
