//go:build darwin || freebsd || linux

package native

import (
	"github.com/ebitengine/purego"
)

type sharedLibrary struct {
	handle uintptr
}

// OpenLibrary maps the library at path with dlopen. Symbols are bound
// eagerly and kept private to the library.
func OpenLibrary(path string) (Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, err
	}
	return &sharedLibrary{handle: h}, nil
}

func (so *sharedLibrary) Bind(symbol string, fnPtr any) error {
	addr, err := purego.Dlsym(so.handle, symbol)
	if err != nil {
		return err
	}
	purego.RegisterFunc(fnPtr, addr)
	return nil
}

func (so *sharedLibrary) Close() error {
	return purego.Dlclose(so.handle)
}
