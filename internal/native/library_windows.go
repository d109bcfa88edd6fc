//go:build windows

package native

import (
	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

type dynamicLibrary struct {
	handle windows.Handle
}

// OpenLibrary maps the DLL at path with LoadLibrary.
func OpenLibrary(path string) (Library, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, err
	}
	return &dynamicLibrary{handle: h}, nil
}

func (dll *dynamicLibrary) Bind(symbol string, fnPtr any) error {
	addr, err := windows.GetProcAddress(dll.handle, symbol)
	if err != nil {
		return err
	}
	purego.RegisterFunc(fnPtr, addr)
	return nil
}

func (dll *dynamicLibrary) Close() error {
	return windows.FreeLibrary(dll.handle)
}
