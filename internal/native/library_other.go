//go:build !(darwin || freebsd || linux || windows)

package native

import (
	"fmt"
	"runtime"
)

// OpenLibrary is unavailable on this platform.
func OpenLibrary(path string) (Library, error) {
	return nil, fmt.Errorf("shared libraries are not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
}
