// Package core defines sentinel errors.
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the adapter and the registry. Callers match them
// with errors.Is; the returned errors carry path, symbol or name context.
var (
	// Adapter construction errors
	ErrLoadFailure      = errors.New("protosy: failed to load library")
	ErrSymbolResolution = errors.New("protosy: failed to resolve symbol")

	// Lifecycle errors
	ErrAlreadyActive = errors.New("protosy: plugin already active")
	ErrNotActive     = errors.New("protosy: plugin not active")
	ErrNativeFailure = errors.New("protosy: native call failed")
	ErrClosed        = errors.New("protosy: plugin library closed")

	// Registry errors
	ErrUnknownPlugin   = errors.New("protosy: unknown plugin")
	ErrIndexOutOfRange = errors.New("protosy: index out of range")

	// Configuration errors
	ErrConfigInvalid = errors.New("protosy: invalid configuration")
)

// NativeError is a non-zero status code returned by a plugin's on_load or
// on_unload export. It matches ErrNativeFailure.
type NativeError struct {
	Op   string
	Code int32
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("protosy: native %s returned %d", e.Op, e.Code)
}

func (e *NativeError) Is(target error) bool {
	return target == ErrNativeFailure
}

// NativeCode extracts the status code of a NativeError anywhere in err's
// chain.
func NativeCode(err error) (int32, bool) {
	var ne *NativeError
	if errors.As(err, &ne) {
		return ne.Code, true
	}
	return 0, false
}
