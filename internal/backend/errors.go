package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrLibraryUnavailable means an optional shared library could not be opened.
	ErrLibraryUnavailable = errors.New("library unavailable")
	// ErrSymbolMissing means a library opened but lacks a required entry point.
	ErrSymbolMissing = errors.New("symbol missing")
	// ErrInitFailed means backend setup failed even though its library loaded.
	ErrInitFailed = errors.New("backend init failed")
	// ErrDeviceUnavailable means a device could not be opened.
	ErrDeviceUnavailable = errors.New("device unavailable")
	// ErrNotInitialized means a factory was used before Init succeeded.
	ErrNotInitialized = errors.New("backend not initialized")
	// ErrUnsupported means the backend cannot serve the requested direction or format.
	ErrUnsupported = errors.New("unsupported")
	// ErrDeviceClosed is returned by Read and Write after Close.
	ErrDeviceClosed = errors.New("device closed")
)

// DeviceError describes a failed device operation. It matches
// ErrDeviceUnavailable with errors.Is and also unwraps to the OS cause.
type DeviceError struct {
	Backend Kind
	Device  string
	Op      string
	Err     error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %s %q: %v", e.Backend, e.Op, e.Device, e.Err)
}

// Unwrap returns both the availability sentinel and the underlying cause.
func (e *DeviceError) Unwrap() []error {
	return []error{ErrDeviceUnavailable, e.Err}
}

// NewDeviceError wraps err as a device availability failure.
func NewDeviceError(kind Kind, device, op string, err error) *DeviceError {
	return &DeviceError{Backend: kind, Device: device, Op: op, Err: err}
}
