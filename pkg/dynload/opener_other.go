//go:build !(darwin || freebsd || linux)

package dynload

import (
	"errors"
	"runtime"
)

var errUnsupportedPlatform = errors.New("dynamic loading not supported on " + runtime.GOOS)

type systemOpener struct{}

func (systemOpener) Open(string) (uintptr, error) {
	return 0, errUnsupportedPlatform
}

func (systemOpener) Symbol(uintptr, string) (uintptr, error) {
	return 0, errUnsupportedPlatform
}

func (systemOpener) Close(uintptr) error {
	return errUnsupportedPlatform
}

// bindFunc is unreachable here because Open always fails.
func bindFunc(any, uintptr) {}
