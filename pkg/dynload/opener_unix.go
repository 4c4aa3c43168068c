//go:build darwin || freebsd || linux

package dynload

import "github.com/ebitengine/purego"

type systemOpener struct{}

func (systemOpener) Open(name string) (uintptr, error) {
	return purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

func (systemOpener) Symbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func (systemOpener) Close(handle uintptr) error {
	return purego.Dlclose(handle)
}

// bindFunc points the Go func variable behind fptr at the C function addr.
func bindFunc(fptr any, addr uintptr) {
	purego.RegisterFunc(fptr, addr)
}
