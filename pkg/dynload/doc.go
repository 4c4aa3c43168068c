// Package dynload binds optional shared libraries at runtime without cgo.
//
// A [Loader] opens libraries and resolves exported symbols through the
// platform loader (dlopen/dlsym via purego). Every failure is reported as an
// absent value plus a warning log line; nothing in this package panics or
// exits because a library is missing.
//
// A [Library] describes the whole API surface an optional subsystem needs:
// a library name and a fixed list of [Symbol] slots. [Library.Prepare]
// resolves the list all-or-nothing:
//
//	var api struct {
//	    errorInit func(err *dbusError)
//	    busGet    func(kind int32, err *dbusError) uintptr
//	}
//
//	lib := dynload.NewLibrary("libdbus-1.so.3", []dynload.Symbol{
//	    {Name: "dbus_error_init", Fn: &api.errorInit},
//	    {Name: "dbus_bus_get_private", Fn: &api.busGet},
//	})
//	if !lib.Prepare() {
//	    return // subsystem unavailable for the rest of the process
//	}
//	api.errorInit(&e)
//
// The first missing symbol unloads the library and leaves every slot nil.
// Slots are written only after the full list resolved, so callers observe
// either all slots bound or none. A failed Prepare is permanent; library
// presence does not change while a process runs.
package dynload
