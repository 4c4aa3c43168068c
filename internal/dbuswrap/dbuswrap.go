//go:build unix

// Package dbuswrap binds the parts of libdbus-1 needed for simple method
// calls. The library is optional: when it or any of its functions is missing
// the wrapper reports unavailable and callers carry on without DBus.
package dbuswrap

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/smazurov/soundnode/internal/dynlib"
	"github.com/smazurov/soundnode/pkg/dynload"
)

// DefaultLibrary is the libdbus soname.
const DefaultLibrary = "libdbus-1.so.3"

// DBusBusType
const (
	busSession int32 = 0
	busSystem  int32 = 1
)

// dbusError mirrors DBusError.
type dbusError struct {
	name     *byte
	message  *byte
	dummy    uint32
	padding1 unsafe.Pointer
}

// messageIter is opaque storage for DBusMessageIter, which is smaller than
// this on every supported ABI.
type messageIter [16]uintptr

// API is one binding of libdbus-1. Functions are callable only after
// Available returns true.
type API struct {
	lib *dynload.Library

	errorInit                func(e *dbusError)
	errorFree                func(e *dbusError)
	errorIsSet               func(e *dbusError) uint32
	busGetPrivate            func(bus int32, e *dbusError) uintptr
	connectionSetExitOnDisc  func(conn uintptr, exit uint32)
	connectionClose          func(conn uintptr)
	connectionUnref          func(conn uintptr)
	connectionSendReplyBlock func(conn uintptr, msg uintptr, timeoutMs int32, e *dbusError) uintptr
	messageNewMethodCall     func(dest, path, iface, method string) uintptr
	messageUnref             func(msg uintptr)
	messageIterInitAppend    func(msg uintptr, it *messageIter)
	messageIterAppendBasic   func(it *messageIter, typ int32, value unsafe.Pointer) uint32
	messageIterInit          func(msg uintptr, it *messageIter) uint32
	messageIterGetArgType    func(it *messageIter) int32
	messageIterGetBasic      func(it *messageIter, value unsafe.Pointer)
	messageIterRecurse       func(it *messageIter, sub *messageIter)
}

// New describes a binding of library. Nothing is loaded until Available.
func New(library string, opts ...dynload.LibraryOption) *API {
	a := &API{}
	a.lib = dynlib.New(library, []dynload.Symbol{
		{Name: "dbus_error_init", Fn: &a.errorInit},
		{Name: "dbus_error_free", Fn: &a.errorFree},
		{Name: "dbus_error_is_set", Fn: &a.errorIsSet},
		{Name: "dbus_bus_get_private", Fn: &a.busGetPrivate},
		{Name: "dbus_connection_set_exit_on_disconnect", Fn: &a.connectionSetExitOnDisc},
		{Name: "dbus_connection_close", Fn: &a.connectionClose},
		{Name: "dbus_connection_unref", Fn: &a.connectionUnref},
		{Name: "dbus_connection_send_with_reply_and_block", Fn: &a.connectionSendReplyBlock},
		{Name: "dbus_message_new_method_call", Fn: &a.messageNewMethodCall},
		{Name: "dbus_message_unref", Fn: &a.messageUnref},
		{Name: "dbus_message_iter_init_append", Fn: &a.messageIterInitAppend},
		{Name: "dbus_message_iter_append_basic", Fn: &a.messageIterAppendBasic},
		{Name: "dbus_message_iter_init", Fn: &a.messageIterInit},
		{Name: "dbus_message_iter_get_arg_type", Fn: &a.messageIterGetArgType},
		{Name: "dbus_message_iter_get_basic", Fn: &a.messageIterGetBasic},
		{Name: "dbus_message_iter_recurse", Fn: &a.messageIterRecurse},
	}, opts...)
	return a
}

// Available loads the library on first use and reports whether every
// function bound.
func (a *API) Available() bool {
	return a.lib.Prepare()
}

// Library returns the soname this binding loads.
func (a *API) Library() string {
	return a.lib.Name()
}

var library atomic.Pointer[string]

// Configure sets the library Default binds. Call it before Default.
func Configure(name string) {
	library.Store(&name)
}

var defaultAPI = sync.OnceValue(func() *API {
	name := DefaultLibrary
	if p := library.Load(); p != nil && *p != "" {
		name = *p
	}
	return New(name)
})

// Default returns the process-wide binding.
func Default() *API {
	return defaultAPI()
}
