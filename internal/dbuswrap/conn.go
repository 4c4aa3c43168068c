//go:build unix

package dbuswrap

import (
	"errors"
	"fmt"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ErrUnavailable is returned when libdbus could not be bound.
var ErrUnavailable = errors.New("dbus: library unavailable")

// DBus type codes used by Call.
const (
	typeBoolean    = 'b'
	typeInt32      = 'i'
	typeUint32     = 'u'
	typeInt64      = 'x'
	typeUint64     = 't'
	typeDouble     = 'd'
	typeString     = 's'
	typeObjectPath = 'o'
	typeVariant    = 'v'
	typeInvalid    = 0
)

// DefaultTimeout bounds a blocking method call.
const DefaultTimeout = 5 * time.Second

// Error is a DBus error reply or connection failure.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("dbus: %s: %s", e.Name, e.Message)
}

// Conn is a private bus connection. It is safe for concurrent use.
type Conn struct {
	api  *API
	mu   sync.Mutex
	conn uintptr
}

// SystemBus opens a private connection to the system bus.
func (a *API) SystemBus() (*Conn, error) {
	return a.open(busSystem)
}

// SessionBus opens a private connection to the session bus.
func (a *API) SessionBus() (*Conn, error) {
	return a.open(busSession)
}

func (a *API) open(bus int32) (*Conn, error) {
	if !a.Available() {
		return nil, ErrUnavailable
	}
	var e dbusError
	a.errorInit(&e)
	conn := a.busGetPrivate(bus, &e)
	if err := a.takeError(&e); err != nil {
		return nil, err
	}
	if conn == 0 {
		return nil, &Error{Name: "org.freedesktop.DBus.Error.Failed", Message: "no connection"}
	}
	a.connectionSetExitOnDisc(conn, 0)
	return &Conn{api: a, conn: conn}, nil
}

// takeError converts and frees a set error.
func (a *API) takeError(e *dbusError) error {
	if a.errorIsSet(e) == 0 {
		return nil
	}
	err := &Error{Name: unix.BytePtrToString(e.name), Message: unix.BytePtrToString(e.message)}
	a.errorFree(e)
	return err
}

// Close closes and releases the connection.
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == 0 {
		return
	}
	c.api.connectionClose(c.conn)
	c.api.connectionUnref(c.conn)
	c.conn = 0
}

// Call invokes a method and returns the first value of the reply, nil when
// the reply has no arguments. Variants are unwrapped. Arguments may be
// bool, int32, uint32, int64, uint64 or string.
func (c *Conn) Call(dest, path, iface, method string, args ...any) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == 0 {
		return nil, errors.New("dbus: connection closed")
	}
	a := c.api

	msg := a.messageNewMethodCall(dest, path, iface, method)
	if msg == 0 {
		return nil, fmt.Errorf("dbus: cannot create call %s.%s", iface, method)
	}
	defer a.messageUnref(msg)

	var it messageIter
	a.messageIterInitAppend(msg, &it)
	for i, arg := range args {
		if err := a.appendArg(&it, arg); err != nil {
			return nil, fmt.Errorf("dbus: %s.%s argument %d: %w", iface, method, i, err)
		}
	}

	var e dbusError
	a.errorInit(&e)
	reply := a.connectionSendReplyBlock(c.conn, msg, int32(DefaultTimeout/time.Millisecond), &e)
	if err := a.takeError(&e); err != nil {
		return nil, err
	}
	if reply == 0 {
		return nil, &Error{Name: "org.freedesktop.DBus.Error.NoReply", Message: iface + "." + method}
	}
	defer a.messageUnref(reply)

	var rit messageIter
	if a.messageIterInit(reply, &rit) == 0 {
		return nil, nil
	}
	return a.readValue(&rit)
}

func (a *API) appendArg(it *messageIter, arg any) error {
	var ok uint32
	switch v := arg.(type) {
	case bool:
		b := uint32(0)
		if v {
			b = 1
		}
		ok = a.messageIterAppendBasic(it, typeBoolean, unsafe.Pointer(&b))
	case int32:
		ok = a.messageIterAppendBasic(it, typeInt32, unsafe.Pointer(&v))
	case uint32:
		ok = a.messageIterAppendBasic(it, typeUint32, unsafe.Pointer(&v))
	case int64:
		ok = a.messageIterAppendBasic(it, typeInt64, unsafe.Pointer(&v))
	case uint64:
		ok = a.messageIterAppendBasic(it, typeUint64, unsafe.Pointer(&v))
	case string:
		s, err := unix.BytePtrFromString(v)
		if err != nil {
			return err
		}
		ok = a.messageIterAppendBasic(it, typeString, unsafe.Pointer(&s))
	default:
		return fmt.Errorf("unsupported type %T", arg)
	}
	if ok == 0 {
		return errors.New("out of memory")
	}
	return nil
}

func (a *API) readValue(it *messageIter) (any, error) {
	typ := a.messageIterGetArgType(it)
	if typ == typeVariant {
		var sub messageIter
		a.messageIterRecurse(it, &sub)
		return a.readValue(&sub)
	}

	// Basic values are at most eight bytes; strings arrive as a pointer.
	var raw [8]byte
	p := unsafe.Pointer(&raw)
	switch typ {
	case typeInvalid:
		return nil, nil
	case typeBoolean:
		a.messageIterGetBasic(it, p)
		return *(*uint32)(p) != 0, nil
	case typeInt32:
		a.messageIterGetBasic(it, p)
		return *(*int32)(p), nil
	case typeUint32:
		a.messageIterGetBasic(it, p)
		return *(*uint32)(p), nil
	case typeInt64:
		a.messageIterGetBasic(it, p)
		return *(*int64)(p), nil
	case typeUint64:
		a.messageIterGetBasic(it, p)
		return *(*uint64)(p), nil
	case typeDouble:
		a.messageIterGetBasic(it, p)
		return *(*float64)(p), nil
	case typeString, typeObjectPath:
		a.messageIterGetBasic(it, p)
		return unix.BytePtrToString(*(**byte)(p)), nil
	default:
		return nil, fmt.Errorf("dbus: unsupported reply type %q", rune(typ))
	}
}
