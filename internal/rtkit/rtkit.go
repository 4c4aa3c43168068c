// Package rtkit asks RealtimeKit to raise a thread to SCHED_RR, for
// unprivileged processes that cannot call sched_setscheduler themselves.
package rtkit

import (
	"errors"
	"fmt"
)

const (
	service    = "org.freedesktop.RealtimeKit1"
	objectPath = "/org/freedesktop/RealtimeKit1"
	propsIface = "org.freedesktop.DBus.Properties"
)

// ErrUnsupported is returned on platforms without RealtimeKit.
var ErrUnsupported = errors.New("rtkit: unsupported platform")

// caller performs one DBus method call and returns the first reply value.
type caller interface {
	Call(dest, path, iface, method string, args ...any) (any, error)
}

// Client talks to the RealtimeKit daemon over one bus connection.
type Client struct {
	conn  caller
	close func()
}

// Close releases the bus connection.
func (c *Client) Close() {
	if c.close != nil {
		c.close()
		c.close = nil
	}
}

func (c *Client) property(name string) (int64, error) {
	v, err := c.conn.Call(service, objectPath, propsIface, "Get", service, name)
	if err != nil {
		return 0, fmt.Errorf("rtkit: get %s: %w", name, err)
	}
	switch n := v.(type) {
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint32:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("rtkit: property %s has type %T", name, v)
	}
}

// MaxRealtimePriority returns the highest SCHED_RR priority the daemon grants.
func (c *Client) MaxRealtimePriority() (int, error) {
	n, err := c.property("MaxRealtimePriority")
	return int(n), err
}

// MinNiceLevel returns the lowest nice level the daemon grants.
func (c *Client) MinNiceLevel() (int, error) {
	n, err := c.property("MinNiceLevel")
	return int(n), err
}

// RTTimeUSecMax returns the RLIMIT_RTTIME ceiling the daemon requires.
func (c *Client) RTTimeUSecMax() (int64, error) {
	return c.property("RTTimeUSecMax")
}

// MakeThreadRealtime moves thread tid of process pid to SCHED_RR at priority.
func (c *Client) MakeThreadRealtime(pid, tid int, priority int) error {
	_, err := c.conn.Call(service, objectPath, service, "MakeThreadRealtimeWithPID",
		uint64(pid), uint64(tid), uint32(priority))
	if err != nil {
		return fmt.Errorf("rtkit: make thread %d realtime: %w", tid, err)
	}
	return nil
}

// clampPriority bounds a requested priority by the daemon maximum. A
// non-positive request asks for the maximum.
func clampPriority(requested, limit int) int {
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}
