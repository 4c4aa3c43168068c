//go:build linux

package rtkit

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/smazurov/soundnode/internal/dbuswrap"
)

// New connects to the system bus through api.
func New(api *dbuswrap.API) (*Client, error) {
	conn, err := api.SystemBus()
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, close: conn.Close}, nil
}

// MakeCurrentThreadRealtime raises the calling OS thread. The caller must
// hold runtime.LockOSThread for as long as the priority should stick. The
// granted priority is returned.
func (c *Client) MakeCurrentThreadRealtime(priority int) (int, error) {
	limit, err := c.MaxRealtimePriority()
	if err != nil {
		return 0, err
	}
	if limit <= 0 {
		return 0, fmt.Errorf("rtkit: realtime priority not granted (max %d)", limit)
	}
	priority = clampPriority(priority, limit)

	// The daemon refuses threads that could starve the system.
	if rttime, err := c.RTTimeUSecMax(); err == nil && rttime > 0 {
		lim := unix.Rlimit{Cur: uint64(rttime), Max: uint64(rttime)}
		if err := unix.Setrlimit(unix.RLIMIT_RTTIME, &lim); err != nil {
			return 0, fmt.Errorf("rtkit: set RLIMIT_RTTIME: %w", err)
		}
	}

	if err := c.MakeThreadRealtime(unix.Getpid(), unix.Gettid(), priority); err != nil {
		return 0, err
	}
	return priority, nil
}

// Acquire is a one-shot helper that connects, raises the calling thread and
// disconnects.
func Acquire(api *dbuswrap.API, priority int) (int, error) {
	c, err := New(api)
	if err != nil {
		return 0, err
	}
	defer c.Close()
	return c.MakeCurrentThreadRealtime(priority)
}
