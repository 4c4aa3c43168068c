package rtkit

import (
	"errors"
	"testing"
)

type call struct {
	iface, method string
	args          []any
}

type fakeDaemon struct {
	props map[string]any
	err   error
	calls []call
}

func (d *fakeDaemon) Call(dest, path, iface, method string, args ...any) (any, error) {
	d.calls = append(d.calls, call{iface, method, args})
	if dest != service || path != objectPath {
		return nil, errors.New("unknown object")
	}
	if method == "Get" {
		v, ok := d.props[args[1].(string)]
		if !ok {
			return nil, errors.New("no such property")
		}
		return v, nil
	}
	return nil, d.err
}

func TestProperties(t *testing.T) {
	d := &fakeDaemon{props: map[string]any{
		"MaxRealtimePriority": int32(20),
		"MinNiceLevel":        int32(-15),
		"RTTimeUSecMax":       int64(200000),
	}}
	c := &Client{conn: d}

	if p, err := c.MaxRealtimePriority(); err != nil || p != 20 {
		t.Errorf("MaxRealtimePriority = %d, %v", p, err)
	}
	if n, err := c.MinNiceLevel(); err != nil || n != -15 {
		t.Errorf("MinNiceLevel = %d, %v", n, err)
	}
	if r, err := c.RTTimeUSecMax(); err != nil || r != 200000 {
		t.Errorf("RTTimeUSecMax = %d, %v", r, err)
	}
	if d.calls[0].iface != propsIface || d.calls[0].args[0] != service {
		t.Errorf("property call = %+v", d.calls[0])
	}

	d.props["MaxRealtimePriority"] = "high"
	if _, err := c.MaxRealtimePriority(); err == nil {
		t.Error("string property accepted")
	}
}

func TestMakeThreadRealtime(t *testing.T) {
	d := &fakeDaemon{}
	c := &Client{conn: d}

	if err := c.MakeThreadRealtime(100, 101, 10); err != nil {
		t.Fatal(err)
	}
	got := d.calls[0]
	if got.iface != service || got.method != "MakeThreadRealtimeWithPID" {
		t.Errorf("call = %+v", got)
	}
	if got.args[0] != uint64(100) || got.args[1] != uint64(101) || got.args[2] != uint32(10) {
		t.Errorf("args = %#v", got.args)
	}

	d.err = errors.New("org.freedesktop.DBus.Error.AccessDenied")
	if err := c.MakeThreadRealtime(100, 101, 10); !errors.Is(err, d.err) {
		t.Errorf("err = %v", err)
	}
}

func TestClampPriority(t *testing.T) {
	tests := []struct {
		requested, limit, want int
	}{
		{0, 20, 20},
		{-1, 20, 20},
		{5, 20, 5},
		{99, 20, 20},
	}
	for _, tt := range tests {
		if got := clampPriority(tt.requested, tt.limit); got != tt.want {
			t.Errorf("clampPriority(%d, %d) = %d, want %d", tt.requested, tt.limit, got, tt.want)
		}
	}
}

func TestCloseOnce(t *testing.T) {
	closed := 0
	c := &Client{conn: &fakeDaemon{}, close: func() { closed++ }}
	c.Close()
	c.Close()
	if closed != 1 {
		t.Errorf("closed %d times", closed)
	}
}
