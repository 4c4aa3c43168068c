package events

// Event type constants for kelindar/event.
const (
	TypeBackendInit uint32 = iota + 1
	TypeDevicesProbed
	TypeDeviceOpened
	TypeDevicesChanged
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// BackendInitEvent is published after every backend initialization attempt.
type BackendInitEvent struct {
	Backend   string `json:"backend" example:"alsa" doc:"Backend name"`
	Ready     bool   `json:"ready" example:"true" doc:"Whether the backend initialized"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for BackendInitEvent.
func (e BackendInitEvent) Type() uint32 { return TypeBackendInit }

// DevicesProbedEvent carries the result of one device probe.
type DevicesProbedEvent struct {
	Backend   string   `json:"backend" example:"alsa" doc:"Backend name"`
	Kind      string   `json:"kind" example:"output" doc:"Probe kind: output or capture"`
	Devices   []string `json:"devices" doc:"Device names in probe order"`
	Timestamp string   `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DevicesProbedEvent.
func (e DevicesProbedEvent) Type() uint32 { return TypeDevicesProbed }

// DeviceOpenedEvent is published for every device open attempt.
type DeviceOpenedEvent struct {
	Backend   string `json:"backend" example:"alsa" doc:"Backend name"`
	DeviceID  string `json:"device_id,omitempty" doc:"Handle identifier when the open succeeded"`
	Name      string `json:"name" example:"ALSA Default" doc:"Requested device name"`
	Direction string `json:"direction" example:"playback" doc:"playback or capture"`
	Error     string `json:"error,omitempty" doc:"Failure reason"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceOpenedEvent.
func (e DeviceOpenedEvent) Type() uint32 { return TypeDeviceOpened }

// DevicesChangedEvent reports a sound device node appearing or disappearing.
type DevicesChangedEvent struct {
	Path      string `json:"path" example:"/dev/snd/pcmC1D0p" doc:"Device node path"`
	Action    string `json:"action" example:"added" doc:"Action type: added, removed"`
	Timestamp string `json:"timestamp" example:"2025-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DevicesChangedEvent.
func (e DevicesChangedEvent) Type() uint32 { return TypeDevicesChanged }
