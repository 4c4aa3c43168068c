// Package systemd reports on the sound server units that the PulseAudio
// backend depends on.
package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// SoundServerUnits are the user units that can provide a PulseAudio server,
// in the order they are reported.
var SoundServerUnits = []string{
	"pipewire-pulse.service",
	"pulseaudio.service",
	"pipewire.service",
}

// UnitStatus is the ActiveState of one unit, or the error that prevented
// reading it.
type UnitStatus struct {
	Unit  string `json:"unit" example:"pipewire-pulse.service" doc:"systemd unit name"`
	State string `json:"state" example:"active" doc:"ActiveState, empty when unknown"`
	Error string `json:"error,omitempty" doc:"Why the state could not be read"`
}

// Active reports whether the unit is running.
func (s UnitStatus) Active() bool {
	return s.State == "active"
}

type unitConn interface {
	GetUnitPropertyContext(ctx context.Context, unit, propertyName string) (*dbus.Property, error)
	RestartUnitContext(ctx context.Context, name, mode string, ch chan<- string) (int, error)
	Close()
}

// Manager queries and restarts user units via D-Bus.
type Manager struct {
	conn unitConn
}

// NewManager creates a new systemd manager with a user-level D-Bus connection.
func NewManager(ctx context.Context) (*Manager, error) {
	conn, err := dbus.NewUserConnectionContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Manager{conn: conn}, nil
}

// GetServiceStatus retrieves the ActiveState property of a unit.
func (m *Manager) GetServiceStatus(ctx context.Context, unit string) (string, error) {
	prop, err := m.conn.GetUnitPropertyContext(ctx, unit, "ActiveState")
	if err != nil {
		return "", err
	}
	state, ok := prop.Value.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected ActiveState type %s", prop.Value.Signature())
	}
	return state, nil
}

// SoundServerStatus returns the status of every unit in SoundServerUnits.
func (m *Manager) SoundServerStatus(ctx context.Context) []UnitStatus {
	statuses := make([]UnitStatus, 0, len(SoundServerUnits))
	for _, unit := range SoundServerUnits {
		status := UnitStatus{Unit: unit}
		state, err := m.GetServiceStatus(ctx, unit)
		if err != nil {
			status.Error = err.Error()
		} else {
			status.State = state
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// ActiveSoundServer returns the first active unit in SoundServerUnits.
func (m *Manager) ActiveSoundServer(ctx context.Context) (string, bool) {
	for _, status := range m.SoundServerStatus(ctx) {
		if status.Active() {
			return status.Unit, true
		}
	}
	return "", false
}

// RestartService restarts a unit using the replace mode.
func (m *Manager) RestartService(ctx context.Context, unit string) error {
	_, err := m.conn.RestartUnitContext(ctx, unit, "replace", nil)
	return err
}

// Close cleanly closes the D-Bus connection.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}
