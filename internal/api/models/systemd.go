package models

import "github.com/smazurov/soundnode/internal/systemd"

// SoundServerData reports the sound server units.
type SoundServerData struct {
	Units  []systemd.UnitStatus `json:"units" doc:"Known sound server units"`
	Active string               `json:"active,omitempty" example:"pipewire-pulse.service" doc:"First active unit"`
}

type SoundServerResponse struct {
	Body SoundServerData
}

// SoundServerUnitInput names a sound server unit.
type SoundServerUnitInput struct {
	Unit string `path:"unit" example:"pipewire-pulse.service" doc:"systemd unit name"`
}

// SystemdServiceAction contains the result of a systemd service action.
type SystemdServiceAction struct {
	Service string `json:"service" example:"pipewire-pulse.service" doc:"Unit name"`
	Action  string `json:"action" example:"restart" doc:"Action performed"`
	Success bool   `json:"success" example:"true" doc:"Whether the action succeeded"`
}

type SystemdServiceActionResponse struct {
	Body SystemdServiceAction
}
