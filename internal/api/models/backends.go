package models

import "github.com/smazurov/soundnode/internal/selector"

// BackendListData lists every enabled backend in selection order.
type BackendListData struct {
	Backends []selector.Status `json:"backends" doc:"Backends in selection order"`
	Count    int               `json:"count" example:"3" doc:"Number of enabled backends"`
}

type BackendListResponse struct {
	Body BackendListData
}

// BackendInput selects one backend by name.
type BackendInput struct {
	Name string `path:"name" example:"alsa" doc:"Backend name"`
}

type BackendResponse struct {
	Body selector.Status
}

// DeviceListInput selects a backend and probe kind.
type DeviceListInput struct {
	Name string `path:"name" example:"alsa" doc:"Backend name"`
	Kind string `query:"kind" default:"output" enum:"output,playback,capture,input" doc:"Which devices to list"`
}

// DeviceListData is the probe result of one backend.
type DeviceListData struct {
	Backend string   `json:"backend" example:"alsa" doc:"Backend name"`
	Kind    string   `json:"kind" example:"output" doc:"output or capture"`
	Devices []string `json:"devices" doc:"Device names, default device first"`
	Count   int      `json:"count" example:"2" doc:"Number of devices"`
}

type DeviceListResponse struct {
	Body DeviceListData
}
