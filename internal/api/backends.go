package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/soundnode/internal/api/models"
	"github.com/smazurov/soundnode/internal/backend"
	"github.com/smazurov/soundnode/internal/selector"
)

func backendError(err error) error {
	if errors.Is(err, selector.ErrUnknownBackend) {
		return huma.Error404NotFound("Backend not found", err)
	}
	if errors.Is(err, selector.ErrNoBackend) {
		return huma.Error503ServiceUnavailable("Backend unavailable", err)
	}
	return huma.Error500InternalServerError("Backend query failed", err)
}

func (s *Server) registerBackendRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-backends",
		Method:      http.MethodGet,
		Path:        "/api/backends",
		Summary:     "List Backends",
		Description: "Initialize every enabled backend and report capabilities and devices in selection order",
		Tags:        []string{"backends"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(context.Context, *struct{}) (*models.BackendListResponse, error) {
		statuses := s.options.Backends.Report()
		return &models.BackendListResponse{
			Body: models.BackendListData{Backends: statuses, Count: len(statuses)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-backend",
		Method:      http.MethodGet,
		Path:        "/api/backends/{name}",
		Summary:     "Get Backend",
		Description: "Initialize one backend, enabled or not, and report its status",
		Tags:        []string{"backends"},
		Security:    withAuth(),
		Errors:      []int{401, 404},
	}, func(_ context.Context, input *models.BackendInput) (*models.BackendResponse, error) {
		st, err := s.options.Backends.Status(input.Name)
		if err != nil {
			return nil, backendError(err)
		}
		return &models.BackendResponse{Body: st}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-backend-devices",
		Method:      http.MethodGet,
		Path:        "/api/backends/{name}/devices",
		Summary:     "List Devices",
		Description: "Probe the playback or capture devices of one backend",
		Tags:        []string{"backends"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 422, 503},
	}, func(_ context.Context, input *models.DeviceListInput) (*models.DeviceListResponse, error) {
		kind, err := backend.ParseProbeKind(input.Kind)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("Invalid kind", err)
		}
		devices, err := s.options.Backends.Devices(input.Name, kind)
		if err != nil {
			return nil, backendError(err)
		}
		return &models.DeviceListResponse{
			Body: models.DeviceListData{
				Backend: input.Name,
				Kind:    kind.String(),
				Devices: devices,
				Count:   len(devices),
			},
		}, nil
	})
}
