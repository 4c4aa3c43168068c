package api

import (
	"context"
	"net/http"
	"slices"

	"github.com/danielgtaylor/huma/v2"

	"github.com/smazurov/soundnode/internal/api/models"
	"github.com/smazurov/soundnode/internal/systemd"
)

func (s *Server) registerSystemdRoutes() {
	if s.options.SoundServers == nil {
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-sound-server",
		Method:      http.MethodGet,
		Path:        "/api/sound-server",
		Summary:     "Sound Server Status",
		Description: "ActiveState of the user units that can provide a PulseAudio server",
		Tags:        []string{"systemd"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, _ *struct{}) (*models.SoundServerResponse, error) {
		units := s.options.SoundServers.SoundServerStatus(ctx)
		body := models.SoundServerData{Units: units}
		for _, u := range units {
			if u.Active() {
				body.Active = u.Unit
				break
			}
		}
		return &models.SoundServerResponse{Body: body}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "restart-sound-server",
		Method:      http.MethodPost,
		Path:        "/api/sound-server/{unit}/restart",
		Summary:     "Restart Sound Server",
		Description: "Restart one of the known sound server units",
		Tags:        []string{"systemd"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 500},
	}, func(ctx context.Context, input *models.SoundServerUnitInput) (*models.SystemdServiceActionResponse, error) {
		if !slices.Contains(systemd.SoundServerUnits, input.Unit) {
			return nil, huma.Error404NotFound("Unknown sound server unit " + input.Unit)
		}
		if err := s.options.SoundServers.RestartService(ctx, input.Unit); err != nil {
			return nil, huma.Error500InternalServerError("Failed to restart service", err)
		}
		s.logger.Info("Restarted sound server", "unit", input.Unit)
		return &models.SystemdServiceActionResponse{
			Body: models.SystemdServiceAction{
				Service: input.Unit,
				Action:  "restart",
				Success: true,
			},
		}, nil
	})
}
