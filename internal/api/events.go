package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/smazurov/soundnode/internal/events"
)

// registerSSERoutes registers the backend event stream.
func (s *Server) registerSSERoutes() {
	if s.options.EventBus == nil {
		return
	}

	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Backend initialization, probe, device open and device node events",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"backend-init":    events.BackendInitEvent{},
		"devices-probed":  events.DevicesProbedEvent{},
		"device-opened":   events.DeviceOpenedEvent{},
		"devices-changed": events.DevicesChangedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)
		unsubscribers := []func(){
			events.SubscribeToChannel[events.BackendInitEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.DevicesProbedEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.DeviceOpenedEvent](s.options.EventBus, eventCh),
			events.SubscribeToChannel[events.DevicesChangedEvent](s.options.EventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-eventCh:
				if err := send.Data(ev); err != nil {
					return
				}
			}
		}
	})
}
