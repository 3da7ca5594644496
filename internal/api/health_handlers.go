package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	snapHealth := s.checkSnapshot()
	components["snapshot"] = snapHealth
	if snapHealth.Status == "unhealthy" {
		overall = "unhealthy"
	} else if snapHealth.Status == "degraded" {
		overall = "degraded"
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Components: components,
		},
	}, nil
}

// checkSnapshot reports on the cached listing snapshot without forcing a
// rebuild. A cold cache is degraded, not unhealthy; the next data request
// fills it.
func (s *Server) checkSnapshot() ComponentHealth {
	if s.services == nil || s.services.Directory == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "directory service not configured",
		}
	}

	status := s.services.Directory.Status()
	if !status.Ready {
		return ComponentHealth{
			Status:  "degraded",
			Message: "snapshot not yet built",
		}
	}

	if status.Age > s.config.Directory.SnapshotTTL {
		return ComponentHealth{
			Status:  "degraded",
			Message: "snapshot stale, rebuild pending (" + status.BuildID + ")",
		}
	}

	return ComponentHealth{
		Status:  "healthy",
		Message: formatListingCount(status.Total) + " (" + status.BuildID + ")",
	}
}

func formatListingCount(n int) string {
	switch n {
	case 0:
		return "no listings indexed"
	case 1:
		return "1 listing indexed"
	default:
		return strconv.Itoa(n) + " listings indexed"
	}
}
