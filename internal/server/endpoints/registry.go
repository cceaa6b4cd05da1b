package endpoints

import (
	"github.com/jackzampolin/skim/internal/api"
)

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&StatusEndpoint{},

		// Extraction
		&ExtractEndpoint{},
	}
}
