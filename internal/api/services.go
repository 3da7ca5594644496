package api

import (
	"github.com/shopfinder/shopfinder-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Directory *service.DirectoryService
}
