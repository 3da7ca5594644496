// Package di provides dependency injection configuration for the ShopFinder
// server.
package di

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/shopfinder/shopfinder-server/internal/config"
	"github.com/shopfinder/shopfinder-server/internal/di/providers"
	"github.com/shopfinder/shopfinder-server/internal/directory"
	"github.com/shopfinder/shopfinder-server/internal/logger"
	"github.com/shopfinder/shopfinder-server/internal/postgrest"
	"github.com/shopfinder/shopfinder-server/internal/service"
	"github.com/shopfinder/shopfinder-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Directory layer
	do.Provide(injector, providers.ProvidePostgrestClient)
	do.Provide(injector, providers.ProvideListingSource)
	do.Provide(injector, providers.ProvideSnapshotCache)
	do.Provide(injector, providers.ProvideDirectory)

	// Business services
	do.Provide(injector, providers.ProvideDirectoryService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// The snapshot warms in the background; the first data request would fill it
// anyway, this just front-loads the work.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	log := do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*postgrest.Client](injector)
	_ = do.MustInvoke[*directory.RemoteSource](injector)
	cache := do.MustInvoke[*directory.Cache](injector)
	_ = do.MustInvoke[*directory.Directory](injector)
	_ = do.MustInvoke[*service.DirectoryService](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := cache.Snapshot(ctx); err != nil {
			log.Warn("Initial snapshot build failed, will retry on first request", "error", err)
		}
	}()

	return nil
}
