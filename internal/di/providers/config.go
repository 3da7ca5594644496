// Package providers contains dependency injection providers for the
// ShopFinder server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/shopfinder/shopfinder-server/internal/config"
	"github.com/shopfinder/shopfinder-server/internal/logger"
	"github.com/shopfinder/shopfinder-server/internal/validation"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting ShopFinder Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"datastore_url", cfg.Datastore.URL,
		"datastore_table", cfg.Datastore.Table,
	)

	return log, nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
