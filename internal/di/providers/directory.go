package providers

import (
	"github.com/samber/do/v2"

	"github.com/shopfinder/shopfinder-server/internal/config"
	"github.com/shopfinder/shopfinder-server/internal/directory"
	"github.com/shopfinder/shopfinder-server/internal/logger"
	"github.com/shopfinder/shopfinder-server/internal/postgrest"
	"github.com/shopfinder/shopfinder-server/internal/service"
	"github.com/shopfinder/shopfinder-server/internal/validation"
)

// ProvidePostgrestClient provides the upstream datastore client.
func ProvidePostgrestClient(i do.Injector) (*postgrest.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return postgrest.New(cfg.Datastore.URL, cfg.Datastore.APIKey, cfg.Datastore.Timeout, log.Logger), nil
}

// ProvideListingSource provides the paged listing fetcher.
func ProvideListingSource(i do.Injector) (*directory.RemoteSource, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*postgrest.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return directory.NewRemoteSource(client, cfg.Datastore.Table, cfg.Directory.PageSize, log.Logger), nil
}

// ProvideSnapshotCache provides the TTL snapshot cache over the source.
func ProvideSnapshotCache(i do.Injector) (*directory.Cache, error) {
	cfg := do.MustInvoke[*config.Config](i)
	source := do.MustInvoke[*directory.RemoteSource](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := directory.BuildOptions{
		FeaturedSize: cfg.Directory.FeaturedSize,
		PopularSize:  cfg.Directory.PopularSize,
	}
	return directory.NewCache(source, cfg.Directory.SnapshotTTL, opts, log.Logger), nil
}

// ProvideDirectory provides the snapshot query layer.
func ProvideDirectory(i do.Injector) (*directory.Directory, error) {
	cache := do.MustInvoke[*directory.Cache](i)
	log := do.MustInvoke[*logger.Logger](i)

	return directory.New(cache, log.Logger), nil
}

// ProvideDirectoryService provides the validated directory service.
func ProvideDirectoryService(i do.Injector) (*service.DirectoryService, error) {
	dir := do.MustInvoke[*directory.Directory](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewDirectoryService(dir, validator, log.Logger), nil
}
