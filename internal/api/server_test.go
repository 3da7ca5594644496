package api

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"

	"github.com/shopfinder/shopfinder-server/internal/config"
	"github.com/shopfinder/shopfinder-server/internal/directory"
	"github.com/shopfinder/shopfinder-server/internal/service"
	"github.com/shopfinder/shopfinder-server/internal/validation"
)

// testEnvelope mirrors the wire envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type stubSource struct {
	listings []directory.Listing
	err      error
}

func (s *stubSource) FetchAll(ctx context.Context) ([]directory.Listing, error) {
	return s.listings, s.err
}

func testServerListings() []directory.Listing {
	return []directory.Listing{
		{ID: 1, Name: "The Book Nook", City: "Atlanta", State: "Georgia", County: "Fulton County", Slug: "the-book-nook", TagIDs: []int64{1}, Rating: 4.5, ReviewCount: 120, Lat: "33.749", Lng: "-84.388"},
		{ID: 2, Name: "Peach Outfitters", City: "Atlanta", State: "Georgia", County: "Fulton County", TagIDs: []int64{2}, Rating: 4.8, ReviewCount: 40, Lat: "33.760", Lng: "-84.390"},
		{ID: 3, Name: "Lone Star Leather", City: "Austin", State: "TX", County: "Travis", TagIDs: []int64{1}, Rating: 3.9, ReviewCount: 300},
	}
}

// setupTestServer builds a server over an in-memory listing source.
func setupTestServer(t *testing.T, source directory.Source) (*Server, humatest.TestAPI) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		Directory: config.DirectoryConfig{
			PageSize:    100,
			SnapshotTTL: time.Minute,
		},
		Server: config.ServerConfig{
			Name:      "Test Server",
			PublicURL: "https://shopfinder.example.com",
			Port:      "8080",
		},
	}

	cache := directory.NewCache(source, cfg.Directory.SnapshotTTL, directory.DefaultBuildOptions(), logger)
	dir := directory.New(cache, logger)
	directoryService := service.NewDirectoryService(dir, validation.New(), logger)

	router := chi.NewRouter()
	humaConfig := huma.DefaultConfig("ShopFinder API Test", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		config:   cfg,
		services: &Services{Directory: directoryService},
		router:   router,
		api:      api,
		logger:   logger,
	}

	s.registerHealthRoutes()
	s.registerListingRoutes()
	s.registerBrowseRoutes()
	s.router.Get("/sitemap.xml", s.handleSitemap)

	return s, humatest.Wrap(t, api)
}
