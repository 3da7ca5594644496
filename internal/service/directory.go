// Package service holds the application services between the HTTP layer and
// the directory core. Handlers call services; services validate input, query
// the directory, and translate misses into domain errors.
package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopfinder/shopfinder-server/internal/directory"
	domainerrors "github.com/shopfinder/shopfinder-server/internal/errors"
	"github.com/shopfinder/shopfinder-server/internal/validation"
)

const (
	// DefaultRelatedLimit is used when a related query gives no limit.
	DefaultRelatedLimit = 6
	// MaxRelatedLimit caps how many related listings one call returns.
	MaxRelatedLimit = 24
	// MaxNearbyLimit caps proximity query sizes.
	MaxNearbyLimit = 100
)

// DirectoryService exposes validated directory operations.
type DirectoryService struct {
	directory *directory.Directory
	validator *validation.Validator
	logger    *slog.Logger
}

// NewDirectoryService creates a new directory service.
func NewDirectoryService(dir *directory.Directory, validator *validation.Validator, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		directory: dir,
		validator: validator,
		logger:    logger,
	}
}

// ListListingsRequest narrows the listing collection. All fields optional.
type ListListingsRequest struct {
	State  string  `json:"state" validate:"omitempty,max=64"`
	City   string  `json:"city" validate:"omitempty,max=128"`
	County string  `json:"county" validate:"omitempty,max=128"`
	Tags   []int64 `json:"tags" validate:"omitempty,max=16,dive,gt=0"`
}

// ListListings returns the listings matching the request filters, the full
// set when no filter is given.
func (s *DirectoryService) ListListings(ctx context.Context, req ListListingsRequest) ([]*directory.Listing, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	listings, err := s.directory.Filtered(ctx, directory.Filter{
		State:  req.State,
		City:   req.City,
		County: req.County,
		Tags:   req.Tags,
	})
	if err != nil {
		return nil, s.upstream(err)
	}
	return listings, nil
}

// GetListing resolves an identifier (numeric ID, slug, or location path) to a
// single listing.
func (s *DirectoryService) GetListing(ctx context.Context, identifier string) (*directory.Listing, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domainerrors.Validation("identifier is required")
	}

	l, err := s.directory.Resolve(ctx, identifier)
	if err != nil {
		return nil, s.upstream(err)
	}
	if l == nil {
		return nil, domainerrors.NotFoundf("no listing matches %q", identifier)
	}

	s.logger.Debug("listing resolved", "identifier", identifier, "listing_id", l.ID)
	return l, nil
}

// RelatedListings resolves the identifier and returns related listings, never
// including the listing itself.
func (s *DirectoryService) RelatedListings(ctx context.Context, identifier string, limit int) ([]*directory.Listing, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	if limit > MaxRelatedLimit {
		limit = MaxRelatedLimit
	}

	l, err := s.GetListing(ctx, identifier)
	if err != nil {
		return nil, err
	}

	related, err := s.directory.Related(ctx, l, limit)
	if err != nil {
		return nil, s.upstream(err)
	}
	return related, nil
}

// NearbyRequest is a proximity query.
type NearbyRequest struct {
	Lat   float64 `json:"lat" validate:"latitude"`
	Lng   float64 `json:"lng" validate:"longitude"`
	Limit int     `json:"limit" validate:"gte=0,lte=100"`
}

// NearbyListings returns listings with coordinates ordered by distance from
// the request point.
func (s *DirectoryService) NearbyListings(ctx context.Context, req NearbyRequest) ([]*directory.Listing, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = DefaultRelatedLimit
	}

	listings, err := s.directory.Nearby(ctx, req.Lat, req.Lng, req.Limit)
	if err != nil {
		return nil, s.upstream(err)
	}
	return listings, nil
}

// FeaturedListings returns the current snapshot's featured sample.
func (s *DirectoryService) FeaturedListings(ctx context.Context) ([]*directory.Listing, error) {
	listings, err := s.directory.Featured(ctx)
	if err != nil {
		return nil, s.upstream(err)
	}
	return listings, nil
}

// PopularListings returns the current snapshot's rating-ranked listings.
func (s *DirectoryService) PopularListings(ctx context.Context) ([]*directory.Listing, error) {
	listings, err := s.directory.Popular(ctx)
	if err != nil {
		return nil, s.upstream(err)
	}
	return listings, nil
}

// Cities returns the distinct (city, state) pairs.
func (s *DirectoryService) Cities(ctx context.Context) ([]directory.CityRef, error) {
	cities, err := s.directory.Cities(ctx)
	if err != nil {
		return nil, s.upstream(err)
	}
	return cities, nil
}

// States returns the distinct states.
func (s *DirectoryService) States(ctx context.Context) ([]string, error) {
	states, err := s.directory.States(ctx)
	if err != nil {
		return nil, s.upstream(err)
	}
	return states, nil
}

// Counties returns the distinct (county, state) pairs.
func (s *DirectoryService) Counties(ctx context.Context) ([]directory.CountyRef, error) {
	counties, err := s.directory.Counties(ctx)
	if err != nil {
		return nil, s.upstream(err)
	}
	return counties, nil
}

// Tags returns the distinct category tag IDs.
func (s *DirectoryService) Tags(ctx context.Context) ([]int64, error) {
	tags, err := s.directory.TagIDs(ctx)
	if err != nil {
		return nil, s.upstream(err)
	}
	return tags, nil
}

// SitemapSlugs returns every addressable listing slug, sorted and
// deduplicated, for sitemap generation.
func (s *DirectoryService) SitemapSlugs(ctx context.Context) ([]string, error) {
	listings, err := s.directory.Filtered(ctx, directory.Filter{})
	if err != nil {
		return nil, s.upstream(err)
	}

	seen := make(map[string]bool, len(listings))
	slugs := make([]string, 0, len(listings))
	for _, l := range listings {
		if slug := l.EffectiveSlug(); slug != "" && !seen[slug] {
			seen[slug] = true
			slugs = append(slugs, slug)
		}
	}
	sort.Strings(slugs)
	return slugs, nil
}

// SnapshotStatus describes the cached snapshot for health reporting.
type SnapshotStatus struct {
	Ready   bool          `json:"ready"`
	Total   int           `json:"total"`
	Age     time.Duration `json:"age"`
	BuildID string        `json:"build_id,omitempty"`
}

// Status reports on the current snapshot without triggering a rebuild.
func (s *DirectoryService) Status() SnapshotStatus {
	snap := s.directory.Cache().Current()
	if snap == nil {
		return SnapshotStatus{}
	}
	return SnapshotStatus{
		Ready:   true,
		Total:   snap.Total,
		Age:     snap.Age(time.Now()),
		BuildID: snap.BuildID,
	}
}

// Refresh drops the cached snapshot and rebuilds it immediately.
func (s *DirectoryService) Refresh(ctx context.Context) error {
	s.directory.Cache().Invalidate()
	if _, err := s.directory.Cache().Snapshot(ctx); err != nil {
		return s.upstream(err)
	}
	s.logger.Info("listing snapshot refreshed")
	return nil
}

// upstream wraps a directory failure as an upstream domain error.
func (s *DirectoryService) upstream(err error) error {
	s.logger.Error("directory query failed", "error", err)
	return domainerrors.Upstream("listing data is temporarily unavailable").WithCause(err)
}
