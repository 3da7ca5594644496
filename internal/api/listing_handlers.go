package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shopfinder/shopfinder-server/internal/directory"
	"github.com/shopfinder/shopfinder-server/internal/service"
)

func (s *Server) registerListingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings",
		Summary:     "List listings",
		Description: "Returns listings, optionally filtered by state, city, county, or tags",
		Tags:        []string{"Listings"},
	}, s.handleListListings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFeaturedListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/featured",
		Summary:     "Featured listings",
		Description: "Returns the current featured sample",
		Tags:        []string{"Listings"},
	}, s.handleFeaturedListings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPopularListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/popular",
		Summary:     "Popular listings",
		Description: "Returns listings ranked by rating and review count",
		Tags:        []string{"Listings"},
	}, s.handlePopularListings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNearbyListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/nearby",
		Summary:     "Nearby listings",
		Description: "Returns listings closest to a coordinate",
		Tags:        []string{"Listings"},
	}, s.handleNearbyListings)

	huma.Register(s.api, huma.Operation{
		OperationID: "getListing",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{identifier}",
		Summary:     "Get listing",
		Description: "Resolves a numeric ID, slug, or URL-encoded location path to a listing",
		Tags:        []string{"Listings"},
	}, s.handleGetListing)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRelatedListings",
		Method:      http.MethodGet,
		Path:        "/api/v1/listings/{identifier}/related",
		Summary:     "Related listings",
		Description: "Returns listings related to the resolved listing",
		Tags:        []string{"Listings"},
	}, s.handleRelatedListings)
}

// === DTOs ===

// ListingResponse contains listing data in API responses.
type ListingResponse struct {
	ID          int64          `json:"id" doc:"Listing ID"`
	Name        string         `json:"name" doc:"Business name"`
	Slug        string         `json:"slug,omitempty" doc:"URL-safe slug"`
	Street      string         `json:"street,omitempty" doc:"Street address"`
	City        string         `json:"city,omitempty" doc:"City"`
	State       string         `json:"state,omitempty" doc:"State, as stored upstream"`
	Zip         string         `json:"zip,omitempty" doc:"ZIP code"`
	County      string         `json:"county,omitempty" doc:"County"`
	Lat         string         `json:"lat,omitempty" doc:"Latitude"`
	Lng         string         `json:"lng,omitempty" doc:"Longitude"`
	TagIDs      []int64        `json:"tag_ids,omitempty" doc:"Category tag IDs"`
	Rating      float64        `json:"rating,omitempty" doc:"Average rating"`
	ReviewCount int            `json:"review_count,omitempty" doc:"Number of reviews"`
	Hours       map[string]any `json:"hours,omitempty" doc:"Opening hours"`
	Photos      []string       `json:"photos,omitempty" doc:"Photo URLs"`
	Website     string         `json:"website,omitempty" doc:"Website URL"`
	Phone       string         `json:"phone,omitempty" doc:"Phone number"`
}

func toListingResponse(l *directory.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		Name:        l.Name,
		Slug:        l.EffectiveSlug(),
		Street:      l.Street,
		City:        l.City,
		State:       l.State,
		Zip:         l.Zip,
		County:      l.County,
		Lat:         l.Lat,
		Lng:         l.Lng,
		TagIDs:      l.TagIDs,
		Rating:      l.Rating,
		ReviewCount: l.ReviewCount,
		Hours:       l.Hours,
		Photos:      l.Photos,
		Website:     l.Website,
		Phone:       l.Phone,
	}
}

func toListingResponses(listings []*directory.Listing) []ListingResponse {
	resp := make([]ListingResponse, len(listings))
	for i, l := range listings {
		resp[i] = toListingResponse(l)
	}
	return resp
}

// ListListingsInput contains filter parameters for listing listings.
type ListListingsInput struct {
	State  string  `query:"state" doc:"State name or USPS abbreviation"`
	City   string  `query:"city" doc:"City name"`
	County string  `query:"county" doc:"County name, with or without the County suffix"`
	Tags   []int64 `query:"tags" doc:"Category tag IDs, any-of"`
}

// ListingsResponse contains a list of listings.
type ListingsResponse struct {
	Listings []ListingResponse `json:"listings" doc:"Matching listings"`
	Total    int               `json:"total" doc:"Number of matching listings"`
}

// ListingsOutput wraps the listings response for Huma.
type ListingsOutput struct {
	Body ListingsResponse
}

// GetListingInput contains parameters for resolving a listing.
type GetListingInput struct {
	Identifier string `path:"identifier" doc:"Numeric ID, slug, or URL-encoded state/county/city/name path"`
}

// ListingOutput wraps a single listing response for Huma.
type ListingOutput struct {
	Body ListingResponse
}

// RelatedListingsInput contains parameters for related listings.
type RelatedListingsInput struct {
	Identifier string `path:"identifier" doc:"Numeric ID, slug, or URL-encoded location path"`
	Limit      int    `query:"limit" minimum:"0" maximum:"24" doc:"Maximum results, defaults to 6"`
}

// NearbyListingsInput contains parameters for proximity queries.
type NearbyListingsInput struct {
	Lat   float64 `query:"lat" required:"true" doc:"Latitude of the origin point"`
	Lng   float64 `query:"lng" required:"true" doc:"Longitude of the origin point"`
	Limit int     `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results, defaults to 6"`
}

// === Handlers ===

func (s *Server) handleListListings(ctx context.Context, input *ListListingsInput) (*ListingsOutput, error) {
	listings, err := s.services.Directory.ListListings(ctx, service.ListListingsRequest{
		State:  input.State,
		City:   input.City,
		County: input.County,
		Tags:   input.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &ListingsOutput{Body: ListingsResponse{
		Listings: toListingResponses(listings),
		Total:    len(listings),
	}}, nil
}

func (s *Server) handleGetListing(ctx context.Context, input *GetListingInput) (*ListingOutput, error) {
	l, err := s.services.Directory.GetListing(ctx, input.Identifier)
	if err != nil {
		return nil, err
	}

	return &ListingOutput{Body: toListingResponse(l)}, nil
}

func (s *Server) handleRelatedListings(ctx context.Context, input *RelatedListingsInput) (*ListingsOutput, error) {
	listings, err := s.services.Directory.RelatedListings(ctx, input.Identifier, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListingsOutput{Body: ListingsResponse{
		Listings: toListingResponses(listings),
		Total:    len(listings),
	}}, nil
}

func (s *Server) handleNearbyListings(ctx context.Context, input *NearbyListingsInput) (*ListingsOutput, error) {
	listings, err := s.services.Directory.NearbyListings(ctx, service.NearbyRequest{
		Lat:   input.Lat,
		Lng:   input.Lng,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &ListingsOutput{Body: ListingsResponse{
		Listings: toListingResponses(listings),
		Total:    len(listings),
	}}, nil
}

func (s *Server) handleFeaturedListings(ctx context.Context, _ *struct{}) (*ListingsOutput, error) {
	listings, err := s.services.Directory.FeaturedListings(ctx)
	if err != nil {
		return nil, err
	}

	return &ListingsOutput{Body: ListingsResponse{
		Listings: toListingResponses(listings),
		Total:    len(listings),
	}}, nil
}

func (s *Server) handlePopularListings(ctx context.Context, _ *struct{}) (*ListingsOutput, error) {
	listings, err := s.services.Directory.PopularListings(ctx)
	if err != nil {
		return nil, err
	}

	return &ListingsOutput{Body: ListingsResponse{
		Listings: toListingResponses(listings),
		Total:    len(listings),
	}}, nil
}
