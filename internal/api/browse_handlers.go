package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerBrowseRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCities",
		Method:      http.MethodGet,
		Path:        "/api/v1/cities",
		Summary:     "List cities",
		Description: "Returns the distinct cities with listings",
		Tags:        []string{"Browse"},
	}, s.handleListCities)

	huma.Register(s.api, huma.Operation{
		OperationID: "listStates",
		Method:      http.MethodGet,
		Path:        "/api/v1/states",
		Summary:     "List states",
		Description: "Returns the distinct states with listings",
		Tags:        []string{"Browse"},
	}, s.handleListStates)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCounties",
		Method:      http.MethodGet,
		Path:        "/api/v1/counties",
		Summary:     "List counties",
		Description: "Returns the distinct counties with listings",
		Tags:        []string{"Browse"},
	}, s.handleListCounties)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the distinct category tag IDs in use",
		Tags:        []string{"Browse"},
	}, s.handleListTags)
}

// === DTOs ===

// CityResponse is one distinct city within a state.
type CityResponse struct {
	City  string `json:"city" doc:"City name"`
	State string `json:"state" doc:"State, as stored upstream"`
}

// CitiesOutput wraps the cities response for Huma.
type CitiesOutput struct {
	Body struct {
		Cities []CityResponse `json:"cities" doc:"Distinct cities"`
	}
}

// StatesOutput wraps the states response for Huma.
type StatesOutput struct {
	Body struct {
		States []string `json:"states" doc:"Distinct states"`
	}
}

// CountyResponse is one distinct county within a state.
type CountyResponse struct {
	County string `json:"county" doc:"County name"`
	State  string `json:"state" doc:"State, as stored upstream"`
}

// CountiesOutput wraps the counties response for Huma.
type CountiesOutput struct {
	Body struct {
		Counties []CountyResponse `json:"counties" doc:"Distinct counties"`
	}
}

// TagsOutput wraps the tags response for Huma.
type TagsOutput struct {
	Body struct {
		TagIDs []int64 `json:"tag_ids" doc:"Distinct category tag IDs"`
	}
}

// === Handlers ===

func (s *Server) handleListCities(ctx context.Context, _ *struct{}) (*CitiesOutput, error) {
	cities, err := s.services.Directory.Cities(ctx)
	if err != nil {
		return nil, err
	}

	out := &CitiesOutput{}
	out.Body.Cities = make([]CityResponse, len(cities))
	for i, c := range cities {
		out.Body.Cities[i] = CityResponse{City: c.City, State: c.State}
	}
	return out, nil
}

func (s *Server) handleListStates(ctx context.Context, _ *struct{}) (*StatesOutput, error) {
	states, err := s.services.Directory.States(ctx)
	if err != nil {
		return nil, err
	}

	out := &StatesOutput{}
	out.Body.States = states
	return out, nil
}

func (s *Server) handleListCounties(ctx context.Context, _ *struct{}) (*CountiesOutput, error) {
	counties, err := s.services.Directory.Counties(ctx)
	if err != nil {
		return nil, err
	}

	out := &CountiesOutput{}
	out.Body.Counties = make([]CountyResponse, len(counties))
	for i, c := range counties {
		out.Body.Counties[i] = CountyResponse{County: c.County, State: c.State}
	}
	return out, nil
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*TagsOutput, error) {
	tags, err := s.services.Directory.Tags(ctx)
	if err != nil {
		return nil, err
	}

	out := &TagsOutput{}
	out.Body.TagIDs = tags
	return out, nil
}
