package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/shopfinder/shopfinder-server/internal/postgrest"
)

// Source supplies the full listing corpus. Implemented by RemoteSource in
// production and by in-memory stubs in tests.
type Source interface {
	FetchAll(ctx context.Context) ([]Listing, error)
}

// RemoteSource pulls listings from the upstream PostgREST datastore in
// bounded pages.
type RemoteSource struct {
	client   *postgrest.Client
	table    string
	pageSize int
	logger   *slog.Logger
}

// NewRemoteSource creates a source reading from the given table.
func NewRemoteSource(client *postgrest.Client, table string, pageSize int, logger *slog.Logger) *RemoteSource {
	return &RemoteSource{
		client:   client,
		table:    table,
		pageSize: pageSize,
		logger:   logger,
	}
}

// FetchAll retrieves every published listing, ordered by name for
// deterministic paging, concatenating pages until one comes back short.
//
// Zero rows is not an error. A failed page aborts the loop and returns the
// pages fetched so far with a logged warning; the caller gets a usable,
// possibly partial, corpus rather than an endless retry.
func (s *RemoteSource) FetchAll(ctx context.Context) ([]Listing, error) {
	var listings []Listing

	for offset := 0; ; offset += s.pageSize {
		body, err := s.client.Select(ctx, s.table, postgrest.Query{
			Order:   "name.asc",
			Offset:  offset,
			Limit:   s.pageSize,
			Filters: []postgrest.Filter{postgrest.Eq("published", "true")},
		})
		if err != nil {
			s.logger.Warn("listing page fetch failed, keeping partial result",
				"offset", offset,
				"fetched", len(listings),
				"error", err,
			)
			return listings, nil
		}

		var rows []rawRow
		if err := json.Unmarshal(body, &rows); err != nil {
			s.logger.Warn("listing page decode failed, keeping partial result",
				"offset", offset,
				"fetched", len(listings),
				"error", err,
			)
			return listings, nil
		}

		for i := range rows {
			listings = append(listings, rows[i].toListing())
		}

		if len(rows) < s.pageSize {
			return listings, nil
		}
	}
}

// FetchBySlug performs a secondary exact-then-fuzzy detail fetch for a single
// slug. Used by consumers that want fresh detail without waiting for a
// snapshot rebuild.
func (s *RemoteSource) FetchBySlug(ctx context.Context, slugValue string) (*Listing, error) {
	body, err := s.client.Select(ctx, s.table, postgrest.Query{
		Limit:   1,
		Filters: []postgrest.Filter{postgrest.Eq("published", "true"), postgrest.Eq("slug", slugValue)},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch by slug: %w", err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// Fall back to a case-insensitive pattern match.
		body, err = s.client.Select(ctx, s.table, postgrest.Query{
			Limit:   1,
			Filters: []postgrest.Filter{postgrest.Eq("published", "true"), postgrest.ILike("slug", "*"+slugValue+"*")},
		})
		if err != nil {
			return nil, fmt.Errorf("fuzzy fetch by slug: %w", err)
		}
		if rows, err = decodeRows(body); err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	l := rows[0].toListing()
	return &l, nil
}

func decodeRows(body []byte) ([]rawRow, error) {
	var rows []rawRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode listing rows: %w", err)
	}
	return rows, nil
}
