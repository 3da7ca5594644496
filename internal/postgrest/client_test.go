package postgrest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSelect_BuildsQuery(t *testing.T) {
	var gotQuery map[string][]string
	var gotHeaders http.Header

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotHeaders = r.Header
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-key", 5*time.Second, testLogger())

	body, err := c.Select(context.Background(), "listings", Query{
		Order:  "name.asc",
		Offset: 1000,
		Limit:  1000,
		Filters: []Filter{
			Eq("published", "true"),
			ILike("slug", "the-book-*"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))

	assert.Equal(t, "*", gotQuery["select"][0])
	assert.Equal(t, "name.asc", gotQuery["order"][0])
	assert.Equal(t, "1000", gotQuery["offset"][0])
	assert.Equal(t, "1000", gotQuery["limit"][0])
	assert.Equal(t, "eq.true", gotQuery["published"][0])
	assert.Equal(t, "ilike.the-book-*", gotQuery["slug"][0])

	assert.Equal(t, "secret-key", gotHeaders.Get("apikey"))
	assert.Equal(t, "Bearer secret-key", gotHeaders.Get("Authorization"))
}

func TestSelect_OmitsEmptyRangeParams(t *testing.T) {
	var gotQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second, testLogger())

	_, err := c.Select(context.Background(), "listings", Query{})
	require.NoError(t, err)

	assert.NotContains(t, gotQuery, "offset")
	assert.NotContains(t, gotQuery, "limit")
	assert.NotContains(t, gotQuery, "order")
}

func TestSelect_StatusErrors(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))

		c := New(srv.URL, "", 5*time.Second, testLogger())
		_, err := c.Select(context.Background(), "listings", Query{})
		assert.ErrorIs(t, err, tt.wantErr, "status %d", tt.status)

		srv.Close()
	}
}

func TestSelect_PartialContentOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", 5*time.Second, testLogger())

	body, err := c.Select(context.Background(), "listings", Query{})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1}]`, string(body))
}
