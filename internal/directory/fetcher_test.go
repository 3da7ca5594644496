package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfinder/shopfinder-server/internal/postgrest"
)

func newRemoteSource(t *testing.T, handler http.HandlerFunc, pageSize int) (*RemoteSource, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := postgrest.New(srv.URL, "test-key", 0, testLogger())
	return NewRemoteSource(client, "listings", pageSize, testLogger()), srv
}

func pageBody(from, count int) string {
	body := "["
	for i := 0; i < count; i++ {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"id":%d,"name":"Shop %03d","city":"Atlanta","state":"Georgia"}`, from+i, from+i)
	}
	return body + "]"
}

func TestFetchAllPagesUntilShortPage(t *testing.T) {
	var requests []string
	source, _ := newRemoteSource(t, func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)

		assert.Equal(t, "name.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "eq.true", r.URL.Query().Get("published"))
		assert.Equal(t, "test-key", r.Header.Get("apikey"))

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if offset >= 4 {
			fmt.Fprint(w, pageBody(offset+1, 1))
			return
		}
		fmt.Fprint(w, pageBody(offset+1, 2))
	}, 2)

	listings, err := source.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 5)
	assert.Len(t, requests, 3)
	assert.Equal(t, int64(1), listings[0].ID)
	assert.Equal(t, int64(5), listings[4].ID)
}

func TestFetchAllEmptyTable(t *testing.T) {
	source, _ := newRemoteSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}, 50)

	listings, err := source.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listings)
}

func TestFetchAllKeepsPartialResultOnPageFailure(t *testing.T) {
	var calls int
	source, _ := newRemoteSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, pageBody(1, 2))
	}, 2)

	listings, err := source.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestFetchAllKeepsPartialResultOnDecodeFailure(t *testing.T) {
	var calls int
	source, _ := newRemoteSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			fmt.Fprint(w, "not json")
			return
		}
		fmt.Fprint(w, pageBody(1, 2))
	}, 2)

	listings, err := source.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestFetchBySlugExact(t *testing.T) {
	source, _ := newRemoteSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.the-book-nook", r.URL.Query().Get("slug"))
		fmt.Fprint(w, `[{"id":1,"name":"The Book Nook","slug":"the-book-nook"}]`)
	}, 50)

	got, err := source.FetchBySlug(context.Background(), "the-book-nook")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
}

func TestFetchBySlugFallsBackToPattern(t *testing.T) {
	var calls int
	source, _ := newRemoteSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			assert.Equal(t, "eq.book-nook", r.URL.Query().Get("slug"))
			fmt.Fprint(w, "[]")
			return
		}
		assert.Equal(t, "ilike.*book-nook*", r.URL.Query().Get("slug"))
		fmt.Fprint(w, `[{"id":1,"name":"The Book Nook","slug":"the-book-nook"}]`)
	}, 50)

	got, err := source.FetchBySlug(context.Background(), "book-nook")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, 2, calls)
}

func TestFetchBySlugMiss(t *testing.T) {
	source, _ := newRemoteSource(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "[]")
	}, 50)

	got, err := source.FetchBySlug(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}
