package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDirectory(t *testing.T, listings []Listing) *Directory {
	t.Helper()
	cache := NewCache(&stubSource{listings: listings}, time.Minute, DefaultBuildOptions(), testLogger())
	return New(cache, testLogger())
}

func TestListingsByCity(t *testing.T) {
	d := newTestDirectory(t, testListings())
	ctx := context.Background()

	tests := []struct {
		name    string
		city    string
		state   string
		wantIDs []int64
	}{
		{name: "full state name", city: "Atlanta", state: "Georgia", wantIDs: []int64{1, 2}},
		{name: "abbreviation for stored full name", city: "Atlanta", state: "GA", wantIDs: []int64{1, 2}},
		{name: "stored abbreviation verbatim", city: "Austin", state: "TX", wantIDs: []int64{4, 5}},
		{name: "full name for stored abbreviation", city: "Austin", state: "Texas", wantIDs: []int64{4, 5}},
		{name: "unknown city", city: "Macon", state: "Georgia", wantIDs: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.ListingsByCity(ctx, tt.city, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, listingIDs(got))
		})
	}
}

func TestListingsByState(t *testing.T) {
	d := newTestDirectory(t, testListings())
	ctx := context.Background()

	got, err := d.ListingsByState(ctx, "GA")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, listingIDs(got))

	got, err = d.ListingsByState(ctx, "Texas")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, listingIDs(got))

	got, err = d.ListingsByState(ctx, "Narnia")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestListingsByCounty(t *testing.T) {
	d := newTestDirectory(t, testListings())
	ctx := context.Background()

	// Suffix and abbreviation tolerance compose.
	for _, county := range []string{"Fulton", "Fulton County", "fulton"} {
		for _, state := range []string{"Georgia", "GA"} {
			got, err := d.ListingsByCounty(ctx, county, state)
			require.NoError(t, err)
			assert.Equal(t, []int64{1, 2}, listingIDs(got), "county=%q state=%q", county, state)
		}
	}

	got, err := d.ListingsByCounty(ctx, "Chatham", "Georgia")
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, listingIDs(got))
}

func TestListingsByTag(t *testing.T) {
	d := newTestDirectory(t, testListings())
	ctx := context.Background()

	got, err := d.ListingsByTag(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, listingIDs(got))

	got, err = d.ListingsByTag(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListingBySlug(t *testing.T) {
	d := newTestDirectory(t, testListings())
	ctx := context.Background()

	got, err := d.ListingBySlug(ctx, "peach-outfitters")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)

	got, err = d.ListingBySlug(ctx, "no-such-shop")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRelatedPrefersSameCity(t *testing.T) {
	listings := []Listing{
		{ID: 1, Name: "Alpha", City: "Portland", State: "Oregon"},
		{ID: 2, Name: "Bravo", City: "Portland", State: "Oregon"},
		{ID: 3, Name: "Charlie", City: "Portland", State: "Oregon"},
		{ID: 4, Name: "Delta", City: "Portland", State: "Oregon"},
		{ID: 5, Name: "Echo", City: "Eugene", State: "Oregon"},
	}
	d := newTestDirectory(t, listings)

	got, err := d.Related(context.Background(), &listings[0], 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, listingIDs(got))
}

func TestRelatedFallsBackToState(t *testing.T) {
	d := newTestDirectory(t, testListings())

	// Atlanta holds only one other listing, below the same-city threshold.
	book := &testListings()[0]
	got, err := d.Related(context.Background(), book, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, listingIDs(got))
}

func TestRelatedExcludesSelfAndHonorsLimit(t *testing.T) {
	d := newTestDirectory(t, testListings())

	book := &testListings()[0]
	got, err := d.Related(context.Background(), book, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEqual(t, int64(1), got[0].ID)
}

func TestRelatedFallsBackToFeatured(t *testing.T) {
	d := newTestDirectory(t, testListings())

	// No location at all drops through to the featured sample.
	mystery := &testListings()[5]
	got, err := d.Related(context.Background(), mystery, 3)
	require.NoError(t, err)
	for _, l := range got {
		assert.NotEqual(t, int64(6), l.ID)
	}
}

func TestFilteredStateFormsAreEquivalent(t *testing.T) {
	d := newTestDirectory(t, testListings())
	ctx := context.Background()

	byName, err := d.Filtered(ctx, Filter{State: "Georgia", County: "Fulton County"})
	require.NoError(t, err)
	byAbbrev, err := d.Filtered(ctx, Filter{State: "GA", County: "fulton"})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, listingIDs(byName))
	assert.Equal(t, listingIDs(byName), listingIDs(byAbbrev))
}

func TestFilteredCombinesPredicates(t *testing.T) {
	d := newTestDirectory(t, testListings())
	ctx := context.Background()

	got, err := d.Filtered(ctx, Filter{State: "Georgia", City: "Atlanta", Tags: []int64{1}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, listingIDs(got))

	// Tags are any-of.
	got, err = d.Filtered(ctx, Filter{Tags: []int64{1, 3}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4}, listingIDs(got))
}

func TestFilteredCityWithoutStateSpansStates(t *testing.T) {
	listings := []Listing{
		{ID: 1, Name: "Corner Books", City: "Springfield", State: "Illinois"},
		{ID: 2, Name: "Ozark Outfitters", City: "Springfield", State: "Missouri"},
		{ID: 3, Name: "Windy City Vinyl", City: "Chicago", State: "Illinois"},
	}
	d := newTestDirectory(t, listings)
	ctx := context.Background()

	// Without a state the city predicate scans every state.
	got, err := d.Filtered(ctx, Filter{City: "Springfield"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, listingIDs(got))

	// Adding the state narrows it back down.
	got, err = d.Filtered(ctx, Filter{State: "Missouri", City: "Springfield"})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, listingIDs(got))
}

func TestFilteredEmptyFilterReturnsAll(t *testing.T) {
	d := newTestDirectory(t, testListings())

	got, err := d.Filtered(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 6)
}

func TestNearbyOrdersByDistance(t *testing.T) {
	d := newTestDirectory(t, testListings())

	// Downtown Atlanta: the two Atlanta shops first, Savannah next. The two
	// records without coordinates never appear.
	got, err := d.Nearby(context.Background(), 33.749, -84.388, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4}, listingIDs(got))

	got, err = d.Nearby(context.Background(), 33.749, -84.388, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, listingIDs(got))
}

func TestDistinctListAccessors(t *testing.T) {
	d := newTestDirectory(t, testListings())
	ctx := context.Background()

	cities, err := d.Cities(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 3)

	states, err := d.States(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Georgia", "TX"}, states)

	counties, err := d.Counties(ctx)
	require.NoError(t, err)
	assert.Len(t, counties, 3)

	tags, err := d.TagIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, tags)
}
