package directory

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/shopfinder/shopfinder-server/internal/slug"
)

// Directory exposes typed, read-only queries over the cached snapshot. Every
// accessor fills the cache if needed and then performs an O(1) or O(k)
// lookup; all of them return empty slices, never nil, on a miss.
type Directory struct {
	cache  *Cache
	logger *slog.Logger
}

// New creates the directory query layer over a cache.
func New(cache *Cache, logger *slog.Logger) *Directory {
	return &Directory{cache: cache, logger: logger}
}

// Cache exposes the underlying snapshot cache for health reporting.
func (d *Directory) Cache() *Cache {
	return d.cache
}

// Filter narrows the listing set. Zero-value fields are ignored rather than
// treated as errors. City and County apply even without State: they then
// match across every state, a deliberate superset of the state-scoped
// result.
type Filter struct {
	State  string
	City   string
	County string
	Tags   []int64
}

// ListingsByCity returns listings in the given city and state.
func (d *Directory) ListingsByCity(ctx context.Context, city, state string) ([]*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, sk := range stateKeyCandidates(state) {
		if listings, ok := snap.ByCity[slug.NormalizeKey(city)+"-"+sk]; ok {
			return listings, nil
		}
	}
	return []*Listing{}, nil
}

// ListingsByState returns listings in the given state, tolerating USPS
// abbreviations.
func (d *Directory) ListingsByState(ctx context.Context, state string) ([]*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return stateSubset(snap, state), nil
}

// ListingsByCounty returns listings in the given county and state.
func (d *Directory) ListingsByCounty(ctx context.Context, county, state string) ([]*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	for _, sk := range stateKeyCandidates(state) {
		if listings, ok := snap.ByCounty[slug.NormalizeAdminName(county)+"-"+sk]; ok {
			return listings, nil
		}
	}
	return []*Listing{}, nil
}

// ListingsByTag returns listings carrying the given category tag.
func (d *Directory) ListingsByTag(ctx context.Context, tagID int64) ([]*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if listings, ok := snap.ByTag[tagID]; ok {
		return listings, nil
	}
	return []*Listing{}, nil
}

// ListingBySlug resolves a slug to a listing: direct map hit, else a
// re-derived scan. Nil when nothing matches.
func (d *Directory) ListingBySlug(ctx context.Context, slugValue string) (*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.LookupSlug(slugValue), nil
}

// Resolve runs the full identifier strategy chain (numeric ID, slug,
// re-derived, fuzzy, composite path). Nil when nothing matches.
func (d *Directory) Resolve(ctx context.Context, identifier string) (*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Resolve(identifier), nil
}

// Related returns up to limit listings related to l: same city when at least
// three candidates exist there, else same state, else the featured sample.
// The listing itself is always excluded.
func (d *Directory) Related(ctx context.Context, l *Listing, limit int) ([]*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*Listing{}, nil
	}

	if slug.NormalizeKey(l.City) != "" && slug.NormalizeKey(l.State) != "" {
		sameCity := excludeListing(snap.ByCity[CityKey(l.City, l.State)], l.ID)
		if len(sameCity) >= 3 {
			return capListings(sameCity, limit), nil
		}
	}

	if slug.NormalizeKey(l.State) != "" {
		sameState := excludeListing(snap.ByState[StateKey(l.State)], l.ID)
		if len(sameState) > 0 {
			return capListings(sameState, limit), nil
		}
	}

	return capListings(excludeListing(snap.Featured, l.ID), limit), nil
}

// Filtered narrows the full set (or the state subset when State is given) by
// each provided predicate in sequence. Tags use any-of containment. Empty or
// unknown filter values are ignored.
func (d *Directory) Filtered(ctx context.Context, f Filter) ([]*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var result []*Listing
	if strings.TrimSpace(f.State) != "" {
		result = stateSubset(snap, f.State)
	} else {
		result = make([]*Listing, 0, len(snap.Listings))
		for i := range snap.Listings {
			result = append(result, &snap.Listings[i])
		}
	}

	if city := slug.NormalizeKey(f.City); city != "" {
		result = filterListings(result, func(l *Listing) bool {
			return slug.NormalizeKey(l.City) == city
		})
	}

	if county := strings.TrimSpace(f.County); county != "" {
		result = filterListings(result, func(l *Listing) bool {
			return matchCounty(county, l.County)
		})
	}

	if len(f.Tags) > 0 {
		want := make(map[int64]bool, len(f.Tags))
		for _, t := range f.Tags {
			want[t] = true
		}
		result = filterListings(result, func(l *Listing) bool {
			for _, t := range l.TagIDs {
				if want[t] {
					return true
				}
			}
			return false
		})
	}

	return result, nil
}

// Nearby returns up to limit listings with usable coordinates, closest
// first.
func (d *Directory) Nearby(ctx context.Context, lat, lng float64, limit int) ([]*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*Listing{}, nil
	}

	origin := orb.Point{lng, lat}

	type candidate struct {
		listing  *Listing
		distance float64
	}
	candidates := make([]candidate, 0, len(snap.Listings))
	for i := range snap.Listings {
		l := &snap.Listings[i]
		if p, ok := l.Point(); ok {
			candidates = append(candidates, candidate{listing: l, distance: geo.Distance(origin, p)})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	result := make([]*Listing, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, c.listing)
	}
	return result, nil
}

// Featured returns the snapshot's featured sample.
func (d *Directory) Featured(ctx context.Context) ([]*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Featured, nil
}

// Popular returns the snapshot's rating-ranked listings.
func (d *Directory) Popular(ctx context.Context) ([]*Listing, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Popular, nil
}

// Cities returns the sorted distinct (city, state) pairs.
func (d *Directory) Cities(ctx context.Context) ([]CityRef, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Cities, nil
}

// States returns the sorted distinct states.
func (d *Directory) States(ctx context.Context) ([]string, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.States, nil
}

// Counties returns the sorted distinct (county, state) pairs.
func (d *Directory) Counties(ctx context.Context) ([]CountyRef, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Counties, nil
}

// TagIDs returns the sorted distinct category tag IDs.
func (d *Directory) TagIDs(ctx context.Context) ([]int64, error) {
	snap, err := d.cache.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.TagIDs, nil
}

// stateKeyCandidates returns the lookup keys to try for a state input. Index
// keys hold whatever form the records carry, so both the full name and the
// USPS code are tried: "GA" finds records stored as "Georgia" and "Texas"
// finds records stored as "TX".
func stateKeyCandidates(state string) []string {
	candidates := []string{slug.NormalizeState(state)}
	if abbrev, ok := slug.StateAbbrev(state); ok {
		candidates = append(candidates, strings.ToLower(abbrev))
	}
	if literal := slug.NormalizeKey(state); literal != candidates[0] {
		candidates = append(candidates, literal)
	}
	return candidates
}

// stateSubset returns the state-scoped listing subset, trying abbreviation
// expansion before the literal value.
func stateSubset(snap *Snapshot, state string) []*Listing {
	for _, sk := range stateKeyCandidates(state) {
		if listings, ok := snap.ByState[sk]; ok {
			return listings
		}
	}
	return []*Listing{}
}

func excludeListing(listings []*Listing, id int64) []*Listing {
	result := make([]*Listing, 0, len(listings))
	for _, l := range listings {
		if l.ID != id {
			result = append(result, l)
		}
	}
	return result
}

func capListings(listings []*Listing, limit int) []*Listing {
	if len(listings) > limit {
		return listings[:limit]
	}
	return listings
}

func filterListings(listings []*Listing, keep func(*Listing) bool) []*Listing {
	result := make([]*Listing, 0, len(listings))
	for _, l := range listings {
		if keep(l) {
			result = append(result, l)
		}
	}
	return result
}
