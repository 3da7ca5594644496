package directory

import (
	"math/rand"
	"sort"
	"time"

	"github.com/shopfinder/shopfinder-server/internal/id"
	"github.com/shopfinder/shopfinder-server/internal/slug"
)

// Snapshot is the immutable bundle of the full listing list plus all derived
// indices, produced by one build pass. Once published by the cache it is
// never mutated; rebuilds replace it wholesale.
type Snapshot struct {
	Listings []Listing

	ByID     map[int64]*Listing
	BySlug   map[string]*Listing
	ByCity   map[string][]*Listing
	ByState  map[string][]*Listing
	ByCounty map[string][]*Listing
	ByTag    map[int64][]*Listing

	Cities   []CityRef
	States   []string
	Counties []CountyRef
	TagIDs   []int64

	Featured []*Listing
	Popular  []*Listing

	Total   int
	BuiltAt time.Time
	BuildID string
}

// BuildOptions tunes the derived samples.
type BuildOptions struct {
	FeaturedSize int
	PopularSize  int
}

// DefaultBuildOptions returns the standard sample sizes.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{FeaturedSize: 12, PopularSize: 20}
}

// CityKey builds the lookup key for a (city, state) pair.
func CityKey(city, state string) string {
	return slug.NormalizeKey(city) + "-" + slug.NormalizeKey(state)
}

// StateKey builds the lookup key for a state.
func StateKey(state string) string {
	return slug.NormalizeKey(state)
}

// CountyKey builds the lookup key for a (county, state) pair. The county part
// is suffix-stripped so "Fulton County" and "Fulton" key identically.
func CountyKey(county, state string) string {
	return slug.NormalizeAdminName(county) + "-" + slug.NormalizeKey(state)
}

// BuildSnapshot derives every lookup structure from the fetched listings in
// a single linear pass.
//
// A malformed record never fails the build; it just skips the indices it
// cannot key into while remaining in the full list. On slug collision the
// later listing in fetch order wins the map entry; the earlier one stays
// reachable through re-derived or path-based resolution only.
//
// The featured sample is seeded from the build timestamp: reproducible within
// one snapshot, legitimately different between rebuilds. Everything else is a
// pure function of the input list.
func BuildSnapshot(listings []Listing, opts BuildOptions) *Snapshot {
	snap := &Snapshot{
		Listings: listings,
		ByID:     make(map[int64]*Listing, len(listings)),
		BySlug:   make(map[string]*Listing, len(listings)),
		ByCity:   make(map[string][]*Listing),
		ByState:  make(map[string][]*Listing),
		ByCounty: make(map[string][]*Listing),
		ByTag:    make(map[int64][]*Listing),
		Total:    len(listings),
		BuiltAt:  time.Now().UTC(),
		BuildID:  id.MustGenerate("snap"),
	}

	cities := make(map[string]CityRef)
	states := make(map[string]string)
	counties := make(map[string]CountyRef)
	tags := make(map[int64]bool)

	for i := range listings {
		l := &snap.Listings[i]
		snap.ByID[l.ID] = l

		if s := l.EffectiveSlug(); s != "" {
			snap.BySlug[s] = l
		}

		city := slug.NormalizeKey(l.City)
		state := slug.NormalizeKey(l.State)
		county := slug.NormalizeAdminName(l.County)

		if city != "" && state != "" {
			key := CityKey(l.City, l.State)
			snap.ByCity[key] = append(snap.ByCity[key], l)
			if _, seen := cities[key]; !seen {
				cities[key] = CityRef{City: l.City, State: l.State}
			}
		}

		if state != "" {
			snap.ByState[state] = append(snap.ByState[state], l)
			if _, seen := states[state]; !seen {
				states[state] = l.State
			}
		}

		if county != "" && state != "" {
			key := CountyKey(l.County, l.State)
			snap.ByCounty[key] = append(snap.ByCounty[key], l)
			if _, seen := counties[key]; !seen {
				counties[key] = CountyRef{County: l.County, State: l.State}
			}
		}

		for _, tagID := range l.TagIDs {
			snap.ByTag[tagID] = append(snap.ByTag[tagID], l)
			tags[tagID] = true
		}
	}

	snap.Cities = sortedCityRefs(cities)
	snap.States = sortedValues(states)
	snap.Counties = sortedCountyRefs(counties)
	snap.TagIDs = sortedTagIDs(tags)
	snap.Popular = topRated(snap.Listings, opts.PopularSize)
	snap.Featured = sampleListings(snap.Listings, opts.FeaturedSize, snap.BuiltAt.UnixNano())

	return snap
}

// Age returns how long ago the snapshot was built.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.BuiltAt)
}

func sortedCityRefs(m map[string]CityRef) []CityRef {
	refs := make([]CityRef, 0, len(m))
	for _, ref := range m {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].City != refs[j].City {
			return slug.NormalizeKey(refs[i].City) < slug.NormalizeKey(refs[j].City)
		}
		return slug.NormalizeKey(refs[i].State) < slug.NormalizeKey(refs[j].State)
	})
	return refs
}

func sortedCountyRefs(m map[string]CountyRef) []CountyRef {
	refs := make([]CountyRef, 0, len(m))
	for _, ref := range m {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].County != refs[j].County {
			return slug.NormalizeKey(refs[i].County) < slug.NormalizeKey(refs[j].County)
		}
		return slug.NormalizeKey(refs[i].State) < slug.NormalizeKey(refs[j].State)
	})
	return refs
}

func sortedValues(m map[string]string) []string {
	values := make([]string, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return slug.NormalizeKey(values[i]) < slug.NormalizeKey(values[j])
	})
	return values
}

func sortedTagIDs(m map[int64]bool) []int64 {
	ids := make([]int64, 0, len(m))
	for tagID := range m {
		ids = append(ids, tagID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// topRated returns the top-n listings by rating, review count as tiebreaker,
// original list order for full ties (stable sort).
func topRated(listings []Listing, n int) []*Listing {
	ranked := make([]*Listing, 0, len(listings))
	for i := range listings {
		ranked = append(ranked, &listings[i])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].ReviewCount > ranked[j].ReviewCount
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// sampleListings picks up to n listings using a PRNG seeded from the build
// time, so the sample is stable for the lifetime of one snapshot.
func sampleListings(listings []Listing, n int, seed int64) []*Listing {
	if n <= 0 || len(listings) == 0 {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(listings))
	if n > len(perm) {
		n = len(perm)
	}
	sample := make([]*Listing, 0, n)
	for _, idx := range perm[:n] {
		sample = append(sample, &listings[idx])
	}
	return sample
}
