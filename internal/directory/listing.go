// Package directory implements the listing indexing and resolution layer:
// fetching the listing corpus from the upstream datastore, building derived
// lookup structures in a single pass, caching the result with a TTL, and
// resolving slugs, legacy IDs, and location paths back to listings.
package directory

import (
	"strconv"

	"github.com/paulmach/orb"

	"github.com/shopfinder/shopfinder-server/internal/slug"
)

// Listing is a single storefront record in the directory.
//
// ID is unique and immutable. Name, City, and State are the minimum fields
// for slug generation and location indexing; records missing any of them are
// excluded from the affected index but stay in the full set.
type Listing struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
	County string `json:"county,omitempty"`

	// Coordinates as decimal strings, derived from the canonical numeric
	// pair when present, else carried over from legacy string columns.
	Lat string `json:"lat,omitempty"`
	Lng string `json:"lng,omitempty"`

	TagIDs []int64 `json:"tag_ids,omitempty"`

	// Slug as stored upstream. Not trusted as truth: resolution re-derives
	// from Name when the stored value is missing or stale.
	Slug string `json:"slug,omitempty"`

	// Enrichment fields, opaque to this layer.
	Rating      float64        `json:"rating,omitempty"`
	ReviewCount int            `json:"review_count,omitempty"`
	Hours       map[string]any `json:"hours,omitempty"`
	Photos      []string       `json:"photos,omitempty"`
	Website     string         `json:"website,omitempty"`
	Phone       string         `json:"phone,omitempty"`
}

// EffectiveSlug returns the stored slug if present, else one derived from the
// name. Empty means the listing cannot be addressed by slug.
func (l *Listing) EffectiveSlug() string {
	if l.Slug != "" {
		return slug.NormalizeKey(l.Slug)
	}
	return slug.Make(l.Name)
}

// Point returns the listing's coordinates as an orb.Point (lng, lat order)
// and whether both coordinates parsed.
func (l *Listing) Point() (orb.Point, bool) {
	lat, err1 := strconv.ParseFloat(l.Lat, 64)
	lng, err2 := strconv.ParseFloat(l.Lng, 64)
	if err1 != nil || err2 != nil {
		return orb.Point{}, false
	}
	return orb.Point{lng, lat}, true
}

// CityRef identifies one distinct city within a state.
type CityRef struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// CountyRef identifies one distinct county within a state.
type CountyRef struct {
	County string `json:"county"`
	State  string `json:"state"`
}
