package directory

import (
	"strconv"
	"strings"

	"github.com/shopfinder/shopfinder-server/internal/slug"
)

// Resolve maps an incoming identifier to exactly one listing, or nil.
//
// The identifier may be a legacy numeric ID, a slug in any casing, or a
// composite state/[county/]city/name path. Strategies run in order, first
// hit wins:
//
//  1. numeric legacy ID (least ambiguous, always wins over a coinciding slug)
//  2. exact slug-map hit
//  3. re-derived slug scan over the full set, first by list order
//  4. fuzzy substring containment, first by list order
//  5. composite path match
//
// Collision note: the slug map keeps the later listing in fetch order, so a
// shadowed listing resolves only via strategies 3-5. A first-wins policy
// with a numeric suffix for the loser would give collisions stable URLs; the
// current behavior is kept deliberately.
func (s *Snapshot) Resolve(identifier string) *Listing {
	identifier = strings.Trim(strings.TrimSpace(identifier), "/")
	if identifier == "" {
		return nil
	}

	if strings.Contains(identifier, "/") {
		return s.ResolvePath(strings.Split(identifier, "/"))
	}

	// Strategy 1: numeric legacy ID.
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		if l, ok := s.ByID[id]; ok {
			return l
		}
	}

	// Strategies 2+3: exact then re-derived slug.
	if l := s.LookupSlug(identifier); l != nil {
		return l
	}

	// Strategy 4: fuzzy substring, fallback only. Hyphens map to spaces on
	// both sides so a hyphenated store name matches its own slug fragments.
	needle := strings.ToLower(strings.ReplaceAll(identifier, "-", " "))
	for i := range s.Listings {
		name := strings.ToLower(strings.ReplaceAll(s.Listings[i].Name, "-", " "))
		if name == "" {
			continue
		}
		if strings.Contains(name, needle) || strings.Contains(needle, name) {
			return &s.Listings[i]
		}
	}

	return nil
}

// LookupSlug resolves a slug by direct map hit, falling back to re-deriving
// the slug from each listing's name (first match by list order).
func (s *Snapshot) LookupSlug(slugValue string) *Listing {
	key := slug.NormalizeKey(slugValue)
	if key == "" {
		return nil
	}

	if l, ok := s.BySlug[key]; ok {
		return l
	}

	for i := range s.Listings {
		if derived := slug.Make(s.Listings[i].Name); derived != "" && derived == key {
			return &s.Listings[i]
		}
	}
	return nil
}

// ResolvePath matches a composite state/[county/]city/name path. Each
// supplied segment must match its corresponding field; matching is lenient
// to tolerate naming variance in upstream data.
func (s *Snapshot) ResolvePath(segments []string) *Listing {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg = strings.TrimSpace(seg); seg != "" {
			parts = append(parts, seg)
		}
	}

	var state, county, city, name string
	switch len(parts) {
	case 4:
		state, county, city, name = parts[0], parts[1], parts[2], parts[3]
	case 3:
		state, city, name = parts[0], parts[1], parts[2]
	default:
		return nil
	}

	for i := range s.Listings {
		l := &s.Listings[i]
		if !matchState(state, l.State) {
			continue
		}
		if county != "" && !matchCounty(county, l.County) {
			continue
		}
		if !matchSegment(city, l.City) {
			continue
		}
		if !matchSegment(name, l.Name) {
			continue
		}
		return l
	}
	return nil
}

// matchState compares a path segment against a listing's state field. A
// two-letter segment is expanded through the USPS table first; the literal
// value is the last resort so states stored as abbreviations still match.
func matchState(segment, state string) bool {
	if state == "" {
		return false
	}
	// NormalizeState expands abbreviations on both sides, so "GA" matches a
	// stored "Georgia" and "Georgia" matches a stored "GA".
	if slug.NormalizeState(segment) == slug.NormalizeState(state) {
		return true
	}
	return segmentKey(segment) == segmentKey(state)
}

// matchCounty is containment either direction after suffix-stripping, so
// "Fulton" matches "Fulton County" and vice versa.
func matchCounty(segment, county string) bool {
	if county == "" {
		return false
	}
	a := slug.NormalizeAdminName(strings.ReplaceAll(segment, "-", " "))
	b := slug.NormalizeAdminName(county)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// matchSegment compares via slug equality or containment.
func matchSegment(segment, field string) bool {
	if field == "" {
		return false
	}
	a := segmentKey(segment)
	b := segmentKey(field)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func segmentKey(s string) string {
	return slug.Make(strings.ReplaceAll(s, "-", " "))
}
