package directory

import (
	"encoding/json"
	"strconv"
	"strings"
)

// rawRow is the ingestion boundary for upstream listing rows. The datastore
// grew by accretion: coordinates exist as a numeric pair and as legacy
// strings, tags arrive as a real array, a JSON-encoded string, a
// comma-separated string, or a bare scalar, and hours may be an object or an
// encoded string. Every downstream component sees only the canonical Listing
// produced by toListing.
type rawRow struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Street string     `json:"street"`
	City   string     `json:"city"`
	State  string     `json:"state"`
	Zip    flexString `json:"zip"`
	County string     `json:"county"`

	// Canonical numeric coordinate pair.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	// Legacy string coordinates, used only when the pair is absent.
	LegacyLat flexString `json:"lat"`
	LegacyLng flexString `json:"lng"`

	Tags flexTagIDs `json:"tags"`
	Slug string     `json:"slug"`

	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
	Hours       flexObject `json:"hours"`
	Photos      flexPhotos `json:"photos"`
	Website     string     `json:"website"`
	Phone       string     `json:"phone"`
}

// toListing maps a raw upstream row onto the canonical record shape.
func (r *rawRow) toListing() Listing {
	l := Listing{
		ID:          r.ID,
		Name:        strings.TrimSpace(r.Name),
		Street:      strings.TrimSpace(r.Street),
		City:        strings.TrimSpace(r.City),
		State:       strings.TrimSpace(r.State),
		Zip:         string(r.Zip),
		County:      strings.TrimSpace(r.County),
		TagIDs:      r.Tags,
		Slug:        strings.TrimSpace(r.Slug),
		Rating:      r.Rating,
		ReviewCount: r.ReviewCount,
		Hours:       r.Hours,
		Photos:      r.Photos,
		Website:     r.Website,
		Phone:       r.Phone,
	}

	// Prefer the precise numeric pair; fall back to legacy strings.
	if r.Latitude != nil && r.Longitude != nil {
		l.Lat = strconv.FormatFloat(*r.Latitude, 'f', -1, 64)
		l.Lng = strconv.FormatFloat(*r.Longitude, 'f', -1, 64)
	} else {
		l.Lat = strings.TrimSpace(string(r.LegacyLat))
		l.Lng = strings.TrimSpace(string(r.LegacyLng))
	}

	return l
}

// flexString accepts string or number JSON and stores the textual form.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		// Unknown shape degrades to empty, never fails the row.
		*s = ""
		return nil
	}
	*s = flexString(num.String())
	return nil
}

// flexTagIDs accepts the known legacy shapes for the tags column:
// [1,2], ["1","2"], "[1,2]", "1,2", 1, or "1".
type flexTagIDs []int64

func (t *flexTagIDs) UnmarshalJSON(b []byte) error {
	*t = nil
	if string(b) == "null" {
		return nil
	}

	// Structured array of numbers or numeric strings.
	var anyList []any
	if err := json.Unmarshal(b, &anyList); err == nil {
		*t = tagIDsFromValues(anyList)
		return nil
	}

	// Bare number.
	var num float64
	if err := json.Unmarshal(b, &num); err == nil {
		*t = flexTagIDs{int64(num)}
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return nil
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return nil
	}

	// JSON-encoded array in a string column.
	if strings.HasPrefix(str, "[") {
		var nested []any
		if err := json.Unmarshal([]byte(str), &nested); err == nil {
			*t = tagIDsFromValues(nested)
		}
		return nil
	}

	// Comma-separated string, or a single scalar.
	for part := range strings.SplitSeq(str, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			*t = append(*t, id)
		}
	}
	return nil
}

func tagIDsFromValues(values []any) flexTagIDs {
	var ids flexTagIDs
	for _, v := range values {
		switch x := v.(type) {
		case float64:
			ids = append(ids, int64(x))
		case string:
			if id, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// flexObject accepts a JSON object or a JSON-encoded object in a string
// column. Anything else degrades to nil.
type flexObject map[string]any

func (o *flexObject) UnmarshalJSON(b []byte) error {
	*o = nil
	if string(b) == "null" {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal(b, &obj); err == nil {
		*o = obj
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(str), &obj); err == nil {
		*o = obj
	}
	return nil
}

// flexPhotos accepts an array of URLs or a JSON-encoded array in a string
// column, tolerating single bare strings.
type flexPhotos []string

func (p *flexPhotos) UnmarshalJSON(b []byte) error {
	*p = nil
	if string(b) == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*p = list
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return nil
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return nil
	}
	if strings.HasPrefix(str, "[") {
		if err := json.Unmarshal([]byte(str), &list); err == nil {
			*p = list
		}
		return nil
	}
	*p = flexPhotos{str}
	return nil
}
