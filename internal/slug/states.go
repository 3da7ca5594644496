package slug

import "strings"

// USStateCodes maps USPS state abbreviations to full names. Upstream records
// carry a mix of both, and legacy URLs encode either form.
var USStateCodes = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming",
	// Territories
	"AS": "American Samoa", "DC": "District of Columbia", "GU": "Guam",
	"MP": "Northern Mariana Islands", "PR": "Puerto Rico", "VI": "Virgin Islands",
}

// stateAbbrevs is the reverse lookup, keyed by lowercased full name.
var stateAbbrevs = func() map[string]string {
	m := make(map[string]string, len(USStateCodes))
	for code, name := range USStateCodes {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// StateAbbrev returns the USPS code for a full state name. Returns the input
// unchanged and false when the name is not recognized.
func StateAbbrev(s string) (string, bool) {
	code, ok := stateAbbrevs[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return s, false
	}
	return code, true
}

// ExpandStateAbbrev expands a two-letter USPS code to the full state name.
// Returns the input unchanged and false when it is not a known abbreviation.
func ExpandStateAbbrev(s string) (string, bool) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 2 {
		return s, false
	}
	name, ok := USStateCodes[code]
	if !ok {
		return s, false
	}
	return name, true
}

// NormalizeState returns the lowercased full state name for either an
// abbreviation or a full name, for use as an index key.
func NormalizeState(s string) string {
	if full, ok := ExpandStateAbbrev(s); ok {
		return strings.ToLower(full)
	}
	return NormalizeKey(s)
}
