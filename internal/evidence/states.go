package evidence

import "strings"

// stateAbbrevs maps lowercase US state and territory names to their
// two-letter postal abbreviations.
var stateAbbrevs = map[string]string{
	"alabama":              "AL",
	"alaska":               "AK",
	"arizona":              "AZ",
	"arkansas":             "AR",
	"california":           "CA",
	"colorado":             "CO",
	"connecticut":          "CT",
	"delaware":             "DE",
	"florida":              "FL",
	"georgia":              "GA",
	"hawaii":               "HI",
	"idaho":                "ID",
	"illinois":             "IL",
	"indiana":              "IN",
	"iowa":                 "IA",
	"kansas":               "KS",
	"kentucky":             "KY",
	"louisiana":            "LA",
	"maine":                "ME",
	"maryland":             "MD",
	"massachusetts":        "MA",
	"michigan":             "MI",
	"minnesota":            "MN",
	"mississippi":          "MS",
	"missouri":             "MO",
	"montana":              "MT",
	"nebraska":             "NE",
	"nevada":               "NV",
	"new hampshire":        "NH",
	"new jersey":           "NJ",
	"new mexico":           "NM",
	"new york":             "NY",
	"north carolina":       "NC",
	"north dakota":         "ND",
	"ohio":                 "OH",
	"oklahoma":             "OK",
	"oregon":               "OR",
	"pennsylvania":         "PA",
	"rhode island":         "RI",
	"south carolina":       "SC",
	"south dakota":         "SD",
	"tennessee":            "TN",
	"texas":                "TX",
	"utah":                 "UT",
	"vermont":              "VT",
	"virginia":             "VA",
	"washington":           "WA",
	"west virginia":        "WV",
	"wisconsin":            "WI",
	"wyoming":              "WY",
	"district of columbia": "DC",
	"puerto rico":          "PR",
}

// validAbbrevs is the reverse index used to accept two-letter state
// codes as-is.
var validAbbrevs = func() map[string]bool {
	m := make(map[string]bool, len(stateAbbrevs))
	for _, abbr := range stateAbbrevs {
		m[abbr] = true
	}
	return m
}()

// NormalizeState converts a state name or abbreviation to its two-letter
// postal code. It returns false when the input is not a recognizable US
// state or territory.
func NormalizeState(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) == 2 {
		upper := strings.ToUpper(s)
		if validAbbrevs[upper] {
			return upper, true
		}
		return "", false
	}
	if abbr, ok := stateAbbrevs[strings.ToLower(s)]; ok {
		return abbr, true
	}
	return "", false
}
