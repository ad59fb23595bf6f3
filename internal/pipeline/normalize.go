package pipeline

import (
	"math"
	"strconv"
	"strings"
	"time"

	"carburants/internal/config"
)

// NormalizeFuelLabel maps a raw fuel label onto its canonical form. The
// lookup is trim- and case-insensitive; labels absent from the alias table
// are returned in their original casing so unseen-but-real fuel variants
// (additive blends and the like) survive cleaning.
func NormalizeFuelLabel(raw string, aliases map[string]string) *string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if canonical, ok := aliases[strings.ToUpper(s)]; ok {
		return &canonical
	}
	return &s
}

// ParsePrice parses a raw price string into euros per liter: currency
// symbols and whitespace stripped, comma decimal separator accepted,
// nil on anything unparseable.
func ParsePrice(raw string) *float64 {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	v = correctUnitScale(v)
	return &v
}

// correctUnitScale rescales prices published in centimes. Values strictly
// between 10 and 1000 are assumed to be hundredths of a euro and divided
// by 100. The rule is not invertible: a genuine full-unit price in that
// range (say 15.0) comes out as 0.15. Keep it isolated here so it can be
// revisited without touching the parser.
func correctUnitScale(v float64) float64 {
	if v > 10 && v < 1000 {
		return v / 100
	}
	return v
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// ParseTimestamp tries the known feed timestamp layouts in order. Layouts
// without zone information are anchored in loc. Returns nil when nothing
// matches.
func ParseTimestamp(raw string, loc *time.Location) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t
		}
	}
	return nil
}

// InFrance is the geographic plausibility check. Missing or NaN
// coordinates are tolerated (the row just cannot be mapped); only a pair
// that falls outside the box fails.
func InFrance(lat, lon *float64, box config.BBox) bool {
	if lat == nil || lon == nil || math.IsNaN(*lat) || math.IsNaN(*lon) {
		return true
	}
	return box.Contains(*lat, *lon)
}

// InferDepartement derives the department from the first two characters of
// the postal code.
func InferDepartement(cp *string) *string {
	if cp == nil {
		return nil
	}
	s := strings.TrimSpace(*cp)
	if len(s) < 2 {
		return nil
	}
	dep := s[:2]
	return &dep
}
