package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"carburants/internal"
	"carburants/internal/config"
)

// StageCounts records the size of the active row set after each narrowing
// stage, so data loss stays observable run to run.
type StageCounts struct {
	Raw      int
	PrixOK   int
	GeoOK    int
	FuelOK   int
	Dedup    int
	BoundsOK int
}

func (s StageCounts) String() string {
	return fmt.Sprintf("nettoyage: brut=%d -> prix_ok=%d -> geo_ok=%d -> fuel_ok=%d -> dedup=%d -> bounds_ok=%d",
		s.Raw, s.PrixOK, s.GeoOK, s.FuelOK, s.Dedup, s.BoundsOK)
}

// Cleaner runs the full batch through extraction and the ordered filter
// chain. Individual malformed records never abort a run; each stage is a
// pure narrowing of the row set.
type Cleaner struct {
	rules     config.Rules
	extractor *Extractor
}

func NewCleaner(rules config.Rules, loc *time.Location) *Cleaner {
	return &Cleaner{rules: rules, extractor: NewExtractor(rules, loc)}
}

func (c *Cleaner) Clean(records []map[string]any) ([]internal.Releve, StageCounts) {
	rows := make([]internal.Releve, 0, len(records))
	for _, rec := range records {
		rows = append(rows, c.extractor.Extract(rec))
	}
	counts := StageCounts{Raw: len(rows)}

	// A row without a parseable timestamp has no usable day key, so it
	// falls with the price filter.
	rows = keep(rows, func(r internal.Releve) bool {
		return r.Prix != nil && *r.Prix > 0 && r.Date != nil
	})
	counts.PrixOK = len(rows)

	rows = keep(rows, func(r internal.Releve) bool {
		return InFrance(r.Latitude, r.Longitude, c.rules.BBox)
	})
	counts.GeoOK = len(rows)

	rows = keep(rows, func(r internal.Releve) bool {
		return r.Carburant != nil
	})
	counts.FuelOK = len(rows)

	rows = dedupeLatest(rows)
	counts.Dedup = len(rows)

	rows = keep(rows, c.inBounds)
	counts.BoundsOK = len(rows)

	for i := range rows {
		prix := math.Round(*rows[i].Prix*1000) / 1000
		rows[i].Prix = &prix
		rows[i].Departement = InferDepartement(rows[i].CP)
	}

	return rows, counts
}

// dedupeLatest keeps one row per (station, fuel, day): a stable ascending
// sort on date, then the last occurrence of each key wins. Stability makes
// input order the tie-break on equal timestamps, so reruns on the same
// batch are byte-identical.
func dedupeLatest(rows []internal.Releve) []internal.Releve {
	sorted := make([]internal.Releve, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(*sorted[j].Date)
	})

	last := make(map[string]int, len(sorted))
	for i, row := range sorted {
		last[row.Key()] = i
	}

	out := make([]internal.Releve, 0, len(last))
	for i, row := range sorted {
		if last[row.Key()] == i {
			out = append(out, row)
		}
	}
	return out
}

// inBounds checks the per-fuel price band. Fuels without a configured band
// pass unconditionally; rows outside their band are dropped, never clamped.
func (c *Cleaner) inBounds(r internal.Releve) bool {
	bounds, ok := c.rules.FuelBounds[*r.Carburant]
	if !ok {
		return true
	}
	return *r.Prix >= bounds.Min && *r.Prix <= bounds.Max
}

func keep(rows []internal.Releve, pred func(internal.Releve) bool) []internal.Releve {
	out := make([]internal.Releve, 0, len(rows))
	for _, row := range rows {
		if pred(row) {
			out = append(out, row)
		}
	}
	return out
}
