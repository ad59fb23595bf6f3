package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule validation errors.
var (
	ErrNoFuelAliases    = errors.New("rules: fuel_aliases must not be empty")
	ErrInvalidFuelBound = errors.New("rules: fuel bound must have min < max")
	ErrInvalidBBox      = errors.New("rules: bbox must have lat_min < lat_max and lon_min < lon_max")
)

// PriceBounds is the plausible [min, max] price band for one fuel type,
// in euros per liter.
type PriceBounds struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// BBox is the geographic plausibility box for station coordinates.
type BBox struct {
	LatMin float64 `yaml:"lat_min"`
	LatMax float64 `yaml:"lat_max"`
	LonMin float64 `yaml:"lon_min"`
	LonMax float64 `yaml:"lon_max"`
}

// Rules carries the fixed cleaning tables as injectable data: fuel label
// aliases, the numeric fuel-code map, per-fuel price bounds and the
// geographic bounding box. Defaults target the metropolitan France feed and
// can be overridden from a YAML file for tests or regional retargeting.
type Rules struct {
	FuelAliases map[string]string      `yaml:"fuel_aliases"`
	FuelCodes   map[string]string      `yaml:"fuel_codes"`
	FuelBounds  map[string]PriceBounds `yaml:"fuel_bounds"`
	BBox        BBox                   `yaml:"bbox"`
}

func DefaultRules() Rules {
	return Rules{
		FuelAliases: map[string]string{
			"GAZOLE": "Gazole", "GASOIL": "Gazole", "DIESEL": "Gazole",
			"SP95": "SP95", "SP-95": "SP95",
			"SP98": "SP98", "SP-98": "SP98",
			"E10": "E10", "E-10": "E10",
			"E85": "E85", "E-85": "E85",
			"GPL": "GPLc", "GPLC": "GPLc", "GPL-C": "GPLc",
		},
		FuelCodes: map[string]string{
			"1": "SP95", "2": "Gazole", "3": "SP98", "4": "E85", "5": "GPLc", "6": "E10",
		},
		FuelBounds: map[string]PriceBounds{
			"Gazole": {Min: 1.10, Max: 2.80},
			"SP95":   {Min: 1.30, Max: 2.90},
			"SP98":   {Min: 1.40, Max: 3.10},
			"E10":    {Min: 1.20, Max: 2.70},
			"E85":    {Min: 0.45, Max: 1.50},
			"GPLc":   {Min: 0.60, Max: 1.70},
		},
		BBox: BBox{LatMin: 41.0, LatMax: 51.5, LonMin: -5.8, LonMax: 10.5},
	}
}

// LoadRules returns the default tables, overridden by the YAML file at
// path when one is configured.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	blob, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	if err := yaml.Unmarshal(blob, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return Rules{}, err
	}
	return rules, nil
}

func (r Rules) Validate() error {
	if len(r.FuelAliases) == 0 {
		return ErrNoFuelAliases
	}
	for fuel, b := range r.FuelBounds {
		if b.Min >= b.Max {
			return fmt.Errorf("%w: %s", ErrInvalidFuelBound, fuel)
		}
	}
	if r.BBox.LatMin >= r.BBox.LatMax || r.BBox.LonMin >= r.BBox.LonMax {
		return ErrInvalidBBox
	}
	return nil
}

// Contains reports whether the coordinate pair falls inside the box.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}
