package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRulesValid(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadRulesNoPath(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatal(err)
	}
	if rules.FuelAliases["GASOIL"] != "Gazole" {
		t.Fatalf("aliases=%v", rules.FuelAliases)
	}
	if rules.FuelCodes["2"] != "Gazole" {
		t.Fatalf("codes=%v", rules.FuelCodes)
	}
}

func TestLoadRulesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	blob := []byte(`
fuel_bounds:
  Gazole: {min: 0.10, max: 9.00}
bbox: {lat_min: -90, lat_max: 90, lon_min: -180, lon_max: 180}
`)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatal(err)
	}
	if rules.FuelBounds["Gazole"].Max != 9.00 {
		t.Fatalf("bounds=%v", rules.FuelBounds["Gazole"])
	}
	// Untouched tables keep their defaults.
	if rules.FuelAliases["DIESEL"] != "Gazole" {
		t.Fatalf("aliases=%v", rules.FuelAliases)
	}
}

func TestLoadRulesInvalidBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	blob := []byte("fuel_bounds:\n  Gazole: {min: 3.0, max: 1.0}\n")
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRules(path); !errors.Is(err, ErrInvalidFuelBound) {
		t.Fatalf("err=%v", err)
	}
}

func TestValidateBBox(t *testing.T) {
	rules := DefaultRules()
	rules.BBox = BBox{LatMin: 50, LatMax: 40, LonMin: -5, LonMax: 10}
	if err := rules.Validate(); !errors.Is(err, ErrInvalidBBox) {
		t.Fatalf("err=%v", err)
	}
}

func TestBBoxContains(t *testing.T) {
	box := DefaultRules().BBox
	if !box.Contains(48.8566, 2.3522) {
		t.Fatal("Paris should be inside")
	}
	if box.Contains(48.8566, 12.0) {
		t.Fatal("longitude 12 should be outside")
	}
}
