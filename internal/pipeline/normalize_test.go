package pipeline

import (
	"math"
	"testing"
	"time"

	"carburants/internal/config"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{name: "already euros", input: "1.879", want: 1.879},
		{name: "centimes with comma", input: "187,9", want: 1.879},
		{name: "no correction below ten", input: "0,999", want: 0.999},
		{name: "currency symbol and spaces", input: " € 1,650 ", want: 1.65},
		{name: "centimes integer", input: "165", want: 1.65},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParsePrice(tc.input)
			if got == nil {
				t.Fatalf("got nil")
			}
			if math.Abs(*got-tc.want) > 1e-9 {
				t.Fatalf("got %v want %v", *got, tc.want)
			}
		})
	}
}

func TestParsePriceUnparseable(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "1.2.3", "NaN"} {
		if got := ParsePrice(input); got != nil {
			t.Fatalf("input %q: got %v, want nil", input, *got)
		}
	}
}

func TestNormalizeFuelLabel(t *testing.T) {
	aliases := config.DefaultRules().FuelAliases

	for _, input := range []string{"gazole", " GAZOLE ", "Diesel", "gasoil"} {
		got := NormalizeFuelLabel(input, aliases)
		if got == nil || *got != "Gazole" {
			t.Fatalf("input %q: got %v", input, got)
		}
	}

	if got := NormalizeFuelLabel("sp-95", aliases); got == nil || *got != "SP95" {
		t.Fatalf("sp-95: got %v", got)
	}
	if got := NormalizeFuelLabel("E5", aliases); got == nil || *got != "E5" {
		t.Fatalf("unknown label should pass through, got %v", got)
	}
	if got := NormalizeFuelLabel("   ", aliases); got != nil {
		t.Fatalf("blank label: got %v", *got)
	}
}

func TestInferDepartement(t *testing.T) {
	if got := InferDepartement(sp("75015")); got == nil || *got != "75" {
		t.Fatalf("75015: got %v", got)
	}
	if got := InferDepartement(sp("8")); got != nil {
		t.Fatalf("too-short cp: got %v", *got)
	}
	if got := InferDepartement(nil); got != nil {
		t.Fatalf("nil cp: got %v", *got)
	}
}

func TestInFrance(t *testing.T) {
	box := config.DefaultRules().BBox
	nan := math.NaN()

	if !InFrance(nil, nil, box) {
		t.Fatal("missing coordinates must be tolerated")
	}
	if !InFrance(&nan, fp(2.35), box) {
		t.Fatal("NaN coordinate must be tolerated")
	}
	if !InFrance(fp(48.8566), fp(2.3522), box) {
		t.Fatal("Paris should be inside")
	}
	if InFrance(fp(35.0), fp(2.0), box) {
		t.Fatal("latitude 35 should be outside")
	}
	if InFrance(fp(45.0), fp(11.0), box) {
		t.Fatal("longitude 11 should be outside")
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, input := range []string{
		"2024-03-01T09:30:00+01:00",
		"2024-03-01 09:30:00",
		"01/03/2024 09:30",
		"2024-03-01",
	} {
		if got := ParseTimestamp(input, time.UTC); got == nil {
			t.Fatalf("input %q: got nil", input)
		}
	}
	if got := ParseTimestamp("pas une date", time.UTC); got != nil {
		t.Fatalf("garbage input: got %v", *got)
	}
}

func sp(v string) *string   { return &v }
func fp(v float64) *float64 { return &v }
