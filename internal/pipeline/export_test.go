package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"carburants/internal"
)

func TestCleanCSVRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "clean", "prix_carburants_clean.csv")

	date := time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC)
	rows := []internal.Releve{
		{
			ID:          sp("rec-1"),
			Date:        &date,
			CP:          sp("75015"),
			Commune:     sp("Paris"),
			Carburant:   sp("Gazole"),
			Prix:        fp(1.859),
			Latitude:    fp(48.8566),
			Longitude:   fp(2.3522),
			IDStation:   sp("1000"),
			Jour:        sp("2024-03-01"),
			Departement: sp("75"),
		},
		// Sparse row: only the mandatory fields.
		{
			Date:      &date,
			Carburant: sp("SP95"),
			Prix:      fp(1.902),
			IDStation: sp("1001"),
			Jour:      sp("2024-03-01"),
		},
	}

	if err := WriteCleanCSV(rows, path); err != nil {
		t.Fatal(err)
	}

	back, err := ReadCleanCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 2 {
		t.Fatalf("len=%d", len(back))
	}

	if back[0].Commune == nil || *back[0].Commune != "Paris" {
		t.Fatalf("commune: %v", back[0].Commune)
	}
	if back[0].Date == nil || !back[0].Date.Equal(date) {
		t.Fatalf("date: %v", back[0].Date)
	}
	if back[0].Prix == nil || *back[0].Prix != 1.859 {
		t.Fatalf("prix: %v", back[0].Prix)
	}
	if back[1].CP != nil || back[1].Latitude != nil {
		t.Fatalf("sparse row must read back nil: %+v", back[1])
	}
	if back[1].Jour == nil || *back[1].Jour != "2024-03-01" {
		t.Fatalf("jour: %v", back[1].Jour)
	}
}

func TestDailyMeansExports(t *testing.T) {
	tmp := t.TempDir()
	means := []internal.MoyenneJournaliere{
		{Jour: "2024-03-01", Carburant: "Gazole", PrixMoyen: 1.829},
		{Jour: "2024-03-01", Carburant: "SP95", PrixMoyen: 1.902},
	}

	csvPath := filepath.Join(tmp, "moyennes_journalieres.csv")
	if err := WriteDailyMeansCSV(means, csvPath); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(csvPath); err != nil {
		t.Fatal(err)
	}

	xlsxPath := filepath.Join(tmp, "moyennes_journalieres.xlsx")
	if err := ExportDailyMeansXLSX(means, xlsxPath); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(xlsxPath); err != nil {
		t.Fatal(err)
	}
}
