package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"carburants/internal"
)

// cleanColumns is the column contract consumed by the history step; order
// and names are fixed.
var cleanColumns = []string{
	"id", "date", "cp", "commune", "adresse", "carburant",
	"prix", "latitude", "longitude", "id_station", "jour", "departement",
}

// WriteCleanCSV writes the cleaned batch as a UTF-8 CSV with a header row,
// creating intermediate directories as needed.
func WriteCleanCSV(rows []internal.Releve, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cleanColumns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			derefStr(r.ID),
			formatDate(r.Date),
			derefStr(r.CP),
			derefStr(r.Commune),
			derefStr(r.Adresse),
			derefStr(r.Carburant),
			formatFloat(r.Prix),
			formatFloat(r.Latitude),
			formatFloat(r.Longitude),
			derefStr(r.IDStation),
			derefStr(r.Jour),
			derefStr(r.Departement),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCleanCSV loads a previously written clean batch back into memory.
func ReadCleanCSV(path string) ([]internal.Releve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %q has no header row", path)
	}

	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[name] = i
	}

	cell := func(record []string, name string) *string {
		i, ok := col[name]
		if !ok || i >= len(record) || record[i] == "" {
			return nil
		}
		v := record[i]
		return &v
	}

	rows := make([]internal.Releve, 0, len(records)-1)
	for _, record := range records[1:] {
		row := internal.Releve{
			ID:          cell(record, "id"),
			CP:          cell(record, "cp"),
			Commune:     cell(record, "commune"),
			Adresse:     cell(record, "adresse"),
			Carburant:   cell(record, "carburant"),
			IDStation:   cell(record, "id_station"),
			Jour:        cell(record, "jour"),
			Departement: cell(record, "departement"),
		}
		if raw := cell(record, "date"); raw != nil {
			if t, err := time.Parse(time.RFC3339, *raw); err == nil {
				row.Date = &t
			}
		}
		row.Prix = parseFloatCell(cell(record, "prix"))
		row.Latitude = parseFloatCell(cell(record, "latitude"))
		row.Longitude = parseFloatCell(cell(record, "longitude"))
		rows = append(rows, row)
	}
	return rows, nil
}

var meanColumns = []string{"jour", "carburant", "prix"}

// WriteDailyMeansCSV writes the per-day, per-fuel aggregate table.
func WriteDailyMeansCSV(means []internal.MoyenneJournaliere, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(meanColumns); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, m := range means {
		record := []string{m.Jour, m.Carburant, strconv.FormatFloat(m.PrixMoyen, 'f', -1, 64)}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ExportDailyMeansXLSX writes the aggregate table as a workbook for
// analyst consumption.
func ExportDailyMeansXLSX(means []internal.MoyenneJournaliere, path string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, h := range meanColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, m := range means {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, m.Jour)
		set(2, m.Carburant)
		set(3, m.PrixMoyen)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func derefStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(time.RFC3339)
}

func parseFloatCell(v *string) *float64 {
	if v == nil {
		return nil
	}
	parsed, err := strconv.ParseFloat(*v, 64)
	if err != nil {
		return nil
	}
	return &parsed
}
