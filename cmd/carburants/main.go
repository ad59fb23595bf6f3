package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"carburants/internal/config"
	"carburants/internal/feed"
	"carburants/internal/pipeline"
	"carburants/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "feed:fetch":
		path, count, err := fetchFeed(cfg)
		must(err)
		fmt.Printf("fetch done: %d enregistrements -> %s\n", count, path)
	case "clean":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "raw JSON file (default: latest in RAW_DIR)")
		_ = fs.Parse(os.Args[2:])
		out, count, err := cleanBatch(cfg, *input)
		must(err)
		fmt.Printf("clean done: %d lignes -> %s\n", count, out)
	case "history:append":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "clean CSV file (default: PROCESSED_DIR/prix_carburants_clean.csv)")
		_ = fs.Parse(os.Args[2:])
		total, err := appendHistory(cfg, *input)
		must(err)
		fmt.Printf("historique: %d lignes -> %s\n", total, cfg.HistoryDir)
	case "run":
		path, count, err := fetchFeed(cfg)
		must(err)
		fmt.Printf("fetch done: %d enregistrements -> %s\n", count, path)
		out, cleaned, err := cleanBatch(cfg, path)
		must(err)
		fmt.Printf("clean done: %d lignes -> %s\n", cleaned, out)
		total, err := appendHistory(cfg, out)
		must(err)
		fmt.Printf("historique: %d lignes -> %s\n", total, cfg.HistoryDir)
	default:
		usage()
		os.Exit(1)
	}
}

func fetchFeed(cfg config.Config) (string, int, error) {
	client := feed.NewClient(cfg)
	return client.FetchToFile(context.Background(), cfg.RawDir)
}

func cleanBatch(cfg config.Config, input string) (string, int, error) {
	if input == "" {
		latest, err := feed.LatestRawFile(cfg.RawDir)
		if err != nil {
			return "", 0, err
		}
		input = latest
	}

	records, err := feed.LoadRecords(input)
	if err != nil {
		return "", 0, err
	}

	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return "", 0, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return "", 0, err
	}

	cleaner := pipeline.NewCleaner(rules, loc)
	rows, counts := cleaner.Clean(records)
	fmt.Println(counts)

	out := filepath.Join(cfg.ProcessedDir, "prix_carburants_clean.csv")
	if err := pipeline.WriteCleanCSV(rows, out); err != nil {
		return "", 0, err
	}
	return out, len(rows), nil
}

func appendHistory(cfg config.Config, input string) (int, error) {
	if input == "" {
		input = filepath.Join(cfg.ProcessedDir, "prix_carburants_clean.csv")
	}
	if _, err := os.Stat(input); err != nil {
		return 0, fmt.Errorf("fichier quotidien absent %q, lance d'abord clean: %w", input, err)
	}

	batch, err := pipeline.ReadCleanCSV(input)
	if err != nil {
		return 0, err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if _, err := db.Merge(batch); err != nil {
		return 0, err
	}

	history, err := db.History()
	if err != nil {
		return 0, err
	}
	if err := pipeline.WriteCleanCSV(history, filepath.Join(cfg.HistoryDir, "prix_carburants_history.csv")); err != nil {
		return 0, err
	}

	means, err := db.DailyMeans()
	if err != nil {
		return 0, err
	}
	if err := pipeline.WriteDailyMeansCSV(means, filepath.Join(cfg.HistoryDir, "moyennes_journalieres.csv")); err != nil {
		return 0, err
	}
	if err := pipeline.ExportDailyMeansXLSX(means, filepath.Join(cfg.HistoryDir, "moyennes_journalieres.xlsx")); err != nil {
		return 0, err
	}

	return len(history), nil
}

func usage() {
	fmt.Println("usage: carburants <command>")
	fmt.Println("commands:")
	fmt.Println("  feed:fetch")
	fmt.Println("  clean [--input=data/raw/prix_carburants_YYYYMMDD.json]")
	fmt.Println("  history:append [--input=data/processed/prix_carburants_clean.csv]")
	fmt.Println("  run")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
