package feed

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Batch-level failures. Per-record problems never surface from this
// package; only an unusable file set or payload shape does.
var (
	ErrNoRawData         = errors.New("feed: no raw data file found, run feed:fetch first")
	ErrUnexpectedPayload = errors.New("feed: unexpected payload shape")
)

type recordsEnvelope struct {
	Records []map[string]any `json:"records"`
}

// DecodeRecords resolves the three accepted payload shapes into a flat
// record slice: a top-level JSON array, an envelope object carrying a
// "records" array, or newline-delimited JSON objects.
func DecodeRecords(blob []byte) ([]map[string]any, error) {
	var records []map[string]any
	if err := json.Unmarshal(blob, &records); err == nil {
		return records, nil
	}

	var envelope recordsEnvelope
	if err := json.Unmarshal(blob, &envelope); err == nil && envelope.Records != nil {
		return envelope.Records, nil
	}

	if records, err := decodeLines(blob); err == nil {
		return records, nil
	}

	return nil, ErrUnexpectedPayload
}

func decodeLines(blob []byte) ([]map[string]any, error) {
	scanner := bufio.NewScanner(bytes.NewReader(blob))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var records []map[string]any
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrUnexpectedPayload
	}
	return records, nil
}

// LatestRawFile returns the newest prix_carburants_*.json in dir, going by
// the date stamp in the filename.
func LatestRawFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoRawData
		}
		return "", fmt.Errorf("read raw dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "prix_carburants_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", ErrNoRawData
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}

// LoadRecords reads and decodes one raw feed file.
func LoadRecords(path string) ([]map[string]any, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read raw file: %w", err)
	}
	return DecodeRecords(blob)
}
