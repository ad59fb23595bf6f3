package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"carburants/internal/config"
)

// Client downloads the daily feed through the open-data download service.
// One GET per run, bounded by the configured timeout; a failed fetch is
// fatal and is not retried.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.FeedTimeoutMs) * time.Millisecond},
	}
}

// Download fetches the full daily record set.
func (c *Client) Download(ctx context.Context) ([]map[string]any, error) {
	query := url.Values{}
	query.Set("dataset", c.cfg.FeedDataset)
	query.Set("format", "json")
	query.Set("timezone", c.cfg.Timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.FeedBaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed download: unexpected status %d", resp.StatusCode)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("feed download: read body: %w", err)
	}

	return DecodeRecords(blob)
}

// FetchToFile downloads the daily record set and stores it as a date-stamped
// JSON array under dir, the shape the clean step reads back.
func (c *Client) FetchToFile(ctx context.Context, dir string) (string, int, error) {
	records, err := c.Download(ctx)
	if err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}

	path := filepath.Join(dir, fmt.Sprintf("prix_carburants_%s.json", time.Now().Format("20060102")))
	blob, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", 0, err
	}
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", 0, fmt.Errorf("write raw file: %w", err)
	}

	return path, len(records), nil
}
