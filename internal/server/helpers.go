package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Health is the body served by /health
type Health struct {
	Status string `json:"status"`
	Tables int    `json:"tables"`
}

// WaitForHealthy polls baseURL's /health endpoint until the server reports
// ok or ctx is done, and returns the last health report.
func WaitForHealthy(ctx context.Context, baseURL string) (Health, error) {
	client := &http.Client{Timeout: time.Second}
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if health, ok := checkHealth(ctx, client, baseURL+"/health"); ok {
			return health, nil
		}
		select {
		case <-ctx.Done():
			return Health{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func checkHealth(ctx context.Context, client *http.Client, url string) (Health, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Health{}, false
	}
	resp, err := client.Do(req)
	if err != nil {
		return Health{}, false
	}
	defer resp.Body.Close()

	var health Health
	if resp.StatusCode != http.StatusOK || json.NewDecoder(resp.Body).Decode(&health) != nil {
		return Health{}, false
	}
	return health, health.Status == "ok"
}
