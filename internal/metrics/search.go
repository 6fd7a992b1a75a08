// Package metrics queries the metrics Elasticsearch cluster to resolve
// bulk-request queries into granule ids.
package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vbjayanti/cumulus/internal/config"
)

type SearchClient struct {
	host     string
	user     string
	password string
	http     *http.Client
}

func NewSearchClient(cfg config.Config) *SearchClient {
	return &SearchClient{
		host:     cfg.MetricsHost,
		user:     cfg.MetricsUser,
		password: cfg.MetricsPassword,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type searchHit struct {
	Source struct {
		GranuleID string `json:"granuleId"`
	} `json:"_source"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// GranuleIDs runs the caller-supplied query against the given index and
// returns the granuleId of every hit. The query body is passed through
// untouched apart from a result-size cap.
func (c *SearchClient) GranuleIDs(ctx context.Context, index string, query map[string]any) ([]string, error) {
	body := map[string]any{"size": 10000}
	for k, v := range query {
		body[k] = v
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal metrics query: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/_search", c.host, url.PathEscape(index))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build metrics search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metrics search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("metrics search: status %d: %s", resp.StatusCode, detail)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode metrics response: %w", err)
	}
	ids := make([]string, 0, len(out.Hits.Hits))
	for _, hit := range out.Hits.Hits {
		if hit.Source.GranuleID != "" {
			ids = append(ids, hit.Source.GranuleID)
		}
	}
	return ids, nil
}
