// Package cmrclient talks to the CMR ingest API.
package cmrclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vbjayanti/cumulus/internal/config"
)

// Client deletes granule metadata from a CMR provider. Deleting a concept
// that is already gone is treated as success so retries stay safe.
type Client struct {
	baseURL  string
	provider string
	token    string
	http     *http.Client
}

func New(cfg config.Config) *Client {
	return &Client{
		baseURL:  cfg.CMRBaseURL,
		provider: cfg.CMRProvider,
		token:    cfg.CMRToken,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// PublishGranule pushes a metadata document to the provider, creating or
// replacing the granule's catalog entry. The format string selects the
// ingest content type ("echo10" or "umm-g").
func (c *Client) PublishGranule(ctx context.Context, granuleID string, doc []byte, format string) error {
	endpoint := fmt.Sprintf("%s/ingest/providers/%s/granules/%s",
		c.baseURL, url.PathEscape(c.provider), url.PathEscape(granuleID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("build cmr ingest request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeFor(format))
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cmr ingest granule %s: %w", granuleID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("cmr ingest granule %s: status %d: %s", granuleID, resp.StatusCode, body)
	}
	return nil
}

func contentTypeFor(format string) string {
	if format == "umm-g" {
		return "application/vnd.nasa.cmr.umm+json"
	}
	return "application/echo10+xml"
}

func (c *Client) DeleteGranule(ctx context.Context, granuleID string) error {
	endpoint := fmt.Sprintf("%s/ingest/providers/%s/granules/%s",
		c.baseURL, url.PathEscape(c.provider), url.PathEscape(granuleID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build cmr delete request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("cmr delete granule %s: %w", granuleID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("cmr delete granule %s: status %d: %s", granuleID, resp.StatusCode, body)
	}
}
