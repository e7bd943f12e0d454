// Package client is the gallery's consuming side: an API client, per-session
// view state, and the polling layer that keeps the default view fresh.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sylrest/keepsake/internal/model"
)

// ListResult is the decoded image listing response.
type ListResult struct {
	Images     []model.Image `json:"images"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int           `json:"total_pages"`
}

// Client talks to the keepsake API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL. A nil httpClient uses
// a default with a 10s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// ListImages fetches one page of the listing for the given view.
func (c *Client) ListImages(ctx context.Context, view View) (*ListResult, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(view.Page))
	params.Set("per_page", strconv.Itoa(view.PerPage))
	params.Set("sort_by", view.SortBy)
	params.Set("sort_order", view.SortOrder)
	if view.Filter.Filename != "" {
		params.Set("filename", view.Filter.Filename)
	}
	if view.Filter.FileExtension != "" {
		params.Set("file_extension", view.Filter.FileExtension)
	}
	if view.Filter.DateFrom != "" {
		params.Set("date_from", view.Filter.DateFrom)
	}
	if view.Filter.DateTo != "" {
		params.Set("date_to", view.Filter.DateTo)
	}

	var result ListResult
	if err := c.getJSON(ctx, "/api/images?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats fetches the dashboard statistics.
func (c *Client) Stats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	if err := c.getJSON(ctx, "/api/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DeleteImage deletes one image by id. Absent ids succeed (the server's
// delete is idempotent).
func (c *Client) DeleteImage(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/api/images/%d", c.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete image %d: %w", id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete image %d: unexpected status %d", id, resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
