package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"vinylapi/internal/catalog"
)

// DefaultBaseURL is the hosted store's REST endpoint.
const DefaultBaseURL = "https://api.airtable.com/v0"

// Client implements Repository against the hosted store's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	baseID     string
	table      string
	apiKey     string
}

// NewClient creates a store client for one base and table.
func NewClient(httpClient *http.Client, baseURL, baseID, table, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		baseID:     baseID,
		table:      table,
		apiKey:     apiKey,
	}
}

type listResponse struct {
	Records []catalog.RawRecord `json:"records"`
	Offset  string              `json:"offset"`
}

type recordBody struct {
	Fields map[string]any `json:"fields"`
}

// List fetches every row. The store pages its list responses with an
// opaque offset token; callers get the accumulated full set.
func (c *Client) List(ctx context.Context) ([]catalog.RawRecord, error) {
	var records []catalog.RawRecord
	offset := ""
	for {
		u := c.tableURL("")
		if offset != "" {
			u += "?offset=" + url.QueryEscape(offset)
		}
		var page listResponse
		if err := c.doJSON(ctx, http.MethodGet, u, nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// Create inserts one row and returns it as stored.
func (c *Client) Create(ctx context.Context, f Fields) (catalog.RawRecord, error) {
	var created catalog.RawRecord
	body := recordBody{Fields: rowFields(f)}
	if err := c.doJSON(ctx, http.MethodPost, c.tableURL(""), body, &created); err != nil {
		return catalog.RawRecord{}, err
	}
	return created, nil
}

// Update patches one row's writable fields.
func (c *Client) Update(ctx context.Context, id string, f Fields) (catalog.RawRecord, error) {
	var updated catalog.RawRecord
	body := recordBody{Fields: rowFields(f)}
	if err := c.doJSON(ctx, http.MethodPatch, c.tableURL(id), body, &updated); err != nil {
		return catalog.RawRecord{}, err
	}
	return updated, nil
}

// Delete removes one row.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.tableURL(id), nil, nil)
}

func (c *Client) tableURL(id string) string {
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table))
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

func (c *Client) doJSON(ctx context.Context, method, url string, body, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("request %s %s: %w", method, url, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request %s %s: unexpected status %d", method, url, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", url, err)
	}
	return nil
}
