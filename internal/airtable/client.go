// Package airtable pulls lead records from the external Airtable feed.
//
// The webhook push path is preferred in production; the pull path exists for
// manual backfills and for recovering after missed webhooks. Requests go
// through the retrying HTTP client so a rate-limited feed (Airtable returns
// 429 at 5 req/s) does not fail a run.
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/clinichq/admin-api/internal/config"
	"github.com/clinichq/admin-api/internal/pkg/httpretry"
	"github.com/clinichq/admin-api/internal/service/leadimport"
)

// Client is an Airtable REST API client for the lead feed.
type Client struct {
	baseURL string
	apiKey  string
	baseID  string
	table   string
	http    httpretry.HTTPDoer
}

// NewClient creates an Airtable client from config. A nil doer gets the
// default retrying client.
func NewClient(cfg config.AirtableConfig, doer httpretry.HTTPDoer) *Client {
	if doer == nil {
		doer = httpretry.NewRetryClient(nil, 3)
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		baseID:  cfg.BaseID,
		table:   cfg.Table,
		http:    doer,
	}
}

// listResponse is one page of the Airtable list endpoint.
type listResponse struct {
	Records []struct {
		ID     string            `json:"id"`
		Fields leadimport.Record `json:"fields"`
	} `json:"records"`
	Offset string `json:"offset"`
}

// FetchLeads pulls every record from the configured table, following offset
// pagination to the end.
func (c *Client) FetchLeads(ctx context.Context) ([]leadimport.Record, error) {
	var out []leadimport.Record
	offset := ""

	for {
		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		for _, rec := range page.Records {
			r := rec.Fields
			// Airtable's record id doubles as the legacy identity when the
			// feed doesn't carry one explicitly.
			if r.OldUserID == "" {
				r.OldUserID = rec.ID
			}
			out = append(out, r)
		}
		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

func (c *Client) fetchPage(ctx context.Context, offset string) (*listResponse, error) {
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(c.table))
	if offset != "" {
		u += "?offset=" + url.QueryEscape(offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build airtable request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch airtable page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("airtable returned %d: %s", resp.StatusCode, body)
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode airtable page: %w", err)
	}
	return &page, nil
}
