// Package incidentio provides a minimal client for the incident.io v2 REST API.
// The bot only lists incidents; mutations happen on the incident.io side.
package incidentio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the production incident.io API endpoint.
const DefaultBaseURL = "https://api.incident.io/v2"

// Client provides HTTP access to the incident.io API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient creates an incident.io client authenticated with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListIncidents fetches the current incident list.
func (c *Client) ListIncidents(ctx context.Context) ([]Incident, error) {
	body, err := c.doRequest(ctx, "GET", c.BaseURL+"/incidents")
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	var result ListResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse incidents response: %w", err)
	}

	return result.Incidents, nil
}

// doRequest executes an authenticated request and returns the response body.
func (c *Client) doRequest(ctx context.Context, method, apiURL string) ([]byte, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("incident.io API key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("incident.io returned %d: %s", resp.StatusCode, snippet)
	}

	return body, nil
}
