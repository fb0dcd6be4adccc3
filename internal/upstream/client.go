package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"guiche-backend/config"
)

// Client talks to the remote scheduling API at a fixed base URL.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the configured upstream.
func NewClient(cfg *config.UpstreamConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// LiveItems fetches the items currently live within the given scope. A 204
// response is a valid empty result and yields an empty, non-nil slice.
func (c *Client) LiveItems(ctx context.Context, scope Scope) ([]QueueItem, error) {
	q := url.Values{}
	if scope.Date != "" {
		q.Set("date", scope.Date)
	}
	if scope.Staff != "" {
		q.Set("staff", scope.Staff)
	}
	endpoint := c.baseURL + "/live-items"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		var items []QueueItem
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal live items: %w", err)
		}
		if items == nil {
			items = []QueueItem{}
		}
		return items, nil
	case http.StatusNoContent:
		return []QueueItem{}, nil
	default:
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}
}

// UpdateItemStatus transitions a queue item to the given status.
func (c *Client) UpdateItemStatus(ctx context.Context, id int64, status Status) error {
	payload := map[string]Status{"status": status}
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/items/%d/status", id), payload, nil)
}

// UpdateItemDetails replaces the editable fields of a queue item.
func (c *Client) UpdateItemDetails(ctx context.Context, id int64, details DetailsUpdate) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/items/%d/details", id), details, nil)
}

// CheckAccess asks the remote decision service whether the subject may view
// pages tagged with the given profile.
func (c *Client) CheckAccess(ctx context.Context, subjectName, pageProfile string) (bool, error) {
	q := url.Values{}
	q.Set("subjectName", subjectName)
	q.Set("pageProfile", pageProfile)

	var decision struct {
		HasAccess bool `json:"hasAccess"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/access-check?"+q.Encode(), nil, &decision); err != nil {
		return false, err
	}
	return decision.HasAccess, nil
}

// ValidateUser forwards credentials to the remote source. An empty role means
// the credentials were rejected; only transport problems return an error.
func (c *Client) ValidateUser(ctx context.Context, subjectName, secret string) (string, error) {
	q := url.Values{}
	q.Set("subjectName", subjectName)
	q.Set("secret", secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/auth/validate?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	var result struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal validation response: %w", err)
	}
	return result.Role, nil
}

// SetOnline marks the subject as online. Best-effort; callers log failures.
func (c *Client) SetOnline(ctx context.Context, subjectName string) error {
	return c.doJSON(ctx, http.MethodPost, "/session/online?subjectName="+url.QueryEscape(subjectName), nil, nil)
}

// SetOffline marks the subject as offline. Best-effort; callers log failures.
func (c *Client) SetOffline(ctx context.Context, subjectName string) error {
	return c.doJSON(ctx, http.MethodPost, "/session/offline?subjectName="+url.QueryEscape(subjectName), nil, nil)
}

// ListPlans fetches all insurance plans.
func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := c.doJSON(ctx, http.MethodGet, "/plans", nil, &plans); err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []Plan{}
	}
	return plans, nil
}

// CreatePlan creates an insurance plan and returns the stored record.
func (c *Client) CreatePlan(ctx context.Context, plan Plan) (Plan, error) {
	var created Plan
	if err := c.doJSON(ctx, http.MethodPost, "/plans", plan, &created); err != nil {
		return Plan{}, err
	}
	return created, nil
}

// UpdatePlan replaces an insurance plan.
func (c *Client) UpdatePlan(ctx context.Context, id int64, plan Plan) error {
	return c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/plans/%d", id), plan, nil)
}

// DeletePlan removes an insurance plan.
func (c *Client) DeletePlan(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/plans/%d", id), nil, nil)
}

// doJSON performs a request with an optional JSON body and decodes the
// response into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
