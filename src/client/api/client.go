// Package api is the HTTP client for the Core Studio server.
package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ProjectName is set at build time - used for User-Agent
var ProjectName = "core-studio"

// Version is set at build time
var Version = "dev"

// Client talks to a Core Studio server.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL, token string, timeout int) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

// Envelope is the standard response wrapper every endpoint returns.
type Envelope struct {
	Success             bool            `json:"success"`
	Data                json.RawMessage `json:"data,omitempty"`
	Error               string          `json:"error,omitempty"`
	ErrorCode           string          `json:"error_code,omitempty"`
	Operation           string          `json:"operation,omitempty"`
	Source              string          `json:"source,omitempty"`
	AvailableOperations []string        `json:"available_operations,omitempty"`
	Timestamp           string          `json:"timestamp"`
}

// APIError is a failed envelope turned into an error.
type APIError struct {
	StatusCode          int
	Code                string
	Message             string
	AvailableOperations []string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// HealthResponse represents /api/v1/healthz.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Uptime  string            `json:"uptime,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ModuleList represents the module listing endpoint.
type ModuleList struct {
	Modules []string `json:"modules"`
	Count   int      `json:"count"`
}

// VerifyReport represents the core verification endpoint.
type VerifyReport struct {
	Total      int `json:"total"`
	Accessible int `json:"accessible"`
	Cores      []struct {
		Module          string   `json:"module"`
		Source          string   `json:"source"`
		Accessible      bool     `json:"accessible"`
		ReadOperations  []string `json:"read_operations"`
		WriteOperations []string `json:"write_operations"`
	} `json:"cores"`
}

// Project mirrors the server-side project record.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status"`
	Owner       string   `json:"owner,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// ProjectList represents the paginated project listing.
type ProjectList struct {
	Items      []Project `json:"items"`
	Pagination struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
		HasMore    bool  `json:"has_more"`
	} `json:"pagination"`
}

// Health checks server health.
func (c *Client) Health() (*HealthResponse, error) {
	env, err := c.getEnvelope("/api/v1/healthz")
	if err != nil {
		return nil, err
	}
	var result HealthResponse
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode health response: %w", err)
	}
	return &result, nil
}

// Modules lists the available core modules.
func (c *Client) Modules() (*ModuleList, error) {
	env, err := c.getEnvelope("/api/phantom-cores")
	if err != nil {
		return nil, err
	}
	var result ModuleList
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode module list: %w", err)
	}
	return &result, nil
}

// Verify checks that every core module is dispatchable.
func (c *Client) Verify() (*VerifyReport, error) {
	env, err := c.getEnvelope("/api/phantom-cores/verify")
	if err != nil {
		return nil, err
	}
	var result VerifyReport
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode verify report: %w", err)
	}
	return &result, nil
}

// Read dispatches a read operation on a core module.
func (c *Client) Read(module, operation string, params map[string]string) (*Envelope, error) {
	values := url.Values{}
	if operation != "" {
		values.Set("operation", operation)
	}
	for k, v := range params {
		values.Set(k, v)
	}
	path := "/api/phantom-cores/" + url.PathEscape(module)
	if len(values) > 0 {
		path += "?" + values.Encode()
	}
	return c.getEnvelope(path)
}

// Write dispatches a write operation on a core module.
func (c *Client) Write(module, operation string, params map[string]any) (*Envelope, error) {
	body := map[string]any{"operation": operation}
	for k, v := range params {
		body[k] = v
	}
	resp, err := c.doRequest("POST", "/api/phantom-cores/"+url.PathEscape(module), body)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(resp)
}

// ListProjects fetches a page of projects.
func (c *Client) ListProjects(page, limit int, status string) (*ProjectList, error) {
	values := url.Values{}
	if page > 0 {
		values.Set("page", fmt.Sprintf("%d", page))
	}
	if limit > 0 {
		values.Set("limit", fmt.Sprintf("%d", limit))
	}
	if status != "" {
		values.Set("status", status)
	}
	path := "/api/v1/platform/projects"
	if len(values) > 0 {
		path += "?" + values.Encode()
	}
	env, err := c.getEnvelope(path)
	if err != nil {
		return nil, err
	}
	var result ProjectList
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode project list: %w", err)
	}
	return &result, nil
}

// GetProject fetches a single project by id.
func (c *Client) GetProject(id string) (*Project, error) {
	env, err := c.getEnvelope("/api/v1/platform/projects/" + url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var result Project
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	return &result, nil
}

// CreateProject creates a project. Requires an admin token.
func (c *Client) CreateProject(p *Project) (*Project, error) {
	resp, err := c.doRequest("POST", "/api/v1/platform/projects", p)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	var result Project
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	return &result, nil
}

// UpdateProject updates a project. Requires an admin token.
func (c *Client) UpdateProject(id string, p *Project) (*Project, error) {
	resp, err := c.doRequest("PUT", "/api/v1/platform/projects/"+url.PathEscape(id), p)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(resp)
	if err != nil {
		return nil, err
	}
	var result Project
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode project: %w", err)
	}
	return &result, nil
}

// DeleteProject deletes a project. Requires an admin token.
func (c *Client) DeleteProject(id string) error {
	resp, err := c.doRequest("DELETE", "/api/v1/platform/projects/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(resp)
	return err
}

func (c *Client) getEnvelope(path string) (*Envelope, error) {
	resp, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(resp)
}

func decodeEnvelope(resp *http.Response) (*Envelope, error) {
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{
			StatusCode:          resp.StatusCode,
			Code:                env.ErrorCode,
			Message:             env.Error,
			AvailableOperations: env.AvailableOperations,
		}
	}
	return &env, nil
}

func (c *Client) doRequest(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = strings.NewReader(string(bodyBytes))
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", fmt.Sprintf("%s-cli/%s", ProjectName, Version))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	// Envelope endpoints carry errors in the body; only treat
	// non-JSON failures as transport errors.
	if resp.StatusCode >= 400 && !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		bodyData, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyData)))
	}

	return resp, nil
}
