// Package admin implements the archives-admin command line: minting admin
// JWTs and driving the app management endpoints of a running server.
package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AppToken is the response of register and revoke calls.
type AppToken struct {
	App   string `json:"app"`
	Token string `json:"token"`
}

type AppState struct {
	App      string `json:"app"`
	IsActive bool   `json:"is_active"`
}

type AppSummary struct {
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type AppList struct {
	Count int          `json:"count"`
	Apps  []AppSummary `json:"apps"`
}

// Client calls the admin endpoints with a bearer admin JWT.
type Client struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
}

func NewClient(baseURL, adminToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Register(ctx context.Context, name string) (*AppToken, error) {
	out := &AppToken{}
	return out, c.do(ctx, http.MethodPost, "/register-app", name, http.StatusCreated, out)
}

func (c *Client) Revoke(ctx context.Context, name string) (*AppToken, error) {
	out := &AppToken{}
	return out, c.do(ctx, http.MethodPost, "/revoke-token", name, http.StatusOK, out)
}

func (c *Client) Toggle(ctx context.Context, name string) (*AppState, error) {
	out := &AppState{}
	return out, c.do(ctx, http.MethodPatch, "/toggle-app", name, http.StatusOK, out)
}

func (c *Client) List(ctx context.Context) (*AppList, error) {
	out := &AppList{}
	return out, c.do(ctx, http.MethodGet, "/apps", "", http.StatusOK, out)
}

func (c *Client) do(ctx context.Context, method, path, name string, want int, out any) error {
	var body io.Reader
	if method != http.MethodGet {
		b, err := json.Marshal(map[string]string{"name": name})
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.adminToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s failed: %s: %s", path, resp.Status, e.Error)
		}
		return fmt.Errorf("%s failed: %s; body: %s", path, resp.Status, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
