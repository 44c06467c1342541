package jellyfin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alfredflix/alfredflix/internal/pkg/entitlements"
	"github.com/alfredflix/alfredflix/internal/pkg/env"
)

// Client talks to the Jellyfin admin API. Authentication uses the server
// API key (X-Emby-Token), not a user session.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client from JELLYFIN_URL and JELLYFIN_API_KEY.
func NewClient() *Client {
	return &Client{
		baseURL: strings.TrimRight(env.GetEnv("JELLYFIN_URL", ""), "/"),
		apiKey:  env.GetEnv("JELLYFIN_API_KEY", ""),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Enabled reports whether the client is configured. An unconfigured client
// is valid in development; provisioning is skipped.
func (c *Client) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

type userResponse struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// Policy is the subset of the Jellyfin user policy the storefront manages.
type Policy struct {
	IsDisabled               bool  `json:"IsDisabled"`
	MaxActiveSessions        int   `json:"MaxActiveSessions"`
	EnableAllFolders         bool  `json:"EnableAllFolders"`
	RemoteClientBitrateLimit int64 `json:"RemoteClientBitrateLimit"`
}

// PolicyFor maps streaming entitlements onto a Jellyfin user policy.
func PolicyFor(ent entitlements.Entitlements) Policy {
	var bitrate int64 = 8_000_000
	if ent.MaxQuality == "4k" {
		bitrate = 0 // unlimited
	}
	return Policy{
		IsDisabled:               false,
		MaxActiveSessions:        ent.MaxStreams,
		EnableAllFolders:         true,
		RemoteClientBitrateLimit: bitrate,
	}
}

// CreateUser creates a Jellyfin account and returns its id.
func (c *Client) CreateUser(ctx context.Context, username, password string) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("jellyfin is not configured")
	}

	body, err := json.Marshal(map[string]string{
		"Name":     username,
		"Password": password,
	})
	if err != nil {
		return "", err
	}

	var user userResponse
	if err := c.do(ctx, http.MethodPost, "/Users/New", body, &user); err != nil {
		return "", fmt.Errorf("failed to create jellyfin user: %w", err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("jellyfin returned no user id")
	}
	return user.ID, nil
}

// SetPolicy applies the plan-derived policy to a Jellyfin user.
func (c *Client) SetPolicy(ctx context.Context, userID string, policy Policy) error {
	body, err := json.Marshal(policy)
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/Users/"+userID+"/Policy", body, nil); err != nil {
		return fmt.Errorf("failed to set jellyfin policy for %s: %w", userID, err)
	}
	return nil
}

// SetDisabled flips the IsDisabled flag, used when suspending accounts.
func (c *Client) SetDisabled(ctx context.Context, userID string, disabled bool) error {
	body, err := json.Marshal(map[string]bool{"IsDisabled": disabled})
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, "/Users/"+userID+"/Policy", body, nil); err != nil {
		return fmt.Errorf("failed to update jellyfin user %s: %w", userID, err)
	}
	return nil
}

// DeleteUser removes a Jellyfin account.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if err := c.do(ctx, http.MethodDelete, "/Users/"+userID, nil, nil); err != nil {
		return fmt.Errorf("failed to delete jellyfin user %s: %w", userID, err)
	}
	return nil
}

// Ping checks server reachability for the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return fmt.Errorf("jellyfin is not configured")
	}
	return c.do(ctx, http.MethodGet, "/System/Info/Public", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jellyfin request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("jellyfin returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode jellyfin response: %v", err)
		}
	}
	return nil
}
