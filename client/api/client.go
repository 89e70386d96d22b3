package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the bootstrap view returned by the profile read endpoint.
type Profile struct {
	Nickname string   `json:"nickname"`
	Gender   string   `json:"gender"`
	Kinks    []string `json:"kinks"`
}

// WriteResult is the outcome of a profile mutation. Error carries the
// server's message verbatim when Ok is false.
type WriteResult struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// TokenSource supplies the current access token. An empty return sends
// the request unauthenticated.
type TokenSource func() string

// Client calls the profile API.
type Client struct {
	baseURL    string
	token      TokenSource
	httpClient *http.Client
}

// NewClient creates a client for the given instance. A nil httpClient
// falls back to http.DefaultClient; deployments that want a deadline on
// profile calls set one on the client they pass in.
func NewClient(baseURL string, token TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// GetMyProfile fetches the caller's stored profile.
func (c *Client) GetMyProfile(ctx context.Context) (*Profile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/profile/me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch profile")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status fetching profile: %s", resp.Status)
	}
	profile := &Profile{}
	if err := json.NewDecoder(resp.Body).Decode(profile); err != nil {
		return nil, errors.Wrap(err, "failed to decode profile")
	}
	return profile, nil
}

// UpdatePreferences submits gender and kinks together. Transport
// failures surface as a not-ok result so callers handle one shape.
func (c *Client) UpdatePreferences(ctx context.Context, gender string, kinks []string) WriteResult {
	return c.postWrite(ctx, "/api/v1/profile/preferences", map[string]any{
		"gender": gender,
		"kinks":  kinks,
	})
}

// UpdateNickname submits a nickname change.
func (c *Client) UpdateNickname(ctx context.Context, nickname string) WriteResult {
	return c.postWrite(ctx, "/api/v1/profile/nickname", map[string]any{
		"nickname": nickname,
	})
}

func (c *Client) postWrite(ctx context.Context, path string, body any) WriteResult {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return WriteResult{Ok: false, Error: err.Error()}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return WriteResult{Ok: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	// Mutation endpoints report their outcome in the body on every
	// status, so the body is authoritative when it decodes.
	result := WriteResult{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return WriteResult{Ok: false, Error: errors.Errorf("unexpected response: %s", resp.Status).Error()}
	}
	return result
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
