package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrInvalidCredentials is returned for any 4xx from the token endpoint so
// handlers can show a generic message without leaking provider detail.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Client talks to the Supabase GoTrue auth API over plain HTTP.
type Client struct {
	projectID  string
	apiKey     string
	httpClient *http.Client
}

func NewClient(projectID, apiKey string) *Client {
	return &Client{
		projectID:  projectID,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Session is the subset of a GoTrue token response the server needs.
type Session struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

// SignUp registers a new user with email and password.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	url := fmt.Sprintf("https://%s.supabase.co/auth/v1/signup", c.projectID)

	_, err := c.post(ctx, url, map[string]string{
		"email":    email,
		"password": password,
	})
	return err
}

// SignIn exchanges email and password for an access token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	url := fmt.Sprintf("https://%s.supabase.co/auth/v1/token?grant_type=password", c.projectID)

	body, err := c.post(ctx, url, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if session.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}

	return &session, nil
}

func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth request failed with status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
