// (c) 2024, Faucet Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package authadapter implements AuthAdapter (C8): resolving an opaque
// external session token to a user id for the auth admission flow
// variant (spec.md §4.7).
package authadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AuthAdapter resolves a session token issued by an external identity
// provider to a stable user id.
type AuthAdapter interface {
	GetUserSession(ctx context.Context, token string) (userID string, err error)
}

// StaticAdapter is a test fake: a fixed token -> user-id map.
type StaticAdapter map[string]string

func (s StaticAdapter) GetUserSession(ctx context.Context, token string) (string, error) {
	userID, ok := s[token]
	if !ok {
		return "", fmt.Errorf("unknown session token")
	}
	return userID, nil
}

// ClerkAdapter resolves Clerk session tokens via Clerk's REST API with a
// single GET /sessions/{id} call, returning the session's user_id when
// the session is active. It does not fetch the user record itself.
type ClerkAdapter struct {
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClerkAdapter builds an adapter against Clerk's production API.
func NewClerkAdapter(secretKey string) *ClerkAdapter {
	return &ClerkAdapter{
		SecretKey:  secretKey,
		BaseURL:    "https://api.clerk.com/v1",
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type clerkSession struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

func (c *ClerkAdapter) GetUserSession(ctx context.Context, token string) (string, error) {
	session, err := c.getSession(ctx, token)
	if err != nil {
		return "", err
	}
	if session.Status != "active" {
		return "", fmt.Errorf("session %q is not active", token)
	}
	return session.UserID, nil
}

func (c *ClerkAdapter) getSession(ctx context.Context, sessionID string) (*clerkSession, error) {
	var session clerkSession
	if err := c.get(ctx, "/sessions/"+sessionID, &session); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &session, nil
}

func (c *ClerkAdapter) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clerk api returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
