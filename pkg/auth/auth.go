// Package auth verifies requester credentials against the external session
// authority. Session issuance itself lives outside this service; this
// client only asks "who does this bearer token belong to".
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrInvalidToken is returned for missing, expired, or unknown tokens. The
// HTTP layer maps it to 401 without further detail.
var ErrInvalidToken = errors.New("invalid session token")

type User struct {
	ID    string
	Email string
	Name  string
	Image string
}

type SessionVerifier interface {
	VerifyToken(ctx context.Context, token string) (*User, error)
}

type sessionClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSessionClient(baseURL, apiKey string, timeout time.Duration) SessionVerifier {
	return &sessionClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type userResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
}

func (c *sessionClient) VerifyToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: err=%w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("session authority unreachable: err=%w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("session authority returned status %d", resp.StatusCode)
	}
	var body userResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode session authority response: err=%w", err)
	}
	if body.ID == "" {
		return nil, ErrInvalidToken
	}
	name := body.UserMetadata.FullName
	if name == "" {
		name = body.UserMetadata.Name
	}
	if name == "" {
		name = body.Email
	}
	return &User{
		ID:    body.ID,
		Email: body.Email,
		Name:  name,
		Image: body.UserMetadata.AvatarURL,
	}, nil
}
