package api

import (
	"context"
	"net/http"
)

// HealthStatus represents the API health status
type HealthStatus struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// Health checks if the API and its store are reachable
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var health HealthStatus
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// LoginResult is returned by Login
type LoginResult struct {
	Token string `json:"token"`
	User  struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

// Login exchanges credentials for a token and keeps it on the client
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}

	var result LoginResult
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", body, &result); err != nil {
		return nil, err
	}

	c.SetToken(result.Token)
	return &result, nil
}
