package testhelpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
}

// RegisterAndLogin creates an account and returns a bearer token for it.
func RegisterAndLogin(baseURL, username, password string) (string, error) {
	client := newClient(baseURL)
	creds := map[string]string{"username": username, "password": password}

	resp, err := client.R().SetBody(creds).Post("/api/v1/auth/register")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("register failed: %d %s", resp.StatusCode(), resp.String())
	}

	return Login(baseURL, username, password)
}

// Login exchanges credentials for a bearer token.
func Login(baseURL, username, password string) (string, error) {
	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	resp, err := newClient(baseURL).R().
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&payload).
		Post("/api/v1/auth/login")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("login failed: %d %s", resp.StatusCode(), resp.String())
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("login returned no access token")
	}
	return payload.AccessToken, nil
}
