// sso.go adapts the teacher's artifact_client.go HTTP-client idiom (timeout
// client, context-scoped requests, response-body error wrapping) into the
// client-credentials token client spec.md §6.3 names, with the cache/retry
// machinery the teacher's dependencies (go-redis-backed cache idiom,
// exponential-backoff in processor.go) generalize into internal/cache and
// internal/retry.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nexus-talent/resume-match/internal/apperr"
	"github.com/nexus-talent/resume-match/internal/retry"
)

// SSOClient acquires and caches bearer tokens from a client-credentials
// issuer, per spec.md §6.3.
type SSOClient struct {
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// NewSSOClient builds a client for the given issuer and credentials.
func NewSSOClient(tokenURL, clientID, clientSecret string) *SSOClient {
	return &SSOClient{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns a cached bearer token, refreshing it with a 60s safety
// margin before expiry, per spec.md §6.3. Outbound calls are retried under
// the §6.3 policy (base 1s, ×2, cap 60s, 3 attempts).
func (c *SSOClient) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && time.Now().Before(c.expiresAt) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	var fetched tokenResponse
	err := retry.Do(ctx, retry.Default, retry.AlwaysRetryable, func(ctx context.Context) error {
		resp, err := c.fetchToken(ctx)
		if err != nil {
			return err
		}
		fetched = resp
		return nil
	})
	if err != nil {
		return "", apperr.Upstream("failed to acquire SSO token", err)
	}

	c.mu.Lock()
	c.token = fetched.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(fetched.ExpiresIn)*time.Second - 60*time.Second)
	token := c.token
	c.mu.Unlock()

	return token, nil
}

func (c *SSOClient) fetchToken(ctx context.Context) (tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResponse{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tokenResponse{}, fmt.Errorf("token issuer returned status %d", resp.StatusCode)
	}

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return tokenResponse{}, fmt.Errorf("parse token response: %w", err)
	}
	if parsed.AccessToken == "" {
		return tokenResponse{}, fmt.Errorf("token response carried no access_token")
	}
	return parsed, nil
}
