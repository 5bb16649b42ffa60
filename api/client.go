package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// TokenPair is the body of a successful login or refresh response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Client calls the PlannerHub service. A zero http.Client with a default
// timeout is used unless one is supplied.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for the service at baseURL. httpClient may be
// nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Login exchanges credentials for a token pair. The endpoint takes
// form-encoded username/password (OAuth2 password grant shape).
func (c *Client) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	form := url.Values{
		"username": {identifier},
		"password": {password},
	}
	resp, err := c.post(ctx, "/auth/login", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if err := statusError(resp); err != nil {
		return nil, err
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("%w: malformed token response: %v", ErrTransport, err)
	}
	if pair.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access token", ErrTransport)
	}
	return &pair, nil
}

// Register creates an account. The service answers success-shaped without a
// session; verification happens out of band.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	return c.postJSON(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// Logout asks the service to revoke a refresh token. The response body is
// part of the contract only in that it is ignored.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.postJSON(ctx, "/auth/logout", map[string]string{
		"refresh_token": refreshToken,
	})
}

// ForgotPassword requests a reset link. The service always answers
// success-shaped so callers cannot probe which accounts exist.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.postJSON(ctx, "/auth/forgot-password", map[string]string{
		"email": email,
	})
}

// ResetPassword redeems a reset token for a new password.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.postJSON(ctx, "/auth/reset-password", map[string]string{
		"token":    token,
		"password": password,
	})
}

// Refresh rotates a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, err
	}
	resp, err := c.post(ctx, "/auth/refresh", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if err := statusError(resp); err != nil {
		return nil, err
	}

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return nil, fmt.Errorf("%w: malformed token response: %v", ErrTransport, err)
	}
	return &pair, nil
}

// Tasks fetches the protected task list with a bearer access token and
// returns the raw JSON body. A 401 means the token is no longer honored.
func (c *Client) Tasks(ctx context.Context, accessToken string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/tasks/", nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer drain(resp)

	if err := statusError(resp); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return body, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := c.post(ctx, path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer drain(resp)
	return statusError(resp)
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, body, contentType)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// Correlates client-side events with service logs.
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	return &StatusError{StatusCode: resp.StatusCode, Detail: body.Detail}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
