// Package referralclient talks to a referral service over HTTP: it signs in,
// validates sessions and downloads the caller's nested referral payload.
package referralclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/vanshika/referralnet/internal/config"
	"github.com/vanshika/referralnet/internal/domain"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = time.Minute
	maxErrorBody    = 4 << 10
	userAgent       = "referralnet-client/1"
)

// Client is a referral service HTTP client. It is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

// New builds a Client for cfg.BaseURL. Successful token validations are
// cached for validationTTL.
func New(cfg config.ReferralConfig, validationTTL time.Duration) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if validationTTL <= 0 {
		validationTTL = defaultCacheTTL
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New(validationTTL, 2*validationTTL),
	}
}

// WithHTTPClient replaces the underlying http.Client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.client = hc
	}
	return c
}

// FetchReferrals downloads the caller's downline from GET /referrals.
func (c *Client) FetchReferrals(ctx context.Context, token string) ([]domain.RawNode, error) {
	if token == "" {
		return nil, errors.WithMessage(domain.ErrUnauthenticated, "no session token")
	}
	var nodes []domain.RawNode
	if err := c.do(ctx, http.MethodGet, "/referrals", token, nil, &nodes); err != nil {
		return nil, errors.WithMessage(err, "fetch referrals")
	}
	if nodes == nil {
		nodes = []domain.RawNode{}
	}
	return nodes, nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Session, error) {
	body := map[string]string{"email": email, "password": password}
	var session domain.Session
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &session); err != nil {
		return domain.Session{}, errors.WithMessage(err, "login")
	}
	return session, nil
}

// Register creates an account, optionally under the owner of referralCode.
func (c *Client) Register(ctx context.Context, name, email, password, referralCode string) (domain.Session, error) {
	body := map[string]string{
		"name":         name,
		"email":        email,
		"password":     password,
		"referralCode": referralCode,
	}
	var session domain.Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", body, &session); err != nil {
		return domain.Session{}, errors.WithMessage(err, "register")
	}
	return session, nil
}

// Profile is the GET /auth/me payload.
type Profile struct {
	User         domain.ReferralUser `json:"user"`
	ReferralCode string              `json:"referralCode"`
}

// ValidateToken asks the service who token belongs to. Accepted tokens are
// cached; rejected ones are not.
func (c *Client) ValidateToken(ctx context.Context, token string) (Profile, error) {
	if token == "" {
		return Profile{}, errors.WithMessage(domain.ErrUnauthenticated, "no session token")
	}
	if cached, ok := c.cache.Get(token); ok {
		return cached.(Profile), nil
	}

	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &profile); err != nil {
		return Profile{}, errors.WithMessage(err, "validate token")
	}
	c.cache.SetDefault(token, profile)
	return profile, nil
}

// Forget drops a cached validation, e.g. on logout.
func (c *Client) Forget(token string) {
	c.cache.Delete(token)
}

// Dashboard loads the caller's income overview.
func (c *Client) Dashboard(ctx context.Context, token string) (domain.Dashboard, error) {
	var dash domain.Dashboard
	if err := c.do(ctx, http.MethodGet, "/dashboard", token, nil, &dash); err != nil {
		return domain.Dashboard{}, errors.WithMessage(err, "dashboard")
	}
	return dash, nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errors.WithMessagef(domain.ErrUnauthenticated, "%s %s: %s", method, path, readError(resp.Body, resp.Status))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Code: resp.StatusCode, Message: readError(resp.Body, resp.Status)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}

func readError(r io.Reader, fallback string) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload errorResponse
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return msg
	}
	return fallback
}

// StatusError is returned for non-2xx responses other than 401 and 403.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return http.StatusText(e.Code) + ": " + e.Message
}
