// SPDX-License-Identifier: MIT

// Package client talks to the admin JSON API. URLs come from the shared
// routing table and responses are mapped onto a small error taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/steelhall/steelhall/internal/auth"
	"github.com/steelhall/steelhall/internal/middleware"
	"github.com/steelhall/steelhall/internal/models"
	"github.com/steelhall/steelhall/internal/routes"
)

// Client is safe for concurrent use.
type Client struct {
	base   *url.URL
	http   *http.Client
	routes *routes.Table

	mu sync.Mutex
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the transport. A cookie jar is added if missing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		jar := c.http.Jar
		c.http = hc
		if c.http.Jar == nil {
			c.http.Jar = jar
		}
	}
}

// New creates a client for the server at baseURL
func New(baseURL string, table *routes.Table, opts ...Option) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Jar: jar, Timeout: 15 * time.Second},
		routes: table,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session returns the current session token, for persisting between runs
func (c *Client) Session() string {
	return c.cookie(auth.SessionCookie)
}

// SetSession restores a token saved with Session
func (c *Client) SetSession(token string) {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: auth.SessionCookie, Value: token, Path: "/"}})
}

func (c *Client) cookie(name string) string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// csrfToken returns the anti-forgery token, fetching one first if needed
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token := c.cookie(middleware.CSRFCookieName); token != "" {
		return token, nil
	}
	if err := c.send(ctx, "health", nil, nil, nil); err != nil {
		return "", fmt.Errorf("failed to obtain csrf token: %w", err)
	}
	token := c.cookie(middleware.CSRFCookieName)
	if token == "" {
		return "", fmt.Errorf("server did not issue a csrf token")
	}
	return token, nil
}

// forgetCSRF drops the token so the next mutation fetches a fresh one
func (c *Client) forgetCSRF() {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: middleware.CSRFCookieName, Value: "", Path: "/", MaxAge: -1}})
}

// Do calls the named route. body is JSON-encoded when non-nil; out, when
// non-nil, receives the "data" member of the response.
func (c *Client) Do(ctx context.Context, route string, params map[string]string, body, out any) error {
	return c.send(ctx, route, params, body, out)
}

func (c *Client) send(ctx context.Context, route string, params map[string]string, body, out any) error {
	r, err := c.routes.Get(route)
	if err != nil {
		return err
	}
	path, err := c.routes.Path(route, params)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.base.ResolveReference(&url.URL{Path: path}).String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		token, err := c.csrfToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set(middleware.CSRFHeaderName, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	return c.decode(resp, out)
}

type errorBody struct {
	Message string             `json:"message"`
	Errors  models.FieldErrors `json:"errors"`
}

func (c *Client) decode(resp *http.Response, out any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent || len(data) == 0 {
			return nil
		}
		envelope := struct {
			Data json.RawMessage `json:"data"`
		}{}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if len(envelope.Data) == 0 {
			return fmt.Errorf("response has no data member")
		}
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
		return nil
	}

	var eb errorBody
	_ = json.Unmarshal(data, &eb)

	switch resp.StatusCode {
	case http.StatusUnprocessableEntity:
		if eb.Message == "" {
			eb.Message = "The given data was invalid."
		}
		if eb.Errors == nil {
			eb.Errors = models.FieldErrors{}
		}
		return &ValidationError{Message: eb.Message, Fields: eb.Errors}
	case middleware.StatusTokenExpired:
		c.forgetCSRF()
		return ErrAuthExpired
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return &StatusError{Code: resp.StatusCode, Message: eb.Message}
	}
}

// Login opens an admin session
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := c.send(ctx, "auth.login", nil, map[string]string{"email": email, "password": password}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout ends the admin session
func (c *Client) Logout(ctx context.Context) error {
	return c.send(ctx, "auth.logout", nil, nil, nil)
}

// List fetches every item of a resource
func List[T any](ctx context.Context, c *Client, resource string) ([]T, error) {
	items := make([]T, 0)
	if err := c.send(ctx, resource+".index", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches one item
func Get[T any](ctx context.Context, c *Client, resource string, id uint) (T, error) {
	var item T
	err := c.send(ctx, resource+".show", idParam(id), nil, &item)
	return item, err
}

// Create stores a new item and returns it with its server-assigned id
func Create[T any](ctx context.Context, c *Client, resource string, item T) (T, error) {
	var created T
	err := c.send(ctx, resource+".store", nil, item, &created)
	return created, err
}

// Update replaces an item and returns the stored version
func Update[T any](ctx context.Context, c *Client, resource string, id uint, item T) (T, error) {
	var updated T
	err := c.send(ctx, resource+".update", idParam(id), item, &updated)
	return updated, err
}

// Delete removes an item. Any error means the item was not deleted.
func Delete(ctx context.Context, c *Client, resource string, id uint) error {
	return c.send(ctx, resource+".destroy", idParam(id), nil, nil)
}

// Settings fetches the site settings
func (c *Client) Settings(ctx context.Context) (models.SiteSettings, error) {
	var s models.SiteSettings
	err := c.send(ctx, "settings.show", nil, nil, &s)
	return s, err
}

// SaveSettings stores the site settings
func (c *Client) SaveSettings(ctx context.Context, s models.SiteSettings) (models.SiteSettings, error) {
	var saved models.SiteSettings
	err := c.send(ctx, "settings.update", nil, s, &saved)
	return saved, err
}

// Listings fetches the public carousel items and rotation interval
func (c *Client) Listings(ctx context.Context) ([]models.CarouselItem, time.Duration, error) {
	r, err := c.routes.Get("listings.index")
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, c.base.ResolveReference(&url.URL{Path: r.Path}).String(), nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, c.decode(resp, nil)
	}
	var payload struct {
		Data       []models.CarouselItem `json:"data"`
		IntervalMS int                   `json:"interval_ms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("failed to decode listings: %w", err)
	}
	return payload.Data, time.Duration(payload.IntervalMS) * time.Millisecond, nil
}

func idParam(id uint) map[string]string {
	return map[string]string{"id": strconv.FormatUint(uint64(id), 10)}
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
