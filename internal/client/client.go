// package client talks to a running catalog server over HTTP
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/crate/internal/activity"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

const (
	DefaultBaseURL  = "http://127.0.0.1:3030"
	DefaultResource = "entity"
	clientHeader    = "X-Client-ID"
)

// Client performs catalog operations against a server and maps error statuses back onto
// the shared sentinel errors.
type Client struct {
	baseURL    string
	resource   string
	clientID   string
	httpClient *http.Client
}

// ClientOpts contains configuration options for creating a [Client].
type ClientOpts struct {
	BaseURL    string
	Resource   string
	ClientID   string // Sent as X-Client-ID so the server records activity
	HTTPClient *http.Client
}

// NewClient creates a new [Client], filling unset options with defaults.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Resource == "" {
		opts.Resource = DefaultResource
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		resource:   strings.Trim(opts.Resource, "/"),
		clientID:   opts.ClientID,
		httpClient: opts.HTTPClient,
	}
}

// FromConfig creates a [Client] from the client and server sections of cfg.
func FromConfig(cfg *shared.Config, httpClient *http.Client) *Client {
	return NewClient(ClientOpts{
		BaseURL:    cfg.Client.ServerURL,
		Resource:   cfg.Server.Resource,
		ClientID:   cfg.Client.ClientID,
		HTTPClient: httpClient,
	})
}

// Health is the server's liveness report.
type Health struct {
	Status   string `json:"status"`
	Entities int    `json:"entities"`
}

func (c *Client) List(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := c.do(ctx, http.MethodGet, c.collection(), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Get(ctx context.Context, id string) (models.Item, error) {
	var item models.Item
	err := c.do(ctx, http.MethodGet, c.member(id), nil, &item)
	return item, err
}

// Create stores item on the server and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, item models.Item) (models.Item, error) {
	var stored models.Item
	err := c.do(ctx, http.MethodPost, c.collection(), item, &stored)
	return stored, err
}

// Replace upserts item under id.
func (c *Client) Replace(ctx context.Context, id string, item models.Item) error {
	return c.do(ctx, http.MethodPut, c.member(id), item, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.member(id), nil, nil)
}

// Activity returns the recent requests the server recorded for client, newest first.
func (c *Client) Activity(ctx context.Context, client string) ([]activity.Entry, error) {
	var entries []activity.Entry
	if err := c.do(ctx, http.MethodGet, "/activity/"+url.PathEscape(client), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var health Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) collection() string {
	return "/" + c.resource
}

func (c *Client) member(id string) string {
	return "/" + c.resource + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.clientID != "" {
		req.Header.Set(clientHeader, c.clientID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := statusError(method, path, resp.StatusCode, data); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// statusError maps a non-200 response to a sentinel error.
func statusError(method, path string, status int, body []byte) error {
	if status == http.StatusOK {
		return nil
	}

	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}

	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, method, path)
	case status == http.StatusBadRequest && strings.HasPrefix(msg, shared.ErrAlreadyAssigned.Error()):
		return fmt.Errorf("%w: %s", shared.ErrAlreadyAssigned, msg)
	case status == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", shared.ErrMalformedInput, msg)
	case status == http.StatusTooManyRequests, status >= 500:
		return fmt.Errorf("%w: %s %s returned %d", shared.ErrServiceUnavailable, method, path, status)
	default:
		return fmt.Errorf("%w: %s %s returned %d: %s", shared.ErrAPIRequest, method, path, status, msg)
	}
}
