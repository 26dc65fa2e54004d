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

	"github.com/rs/zerolog"
)

const defaultTimeout = 30 * time.Second

// Client is the HTTP client for the pantry backend. One instance is shared by
// every resource group; its decorators and handlers apply to all calls.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	decorators []RequestDecorator
	handlers   []ResponseHandler
	log        zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds every request, including reading the response body
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithRequestDecorators appends request decorators to the pipeline
func WithRequestDecorators(d ...RequestDecorator) Option {
	return func(c *Client) {
		c.decorators = append(c.decorators, d...)
	}
}

// WithResponseHandlers appends response handlers to the pipeline
func WithResponseHandlers(h ...ResponseHandler) Option {
	return func(c *Client) {
		c.handlers = append(c.handlers, h...)
	}
}

// New creates a new API client for the given base URL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured backend address
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) Ingredients() *IngredientsService {
	return &IngredientsService{c: c}
}

func (c *Client) ShoppingLists() *ShoppingListsService {
	return &ShoppingListsService{c: c}
}

func (c *Client) Recipes() *RecipesService {
	return &RecipesService{c: c}
}

func (c *Client) News() *NewsService {
	return &NewsService{c: c}
}

func (c *Client) Pages() *PagesService {
	return &PagesService{c: c}
}

func (c *Client) Admin() *AdminService {
	return &AdminService{c: c}
}

func (c *Client) Auth() *AuthService {
	return &AuthService{c: c}
}

// payload is an encoded request body
type payload struct {
	reader      io.Reader
	contentType string
}

func jsonPayload(v any) (*payload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return &payload{reader: bytes.NewReader(data), contentType: "application/json"}, nil
}

func formPayload(values url.Values) *payload {
	return &payload{
		reader:      strings.NewReader(values.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}
}

// Get performs a GET and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends a request with an optional JSON body and decodes a JSON response
// into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var p *payload
	if body != nil {
		var err error
		if p, err = jsonPayload(body); err != nil {
			return err
		}
	}
	return c.send(ctx, method, path, query, p, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, p *payload, out any) error {
	u := c.resolve(path, query)

	var reader io.Reader
	if p != nil {
		reader = p.reader
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if p != nil {
		req.Header.Set("Content-Type", p.contentType)
	}

	for _, decorate := range c.decorators {
		if err := decorate(req); err != nil {
			return fmt.Errorf("failed to prepare request: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return &transportError{op: "send request", err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Str("request_id", req.Header.Get(HeaderRequestID)).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	for _, handle := range c.handlers {
		if err := handle(resp); err != nil {
			return err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return newError(method, path, resp.StatusCode, data)
	}

	if out == nil {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isReadFailure(err) {
			return &transportError{op: "read response", err: err}
		}
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.baseURL
	// path arrives escaped, so escaped segments such as %2F survive the join
	raw := c.baseURL.EscapedPath() + path
	if unescaped, err := url.PathUnescape(raw); err == nil {
		u.Path, u.RawPath = unescaped, raw
	} else {
		u.Path, u.RawPath = raw, ""
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
