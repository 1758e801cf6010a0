// Package kroger is a small client for the Kroger public API.
package kroger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout is used when Options.Timeout is zero.
const DefaultTimeout = 20 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client calls the Kroger API. Every call takes the access token to use, so a
// single client serves both application and user tokens.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a client for opts.BaseURL.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		log:     logger,
	}
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchProducts runs a product search at a location.
func (c *Client) SearchProducts(ctx context.Context, token, term, locationID string, limit int) ([]Product, error) {
	q := url.Values{}
	q.Set("filter.term", term)
	if locationID != "" {
		q.Set("filter.locationId", locationID)
	}
	if limit > 0 {
		q.Set("filter.limit", strconv.Itoa(limit))
	}

	var resp struct {
		Data []Product `json:"data"`
	}
	if err := c.do(ctx, "search products", http.MethodGet, "/v1/products", q, token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetProduct returns the raw product detail payload.
func (c *Client) GetProduct(ctx context.Context, token, productID, locationID string) (json.RawMessage, error) {
	q := url.Values{}
	if locationID != "" {
		q.Set("filter.locationId", locationID)
	}

	var raw json.RawMessage
	path := "/v1/products/" + url.PathEscape(productID)
	if err := c.do(ctx, "get product", http.MethodGet, path, q, token, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// CartItem is one line of a cart add request.
type CartItem struct {
	UPC      string `json:"upc"`
	Quantity int    `json:"quantity"`
	Modality string `json:"modality"`
}

// AddToCart adds an item to the user's cart. It requires a user token with
// the cart.basic:write scope. The response body, often empty, is returned.
func (c *Client) AddToCart(ctx context.Context, token, upc string, quantity int, modality string) (json.RawMessage, error) {
	body := struct {
		Items []CartItem `json:"items"`
	}{
		Items: []CartItem{{UPC: upc, Quantity: quantity, Modality: modality}},
	}

	var raw json.RawMessage
	if err := c.do(ctx, "add to cart", http.MethodPut, "/v1/cart/add", nil, token, body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// SearchLocations finds stores near a zip code.
func (c *Client) SearchLocations(ctx context.Context, token string, query LocationQuery) ([]Location, error) {
	var resp struct {
		Data []Location `json:"data"`
	}
	if err := c.do(ctx, "search locations", http.MethodGet, "/v1/locations", query.values(), token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetLocation returns a single store.
func (c *Client) GetLocation(ctx context.Context, token, locationID string) (Location, error) {
	var resp struct {
		Data Location `json:"data"`
	}
	path := "/v1/locations/" + url.PathEscape(locationID)
	if err := c.do(ctx, "get location", http.MethodGet, path, nil, token, nil, &resp); err != nil {
		return Location{}, err
	}
	return resp.Data, nil
}

// Profile returns the profile of the user that owns token.
func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	var resp struct {
		Data Profile `json:"data"`
	}
	if err := c.do(ctx, "get profile", http.MethodGet, "/v1/identity/profile", nil, token, nil, &resp); err != nil {
		return Profile{}, err
	}
	return resp.Data, nil
}

// do sends a request and decodes a JSON response into out. out may be a
// *json.RawMessage to keep the body undecoded.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, token string, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &APIError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.log.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("kroger request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out == nil {
		return nil
	}

	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(data), Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
