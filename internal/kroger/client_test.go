package kroger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL + "/", HTTPClient: srv.Client()}, zerolog.Nop())
}

func TestSearchProducts(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = io.WriteString(w, `{"data":[
			{"productId":"123","description":"Whole Milk","brand":"Kroger","items":[{"upc":"000222","price":{"regular":3.49}}]},
			{"productId":"456","description":"2% Milk","items":[]}
		]}`)
	})

	products, err := c.SearchProducts(context.Background(), "tok", "milk", "01400943", 5)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/v1/products", got.URL.Path)
	assert.Equal(t, "milk", got.URL.Query().Get("filter.term"))
	assert.Equal(t, "01400943", got.URL.Query().Get("filter.locationId"))
	assert.Equal(t, "5", got.URL.Query().Get("filter.limit"))
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))

	require.Len(t, products, 2)
	assert.Equal(t, "123", products[0].ProductID)
	assert.Equal(t, []string{"000222"}, products[0].EmbeddedUPCs())
	price, ok := products[0].Price()
	assert.True(t, ok)
	assert.InDelta(t, 3.49, price, 0.001)
	assert.Empty(t, products[1].EmbeddedUPCs())
}

func TestGetProduct_Raw(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/products/456", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":{"items":[{"upc":"000333"}]}}`)
	})

	raw, err := c.GetProduct(context.Background(), "tok", "456", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"items":[{"upc":"000333"}]}}`, string(raw))
}

func TestAddToCart(t *testing.T) {
	var body map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/v1/cart/add", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	})

	raw, err := c.AddToCart(context.Background(), "user", "000111", 2, "PICKUP")
	require.NoError(t, err)
	assert.Empty(t, raw)

	assert.Equal(t, map[string]any{
		"items": []any{map[string]any{"upc": "000111", "quantity": float64(2), "modality": "PICKUP"}},
	}, body)
}

func TestAPIError_Status(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"invalid_token"}`)
	})

	err := c.WithToken("bad").AddToCart(context.Background(), "000111", 1, "PICKUP")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, `{"error":"invalid_token"}`, apiErr.Body)
	assert.Equal(t, "add to cart", apiErr.Op)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "status 401")
}

func TestAPIError_Transport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(Options{BaseURL: srv.URL}, zerolog.Nop())
	_, err := c.SearchProducts(context.Background(), "tok", "milk", "", 5)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Error(t, apiErr.Unwrap())
}

func TestAPIError_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":`)
	})

	_, err := c.SearchProducts(context.Background(), "tok", "milk", "", 5)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, err.Error(), "decode response")
}

func TestSearchLocations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/locations", r.URL.Path)
		assert.Equal(t, "45202", r.URL.Query().Get("filter.zipCode.near"))
		assert.Equal(t, "10", r.URL.Query().Get("filter.radiusInMiles"))
		_, _ = io.WriteString(w, `{"data":[{"locationId":"01400943","chain":"KROGER","name":"Kroger Downtown","address":{"addressLine1":"1 Main St","city":"Cincinnati","state":"OH","zipCode":"45202"}}]}`)
	})

	locs, err := c.SearchLocations(context.Background(), "tok", LocationQuery{ZipCode: "45202", RadiusInMiles: 10})
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "01400943", locs[0].LocationID)
	assert.Equal(t, "1 Main St, Cincinnati, OH 45202", locs[0].Address.String())
}

func TestGetLocationAndProfile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/locations/01400943":
			_, _ = io.WriteString(w, `{"data":{"locationId":"01400943","name":"Downtown"}}`)
		case "/v1/identity/profile":
			_, _ = io.WriteString(w, `{"data":{"id":"user-1"}}`)
		default:
			http.NotFound(w, r)
		}
	})

	loc, err := c.GetLocation(context.Background(), "tok", "01400943")
	require.NoError(t, err)
	assert.Equal(t, "Downtown", loc.Name)

	profile, err := c.Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
}
