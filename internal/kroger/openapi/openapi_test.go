package openapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpec(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "kroger-products-openapi.json", `{"openapi":"3.0.3","paths":{"/v1/products":{"get":{}}}}`)
	writeSpec(t, dir, "kroger-cart-openapi.json", `{"openapi":"3.0.3","paths":{"/v1/cart/add":{"put":{"summary":"add"}}}}`)
	writeSpec(t, dir, "kroger-identity-openapi.json", `{"paths":`)

	results := Check(dir, Required)
	require.Len(t, results, 4)

	byFile := map[string]FileResult{}
	for _, r := range results {
		byFile[r.File] = r
	}

	assert.True(t, byFile["kroger-cart-openapi.json"].OK())

	products := byFile["kroger-products-openapi.json"]
	assert.False(t, products.OK())
	require.Len(t, products.Missing, 1)
	assert.Equal(t, "GET /v1/products/{id}", products.Missing[0].String())

	location := byFile["kroger-location-openapi.json"]
	require.ErrorIs(t, location.Err, ErrMissing)

	identity := byFile["kroger-identity-openapi.json"]
	require.Error(t, identity.Err)
	assert.Contains(t, identity.Err.Error(), "invalid document")
}

func TestCheck_MethodMismatch(t *testing.T) {
	dir := t.TempDir()
	writeSpec(t, dir, "cart.json", `{"paths":{"/v1/cart/add":{"post":{}}}}`)

	results := Check(dir, map[string][]Operation{
		"cart.json": {{Method: "PUT", Path: "/v1/cart/add"}},
	})

	require.Len(t, results, 1)
	require.Len(t, results[0].Missing, 1)
	assert.Equal(t, "PUT /v1/cart/add", results[0].Missing[0].String())
}

func TestCheck_SortedByFile(t *testing.T) {
	results := Check(t.TempDir(), Required)

	files := make([]string, 0, len(results))
	for _, r := range results {
		files = append(files, r.File)
	}
	assert.Equal(t, []string{
		"kroger-cart-openapi.json",
		"kroger-identity-openapi.json",
		"kroger-location-openapi.json",
		"kroger-products-openapi.json",
	}, files)
}
