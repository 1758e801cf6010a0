package kroget

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/kroger"
)

func TestResolver_EmbeddedUPCs(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.products["milk"] = []kroger.Product{
		product("1", "Whole Milk", "0001", "0002"),
		product("2", "2% Milk", "0003"),
		product("3", "Skim Milk", "0004"),
		product("4", "Oat Milk", "0005"),
	}

	res, err := NewResolver(catalog, zerolog.Nop()).Resolve(context.Background(), "milk", "01400943")
	require.NoError(t, err)

	require.Len(t, catalog.searches, 1)
	assert.Equal(t, searchCall{term: "milk", locationID: "01400943", limit: SearchLimit}, catalog.searches[0])
	assert.Empty(t, catalog.detailCalls)

	assert.Equal(t, "0001", res.ChosenUPC)
	require.Len(t, res.Candidates, CandidateLimit)
	assert.Equal(t, []string{"0001", "0002"}, res.Candidates[0].UPCs)
	assert.Equal(t, []proposal.Alternative{
		{UPC: "0001", Description: "Whole Milk"},
		{UPC: "0003", Description: "2% Milk"},
		{UPC: "0004", Description: "Skim Milk"},
	}, res.Alternatives)
}

func TestResolver_DetailFallback(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.products["eggs"] = []kroger.Product{
		product("1", "Large Eggs"),
		product("2", "Brown Eggs"),
		product("3", "Egg Whites", "0009"),
	}
	catalog.details["1"] = `{"data":{"productId":"1","items":[{"itemId":"a","upc":"0007"},{"upc":"0008"}]}}`
	catalog.detailErr["2"] = errors.New("boom")

	res, err := NewResolver(catalog, zerolog.Nop()).Resolve(context.Background(), "eggs", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, catalog.detailCalls)
	assert.Equal(t, "0007", res.ChosenUPC)

	require.Len(t, res.Candidates, 3)
	assert.Empty(t, res.Candidates[1].UPCs)
	assert.Equal(t, []proposal.Alternative{
		{UPC: "0007", Description: "Large Eggs"},
		{UPC: "0009", Description: "Egg Whites"},
	}, res.Alternatives)
}

func TestResolver_NoResults(t *testing.T) {
	catalog := newFakeCatalog()

	res, err := NewResolver(catalog, zerolog.Nop()).Resolve(context.Background(), "unobtainium", "")
	require.NoError(t, err)
	assert.Empty(t, res.ChosenUPC)
	assert.Empty(t, res.Candidates)
	assert.Empty(t, res.Alternatives)
}

func TestResolver_TopResultWithoutUPC(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.products["bread"] = []kroger.Product{
		product("1", "Bread"),
		product("2", "Rye", "0002"),
	}

	res, err := NewResolver(catalog, zerolog.Nop()).Resolve(context.Background(), "bread", "")
	require.NoError(t, err)

	assert.Empty(t, res.ChosenUPC, "only the top result is chosen from")
	assert.Equal(t, []proposal.Alternative{{UPC: "0002", Description: "Rye"}}, res.Alternatives)
}

func TestResolver_SearchErrorPropagates(t *testing.T) {
	catalog := newFakeCatalog()
	apiErr := &kroger.APIError{Op: "search products", StatusCode: 500, Body: "oops"}
	catalog.searchErr["milk"] = apiErr

	_, err := NewResolver(catalog, zerolog.Nop()).Resolve(context.Background(), "milk", "")
	require.Error(t, err)

	var target *kroger.APIError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, 500, target.StatusCode)
	assert.Len(t, catalog.searches, 1, "no retry")
}
