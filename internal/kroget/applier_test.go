package kroget

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kroget/internal/core/proposal"
	"github.com/hay-kot/kroget/internal/core/staple"
)

func item(name, upc string) proposal.Item {
	return proposal.Item{Name: name, Quantity: 1, Modality: staple.ModalityPickup, UPC: upc, Source: proposal.SourceSearch}
}

func TestApply_TwoItems(t *testing.T) {
	cart := &fakeCart{}
	items := []proposal.Item{item("milk", "000111"), item("eggs", "000222")}

	out := NewApplier(cart, zerolog.Nop()).Apply(context.Background(), items, false)

	assert.Equal(t, 2, out.Success)
	assert.Equal(t, 0, out.Failed)
	assert.Empty(t, out.Errors)
	assert.True(t, out.OK())
	require.Len(t, out.Results, 2)
	assert.Equal(t, "milk", out.Results[0].Item.Name)
	assert.Equal(t, proposal.StatusSuccess, out.Results[0].Status)
	assert.Equal(t, "eggs", out.Results[1].Item.Name)
	assert.Equal(t, proposal.StatusSuccess, out.Results[1].Status)

	assert.Equal(t, []cartCall{
		{upc: "000111", quantity: 1, modality: "PICKUP"},
		{upc: "000222", quantity: 1, modality: "PICKUP"},
	}, cart.calls)
}

func TestApply_FailuresDoNotStopLaterItems(t *testing.T) {
	cart := &fakeCart{fail: map[string]error{"000333": errors.New("409 conflict")}}
	items := []proposal.Item{
		item("milk", "000111"),
		item("saffron", ""),
		item("bread", "000333"),
		item("eggs", "000222"),
	}

	out := NewApplier(cart, zerolog.Nop()).Apply(context.Background(), items, false)

	assert.Equal(t, 2, out.Success)
	assert.Equal(t, 2, out.Failed)
	assert.Equal(t, len(items), out.Success+out.Failed)
	assert.Len(t, out.Results, len(items))
	assert.False(t, out.Halted)
	assert.Equal(t, []string{
		"Missing UPC for saffron",
		"Failed to add bread: 409 conflict",
	}, out.Errors)

	assert.Equal(t, "missing upc", out.Results[1].Error)
	assert.Equal(t, proposal.StatusFailed, out.Results[1].Status)
	assert.Equal(t, "409 conflict", out.Results[2].Error)
	assert.Len(t, cart.calls, 3, "missing upc never reaches the cart")
}

func TestApply_StopOnError(t *testing.T) {
	cart := &fakeCart{fail: map[string]error{"000111": errors.New("500")}}
	items := []proposal.Item{item("milk", "000111"), item("eggs", "000222")}

	out := NewApplier(cart, zerolog.Nop()).Apply(context.Background(), items, true)

	assert.True(t, out.Halted)
	require.Len(t, out.Results, 1)
	assert.Equal(t, 0, out.Success)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, out.Success+out.Failed, len(out.Results))
	assert.Len(t, cart.calls, 1)
}

func TestApply_StopOnErrorMissingUPC(t *testing.T) {
	cart := &fakeCart{}
	items := []proposal.Item{item("milk", ""), item("eggs", "0002")}

	out := NewApplier(cart, zerolog.Nop()).Apply(context.Background(), items, true)

	assert.True(t, out.Halted)
	require.Len(t, out.Results, 1)
	assert.Equal(t, 0, out.Success)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, []string{"Missing UPC for milk"}, out.Errors)
	assert.Empty(t, cart.calls)
}

func TestApply_StopOnErrorLastItem(t *testing.T) {
	cart := &fakeCart{fail: map[string]error{"000222": errors.New("500")}}
	items := []proposal.Item{item("milk", "000111"), item("eggs", "000222")}

	out := NewApplier(cart, zerolog.Nop()).Apply(context.Background(), items, true)

	assert.False(t, out.Halted)
	assert.Len(t, out.Results, 2)
	assert.Equal(t, 1, out.Success)
	assert.Equal(t, 1, out.Failed)
}

func TestApply_Empty(t *testing.T) {
	out := NewApplier(&fakeCart{}, zerolog.Nop()).Apply(context.Background(), nil, false)

	assert.Zero(t, out.Success)
	assert.Zero(t, out.Failed)
	assert.NotNil(t, out.Errors)
	assert.Empty(t, out.Results)
}
