package proposal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/kroget/internal/core/staple"
	"github.com/hay-kot/kroget/internal/core/validate"
)

func sampleProposal() Proposal {
	p := New(time.Date(2025, 3, 14, 9, 26, 53, 589, time.UTC), "01400943")
	p.Sources = []string{"Staples"}
	p.Items = []Item{
		{
			Name:     "milk",
			Quantity: 2,
			Modality: staple.ModalityPickup,
			UPC:      "000222",
			Source:   SourceSearch,
			Sources:  []string{"Staples"},
			Alternatives: []Alternative{
				{UPC: "000222", Description: "Whole Milk"},
				{UPC: "000333"},
			},
		},
		{
			Name:     "eggs",
			Quantity: 1,
			Modality: staple.ModalityDelivery,
			Source:   SourceSearch,
			Notes:    "search failed: 503",
		},
		{
			Name:     "bread",
			Quantity: 1,
			Modality: staple.ModalityPickup,
			UPC:      "000444",
			Source:   SourcePreferred,
		},
	}
	return p
}

func TestProposal_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proposal.json")
	want := sampleProposal()

	require.NoError(t, want.Save(path))

	got, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProposal_FileShape(t *testing.T) {
	data, err := json.Marshal(sampleProposal())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "1", raw["version"])
	assert.Equal(t, "2025-03-14T09:26:53Z", raw["created_at"])
	assert.Equal(t, "01400943", raw["location_id"])

	items := raw["items"].([]any)
	require.Len(t, items, 3)

	eggs := items[1].(map[string]any)
	assert.Nil(t, eggs["upc"])
	assert.Equal(t, "search failed: 503", eggs["notes"])
	assert.Equal(t, []any{}, eggs["alternatives"])
	assert.Equal(t, []any{}, eggs["sources"])

	milk := items[0].(map[string]any)
	alts := milk["alternatives"].([]any)
	assert.Nil(t, alts[1].(map[string]any)["description"])
}

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	content := `{"version":"1","created_at":"2025-01-02T03:04:05Z","items":[{"name":"milk","quantity":1,"modality":"PICKUP"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)

	assert.Empty(t, p.LocationID)
	require.Len(t, p.Items, 1)
	assert.False(t, p.Items[0].Resolved())
	assert.Empty(t, p.Items[0].Alternatives)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), p.CreatedAt)
}

func TestLoad_NormalizesModality(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	content := `{"version":"1","created_at":"2025-01-02T03:04:05Z","items":[` +
		`{"name":"milk","quantity":1,"modality":" pickup"},{"name":"eggs","quantity":1,"modality":"drone"}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, staple.ModalityPickup, p.Items[0].Modality)

	err = p.Validate()
	require.ErrorIs(t, err, validate.ErrValidation)
	assert.Contains(t, err.Error(), "items[1].modality")
	assert.NotContains(t, err.Error(), "items[0].modality")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version":"1","created_at":"yesterday"}`), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}

func TestProposal_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Proposal)
		wantErr string
	}{
		{name: "valid", mutate: func(*Proposal) {}},
		{name: "version", mutate: func(p *Proposal) { p.Version = "2" }, wantErr: "version"},
		{name: "preferred without upc", mutate: func(p *Proposal) { p.Items[2].UPC = "" }, wantErr: "items[2].upc"},
		{name: "quantity", mutate: func(p *Proposal) { p.Items[0].Quantity = 0 }, wantErr: "items[0].quantity"},
		{name: "modality", mutate: func(p *Proposal) { p.Items[1].Modality = "drone" }, wantErr: "items[1].modality"},
		{name: "missing modality", mutate: func(p *Proposal) { p.Items[0].Modality = "" }, wantErr: "items[0].modality"},
		{
			name: "too many alternatives",
			mutate: func(p *Proposal) {
				p.Items[0].Alternatives = append(p.Items[0].Alternatives, Alternative{UPC: "1"}, Alternative{UPC: "2"})
			},
			wantErr: "items[0].alternatives",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := sampleProposal()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, validate.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProposal_RemoveItem(t *testing.T) {
	p := sampleProposal()

	require.NoError(t, p.RemoveItem(1))
	require.Len(t, p.Items, 2)
	assert.Equal(t, "milk", p.Items[0].Name)
	assert.Equal(t, "bread", p.Items[1].Name)

	err := p.RemoveItem(5)
	assert.ErrorIs(t, err, validate.ErrValidation)
}

func TestProposal_Repin(t *testing.T) {
	p := sampleProposal()

	it, err := p.Repin(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "000333", it.UPC)
	assert.Equal(t, SourcePreferred, it.Source)
	assert.Equal(t, "000333", p.Items[0].UPC)

	_, err = p.Repin(1, 0)
	assert.ErrorIs(t, err, validate.ErrValidation, "eggs has no alternatives")

	_, err = p.Repin(-1, 0)
	assert.ErrorIs(t, err, validate.ErrValidation)
}

func TestProposal_Unresolved(t *testing.T) {
	unresolved := sampleProposal().Unresolved()
	require.Len(t, unresolved, 1)
	assert.Equal(t, "eggs", unresolved[0].Name)
}
