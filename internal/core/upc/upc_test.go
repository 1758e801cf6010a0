package upc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{
			name:    "product detail",
			payload: `{"data":{"productId":"123","items":[{"itemId":"a","upc":"000222"},{"upc":"000333"}]}}`,
			want:    []string{"000222", "000333"},
		},
		{
			name:    "document order and duplicates",
			payload: `{"data":[{"items":[{"upc":"b"},{"upc":"a"}]},{"items":[{"upc":"b"},{"upc":"c"}]}]}`,
			want:    []string{"b", "a", "c"},
		},
		{
			name:    "non string upc ignored",
			payload: `{"items":[{"upc":12345},{"upc":null},{"upc":{"nested":"x"}},{"upc":"ok"}]}`,
			want:    []string{"ok"},
		},
		{
			name:    "upc outside items ignored",
			payload: `{"upc":"top","data":{"upc":"inner"}}`,
			want:    nil,
		},
		{
			name:    "nested items within items",
			payload: `{"items":[{"upc":"1","items":[{"upc":"2"}]}]}`,
			want:    []string{"1", "2"},
		},
		{
			name:    "empty",
			payload: ``,
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Malformed(t *testing.T) {
	_, err := Extract([]byte(`{"items":[{"upc":"1"}`))
	require.Error(t, err)
}

func TestFromItems(t *testing.T) {
	items := []map[string]any{
		{"upc": "000111"},
		{"itemId": "x"},
		{"upc": 42},
		{"upc": "000111"},
		{"upc": "000222"},
	}
	assert.Equal(t, []string{"000111", "000222"}, FromItems(items))
	assert.Nil(t, FromItems(nil))
}

func TestPick(t *testing.T) {
	assert.Equal(t, "", Pick(nil))
	assert.Equal(t, "a", Pick([]string{"a", "b"}))
}
