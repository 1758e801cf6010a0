package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logFields(t *testing.T, ctx context.Context) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(ContextHook{})
	logger.Info().Ctx(ctx).Msg("applied")

	fields := map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fields))
	return fields
}

func TestContextHook(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want map[string]string
	}{
		{
			name: "session and list",
			ctx:  WithList(WithSentSessionID(context.Background(), "3f2a"), "Weekly"),
			want: map[string]string{sentSessionField: "3f2a", listField: "Weekly"},
		},
		{
			name: "session only",
			ctx:  WithSentSessionID(context.Background(), "3f2a"),
			want: map[string]string{sentSessionField: "3f2a"},
		},
		{
			name: "list only",
			ctx:  WithList(context.Background(), "Pantry"),
			want: map[string]string{listField: "Pantry"},
		},
		{
			name: "empty context",
			ctx:  context.Background(),
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := logFields(t, tt.ctx)

			for _, key := range []string{sentSessionField, listField} {
				want, ok := tt.want[key]
				if !ok {
					assert.NotContains(t, fields, key)
					continue
				}
				assert.Equal(t, want, fields[key])
			}
		})
	}
}

func TestContextHook_EmptyValuesOmitted(t *testing.T) {
	ctx := WithList(WithSentSessionID(context.Background(), ""), "")
	fields := logFields(t, ctx)

	assert.NotContains(t, fields, sentSessionField)
	assert.NotContains(t, fields, listField)
}
