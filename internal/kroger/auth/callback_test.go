package auth

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackServer_ReceivesCode(t *testing.T) {
	cs, err := ListenForCallback(0, "/callback", "expected-state")
	require.NoError(t, err)

	go func() {
		resp, err := http.Get(cs.URL() + "?code=abc&state=expected-state")
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	code, err := cs.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", code)
}

func TestCallbackServer_StateMismatch(t *testing.T) {
	cs, err := ListenForCallback(0, "/callback", "expected-state")
	require.NoError(t, err)

	go func() {
		resp, err := http.Get(cs.URL() + "?code=abc&state=other")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = cs.Wait(ctx)
	require.ErrorIs(t, err, ErrAuthentication)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestCallbackServer_Timeout(t *testing.T) {
	cs, err := ListenForCallback(0, "/callback", "s")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = cs.Wait(ctx)
	require.ErrorIs(t, err, ErrAuthentication)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewState(t *testing.T) {
	assert.NotEqual(t, NewState(), NewState())
}
