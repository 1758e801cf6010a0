package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// watchDir starts a watcher on a fresh directory and subscribes to pattern.
func watchDir(t *testing.T, pattern string) (string, <-chan FileEvent) {
	t.Helper()

	dir := t.TempDir()
	fw, err := NewFileWatcher(dir, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	events, err := fw.Watch(ctx, pattern)
	require.NoError(t, err)
	return dir, events
}

// drain collects event names until the window passes without a close.
func drain(events <-chan FileEvent, window time.Duration) []string {
	var names []string
	deadline := time.After(window)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return names
			}
			names = append(names, ev.Name)
		case <-deadline:
			return names
		}
	}
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`{}`), 0o600))
}

func TestFileWatcher_Watch(t *testing.T) {
	t.Parallel()
	dir, events := watchDir(t, "lists.json")

	touch(t, dir, "lists.json")

	select {
	case ev := <-events:
		assert.Equal(t, "lists.json", ev.Name)
		assert.Equal(t, filepath.Join(dir, "lists.json"), ev.Path)
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(5 * time.Second):
		t.Fatal("no event for lists.json")
	}
}

func TestFileWatcher_ListStoreSave(t *testing.T) {
	t.Parallel()
	dir, events := watchDir(t, "lists.json")

	store := NewListStore(filepath.Join(dir, "lists.json"), "")
	require.NoError(t, store.Create(context.Background(), "Weekly"))

	assert.Contains(t, drain(events, time.Second), "lists.json")
}

func TestFileWatcher_Filtering(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		write   []string
		want    []string
	}{
		{
			name:    "brace pattern",
			pattern: "{lists,settings}.json",
			write:   []string{"settings.json", "sent_items.json"},
			want:    []string{"settings.json"},
		},
		{
			name:    "temp and log files ignored",
			pattern: "",
			write:   []string{"lists.json.tmp", "kroget.log", "tokens.json"},
			want:    []string{"tokens.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir, events := watchDir(t, tt.pattern)

			for _, name := range tt.write {
				touch(t, dir, name)
			}

			assert.Equal(t, tt.want, drain(events, 300*time.Millisecond))
		})
	}
}

func TestFileWatcher_Debounce(t *testing.T) {
	t.Parallel()
	dir, events := watchDir(t, "*.json")

	for range 5 {
		touch(t, dir, "lists.json")
		time.Sleep(10 * time.Millisecond)
	}

	assert.Equal(t, []string{"lists.json"}, drain(events, 300*time.Millisecond))
}

func TestFileWatcher_BadPattern(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	defer fw.Close() //nolint:errcheck

	_, err = fw.Watch(context.Background(), "[")
	require.Error(t, err)
}

func TestFileWatcher_CancelClosesChannel(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	defer fw.Close() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	events, err := fw.Watch(ctx, "")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel still open after cancel")
	}
}

// Not parallel: goleak inspects every goroutine in the process.
func TestFileWatcher_CloseNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fw, err := NewFileWatcher(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	events, err := fw.Watch(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	_, ok := <-events
	assert.False(t, ok)
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		pattern, name string
		want          bool
	}{
		{"", "anything.json", true},
		{"*", "lists.json", true},
		{"*.json", "lists.json", true},
		{"lists.json", "lists.json", true},
		{"lists.json", "sent_items.json", false},
		{"{lists,settings}.json", "settings.json", true},
		{"{lists,settings}.json", "tokens.json", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesPattern(tt.pattern, tt.name), "%q vs %q", tt.pattern, tt.name)
	}
}
