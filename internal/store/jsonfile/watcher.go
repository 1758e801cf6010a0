package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 100
)

// FileEvent reports that a data file changed on disk.
type FileEvent struct {
	Name      string // base file name, e.g. lists.json
	Path      string
	Timestamp time.Time
}

// FileWatcher watches the data directory for JSON files written by other
// kroget processes.
type FileWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	log     zerolog.Logger

	mu          sync.Mutex
	subscribers map[string][]chan FileEvent // pattern -> channels
	debounce    map[string]*time.Timer      // file name -> debounce timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFileWatcher creates a watcher for dir.
// The directory is created if it doesn't exist.
func NewFileWatcher(dir string, logger zerolog.Logger) (*FileWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FileWatcher{
		dir:         dir,
		watcher:     watcher,
		log:         logger,
		subscribers: make(map[string][]chan FileEvent),
		debounce:    make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}

	fw.wg.Add(1)
	go fw.run()

	return fw, nil
}

// Watch returns a channel that receives events when files whose base name
// matches the glob pattern change. The channel is closed when ctx is done or
// the watcher is closed.
func (fw *FileWatcher) Watch(ctx context.Context, pattern string) (<-chan FileEvent, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	ch := make(chan FileEvent, eventBufferSize)

	fw.mu.Lock()
	fw.subscribers[pattern] = append(fw.subscribers[pattern], ch)
	fw.mu.Unlock()

	fw.wg.Add(1)
	go func() {
		defer fw.wg.Done()
		select {
		case <-ctx.Done():
			fw.unsubscribe(pattern, ch)
		case <-fw.ctx.Done():
			// Watcher is closing, channel will be closed by Close()
		}
	}()

	return ch, nil
}

// Close stops watching and closes all subscriber channels.
func (fw *FileWatcher) Close() error {
	fw.cancel()

	fw.mu.Lock()
	for _, timer := range fw.debounce {
		timer.Stop()
	}
	fw.debounce = make(map[string]*time.Timer)

	for _, subs := range fw.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	fw.subscribers = make(map[string][]chan FileEvent)
	fw.mu.Unlock()

	err := fw.watcher.Close()
	fw.wg.Wait()
	return err
}

// unsubscribe removes a channel from the subscriber list and closes it.
func (fw *FileWatcher) unsubscribe(pattern string, ch chan FileEvent) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	subs := fw.subscribers[pattern]
	for i, sub := range subs {
		if sub == ch {
			fw.subscribers[pattern] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(fw.subscribers[pattern]) == 0 {
		delete(fw.subscribers, pattern)
	}
}

// run processes filesystem events from fsnotify.
func (fw *FileWatcher) run() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn().Err(err).Str("dir", fw.dir).Msg("file watcher error")
		}
	}
}

// handleEvent processes a single filesystem event.
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	// Atomic writes surface as a create or rename of the target file.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".json") {
		return
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.ctx.Err() != nil {
		return
	}
	if timer, exists := fw.debounce[name]; exists {
		timer.Stop()
	}
	fw.debounce[name] = time.AfterFunc(debounceDelay, func() {
		fw.notifySubscribers(name)
	})
}

// notifySubscribers sends an event to all matching subscribers.
func (fw *FileWatcher) notifySubscribers(name string) {
	event := FileEvent{
		Name:      name,
		Path:      filepath.Join(fw.dir, name),
		Timestamp: time.Now(),
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	for pattern, subs := range fw.subscribers {
		if !matchesPattern(pattern, name) {
			continue
		}
		for _, ch := range subs {
			select {
			case ch <- event:
			default:
				// Channel full, drop event to prevent blocking
			}
		}
	}

	delete(fw.debounce, name)
}

// matchesPattern reports whether a file name matches a subscription glob.
// An empty pattern matches everything.
func matchesPattern(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
