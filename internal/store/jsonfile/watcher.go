package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	debounceDelay   = 50 * time.Millisecond
	eventBufferSize = 16
)

// Change is emitted after a watched document was rewritten.
type Change struct {
	Name string
	At   time.Time
}

// Watcher reports rewrites of the JSON documents in a data directory.
// Atomic saves surface as a Create or Rename of the final file name, so
// every write is seen once after debouncing.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	mu          sync.Mutex
	subscribers map[string][]chan<- Change // file name -> channels
	debounce    map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts watching dir, creating it when missing.
func NewWatcher(dir string, logger zerolog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:         dir,
		watcher:     fw,
		logger:      logger,
		subscribers: make(map[string][]chan<- Change),
		debounce:    make(map[string]*time.Timer),
		ctx:         ctx,
		cancel:      cancel,
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Watch returns a channel receiving a Change each time the named file
// (a base name such as "activity.json") is rewritten. The channel closes
// when ctx is done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, name string) <-chan Change {
	ch := make(chan Change, eventBufferSize)

	w.mu.Lock()
	w.subscribers[name] = append(w.subscribers[name], ch)
	w.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.unsubscribe(name, ch)
		case <-w.ctx.Done():
		}
	}()

	return ch
}

// Close stops watching and closes all subscriber channels.
func (w *Watcher) Close() error {
	w.cancel()

	w.mu.Lock()
	for _, timer := range w.debounce {
		timer.Stop()
	}
	for _, subs := range w.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	w.subscribers = make(map[string][]chan<- Change)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) unsubscribe(name string, ch chan<- Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	subs := w.subscribers[name]
	if i := slices.Index(subs, ch); i >= 0 {
		w.subscribers[name] = slices.Delete(subs, i, i+1)
		close(ch)
	}
	if len(w.subscribers[name]) == 0 {
		delete(w.subscribers, name)
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Str("dir", w.dir).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, ".json") {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.subscribers[name]; !ok {
		return
	}
	if timer, ok := w.debounce[name]; ok {
		timer.Stop()
	}
	w.debounce[name] = time.AfterFunc(debounceDelay, func() { w.notify(name) })
}

func (w *Watcher) notify(name string) {
	change := Change{Name: name, At: time.Now()}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, ch := range w.subscribers[name] {
		select {
		case ch <- change:
		default:
			// subscriber is behind; it will re-read the whole file anyway
		}
	}
	delete(w.debounce, name)
}
