package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/autopop/internal/logging"
)

// Watcher reloads the config file when it changes, delivering validated
// configs on Reload. Invalid or unreadable files are reported on Errors
// and never delivered, so receivers always keep a working configuration.
//
// The file's directory is watched rather than the file itself: editors
// replace files by rename, which would silently drop a file watch. A
// removed config file is reloaded as defaults once it reappears.
type Watcher struct {
	path     string
	debounce time.Duration
	log      *logging.Logger

	fsw     *fsnotify.Watcher
	reload  chan Config
	errs    chan error
	closeCh chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits after the last change
// before reloading. Rapid successive writes coalesce into one reload.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(log *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if log != nil {
			w.log = log
		}
	}
}

// WatchFile starts watching the config file at path.
func WatchFile(path string, opts ...WatcherOption) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		path:     abs,
		debounce: 200 * time.Millisecond,
		log:      logging.Discard,
		fsw:      fsw,
		reload:   make(chan Config, 1),
		errs:     make(chan error, 8),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dir := filepath.Dir(abs)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Reload returns the channel of validated configs. Only the latest
// undelivered config is kept.
func (w *Watcher) Reload() <-chan Config {
	return w.reload
}

// Errors returns the channel of load and watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	close(w.reload)
	close(w.errs)
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
				continue
			}
			if !timer.Stop() {
				select {
				case <-fire:
				default:
				}
			}
			timer.Reset(w.debounce)

		case <-fire:
			timer = nil
			fire = nil
			w.emit()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.sendError(fmt.Errorf("watch %s: %w", w.path, err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename)
}

func (w *Watcher) emit() {
	cfg, err := Load(w.path)
	if err != nil {
		w.sendError(err)
		return
	}

	// Latest wins: replace any undelivered config.
	select {
	case <-w.reload:
	default:
	}
	select {
	case w.reload <- cfg:
		w.log.Debug("config reloaded from %s", w.path)
	default:
	}
}

func (w *Watcher) sendError(err error) {
	select {
	case w.errs <- err:
	default:
		w.log.Warn("dropping watcher error: %v", err)
	}
}
