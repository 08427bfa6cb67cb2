package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"essaylens/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// ResultWatcher reloads one result file whenever it changes on disk
type ResultWatcher struct {
	mu sync.RWMutex

	file        string
	lastModTime time.Time
	lastSize    int64
	present     bool

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	reloadCallback func()
	logger         *errors.Logger

	running bool
}

// NewResultWatcher creates a watcher for file. reloadCallback runs on the
// watcher goroutine after the debounce delay.
func NewResultWatcher(file string, debounceDelay time.Duration, reloadCallback func(), logger *errors.Logger) (*ResultWatcher, error) {
	if file == "" {
		return nil, fmt.Errorf("result watcher needs a file")
	}
	if debounceDelay <= 0 {
		debounceDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = errors.Discard()
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
	}

	return &ResultWatcher{
		file:           abs,
		debounceDelay:  debounceDelay,
		stopChan:       make(chan struct{}),
		reloadChan:     make(chan struct{}, 1),
		reloadCallback: reloadCallback,
		logger:         logger,
	}, nil
}

// Start begins watching. The directory is watched so atomic renames and
// late-created files are seen.
func (rw *ResultWatcher) Start() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.running {
		return fmt.Errorf("result watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(rw.file)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			rw.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	rw.fsWatcher = watcher
	rw.updateModTime()

	rw.running = true
	go rw.watchLoop()

	rw.logger.Info("Result file watcher started",
		"file", rw.file,
		"debounce_delay", rw.debounceDelay)
	return nil
}

// Stop stops the watcher
func (rw *ResultWatcher) Stop() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if !rw.running {
		return nil
	}

	close(rw.stopChan)
	if rw.debounceTimer != nil {
		rw.debounceTimer.Stop()
	}
	rw.running = false

	if err := rw.fsWatcher.Close(); err != nil {
		rw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	rw.logger.Info("Result file watcher stopped")
	return nil
}

func (rw *ResultWatcher) updateModTime() {
	if stat, err := os.Stat(rw.file); err == nil {
		rw.lastModTime = stat.ModTime()
		rw.lastSize = stat.Size()
		rw.present = true
	}
}

// hasFileChanged reports a write, a replacement or a deletion since the last check
func (rw *ResultWatcher) hasFileChanged() bool {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	stat, err := os.Stat(rw.file)
	if err != nil {
		if os.IsNotExist(err) && rw.present {
			rw.present = false
			return true
		}
		return false
	}

	if !rw.present || !stat.ModTime().Equal(rw.lastModTime) || stat.Size() != rw.lastSize {
		rw.lastModTime = stat.ModTime()
		rw.lastSize = stat.Size()
		rw.present = true
		return true
	}
	return false
}

func (rw *ResultWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-rw.fsWatcher.Events:
			if !ok {
				return
			}
			if rw.shouldProcessEvent(event) {
				rw.scheduleReload()
			}

		case err, ok := <-rw.fsWatcher.Errors:
			if !ok {
				return
			}
			rw.logger.LogError(err, "File watcher error")

		case <-rw.reloadChan:
			if rw.hasFileChanged() {
				rw.logger.Info("Result file changed, reloading", "file", rw.file)
				rw.reloadCallback()
			}

		case <-rw.stopChan:
			return
		}
	}
}

func (rw *ResultWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != rw.file {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

// scheduleReload restarts the debounce timer
func (rw *ResultWatcher) scheduleReload() {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.debounceTimer != nil {
		rw.debounceTimer.Stop()
	}

	rw.debounceTimer = time.AfterFunc(rw.debounceDelay, func() {
		select {
		case rw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (rw *ResultWatcher) IsRunning() bool {
	rw.mu.RLock()
	defer rw.mu.RUnlock()
	return rw.running
}

// File returns the watched path
func (rw *ResultWatcher) File() string {
	return rw.file
}
