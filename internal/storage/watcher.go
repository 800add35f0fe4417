package storage

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"guildstore/internal/providers"
	"guildstore/internal/storage/interfaces"
	"guildstore/internal/structures"
)

type changeDetector interface {
	Changed(key string) (bool, error)
	Path(key string) string
	Dir() string
}

// Watcher turns writes made to the document file by other processes into
// change notifications on the schema manager.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	detector changeDetector
	key      string
	path     string
	manager  interfaces.SchemaManagerInterface
	logger   providers.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

func NewWatcher(detector changeDetector, key string, manager interfaces.SchemaManagerInterface, logger providers.Logger) *Watcher {
	return &Watcher{
		detector: detector,
		key:      key,
		path:     filepath.Clean(detector.Path(key)),
		manager:  manager,
		logger:   logger,
	}
}

// NewWatcherProvider returns a no-op watcher unless storage.watch is set and
// the backend is file based.
func NewWatcherProvider(conf *structures.Config, kv interfaces.KeyValueInterface, manager interfaces.SchemaManagerInterface, logger providers.Logger) interfaces.WatcherInterface {
	if !conf.Storage.Watch {
		return &noopWatcher{}
	}
	detector, ok := unwrapKeyValue(kv).(changeDetector)
	if !ok {
		logger.Warnf(providers.TypeApp, "Storage backend %s cannot be watched", conf.Storage.Backend)
		return &noopWatcher{}
	}
	return NewWatcher(detector, conf.Storage.Key, manager, logger)
}

func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.detector.Dir()); err != nil {
		fw.Close()
		return err
	}

	// Prime the detector so the current file content is not reported as a change.
	if _, err := w.detector.Changed(w.key); err != nil {
		w.logger.Warnf(providers.TypeApp, "Watcher: unable to read %s: %s", w.path, err)
	}

	w.watcher = fw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	go w.run(fw, w.stopCh, w.doneCh)

	w.logger.Infof(providers.TypeApp, "Watching %s for external changes", w.path)
	return nil
}

func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	fw, stopCh, doneCh := w.watcher, w.stopCh, w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	if err := fw.Close(); err != nil {
		w.logger.Errorf(providers.TypeApp, "Watcher: error closing: %s", err)
	}
}

func (w *Watcher) run(fw *fsnotify.Watcher, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	for {
		select {
		case <-stopCh:
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Errorf(providers.TypeApp, "Watcher error: %s", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	changed, err := w.detector.Changed(w.key)
	if err != nil {
		w.logger.Warnf(providers.TypeApp, "Watcher: unable to read %s: %s", w.path, err)
		return
	}
	if !changed {
		return
	}
	w.logger.Debugf(providers.TypeApp, "Watcher: %s changed by another process (%s)", w.path, event.Op)
	w.manager.NotifyExternalChange()
}

type noopWatcher struct{}

func (n *noopWatcher) Start() error { return nil }
func (n *noopWatcher) Stop()        {}
