package storage

import (
	"errors"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/atomic"

	"guildstore/internal/models"
	"guildstore/internal/providers"
	"guildstore/internal/storage/interfaces"
	"guildstore/internal/structures"
)

var errNilDocument = errors.New("storage: nil document")

// SchemaManager owns the versioned document stored under a single key.
//
// Load never fails on bad data: an absent key, undecodable bytes or a foreign
// schema version all produce a fresh default document. Only failures of the
// key-value backend itself are returned.
//
// Every successful Save or Reset advances the snapshot counter by one and then
// calls the registered listeners synchronously, in registration order.
type SchemaManager struct {
	kv      interfaces.KeyValueInterface
	key     string
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	now     func() time.Time

	// writeMu serializes load-mutate-save cycles within this process.
	writeMu sync.Mutex

	mu        sync.Mutex
	snapshot  atomic.Uint64
	nextID    uint64
	listeners []*listenerEntry
}

type listenerEntry struct {
	id     uint64
	fn     func(models.ChangeEvent)
	active atomic.Bool
}

func NewSchemaManager(kv interfaces.KeyValueInterface, key string, logger providers.Logger, metrics providers.MetricsProviderInterface) *SchemaManager {
	return &SchemaManager{
		kv:      kv,
		key:     key,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func NewSchemaManagerProvider(conf *structures.Config, kv interfaces.KeyValueInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) interfaces.SchemaManagerInterface {
	return NewSchemaManager(kv, conf.Storage.Key, logger, metrics)
}

func (m *SchemaManager) Key() string {
	return m.key
}

func (m *SchemaManager) Load() (*models.StorageDocument, error) {
	raw, ok, err := m.kv.Get(m.key)
	if err != nil {
		if errors.Is(err, interfaces.ErrMalformedValue) {
			return m.fallback("malformed", err), nil
		}
		return nil, err
	}
	if !ok {
		return models.NewStorageDocument(), nil
	}

	var doc models.StorageDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return m.fallback("malformed", err), nil
	}
	if doc.Version != models.CurrentVersion {
		m.logger.Debugf(providers.TypeApp, "Stored document has version %d, expected %d", doc.Version, models.CurrentVersion)
		return m.fallback("version", nil), nil
	}
	doc.Normalize()
	return &doc, nil
}

func (m *SchemaManager) fallback(reason string, cause error) *models.StorageDocument {
	if cause != nil {
		m.logger.Debugf(providers.TypeApp, "Discarding stored document (%s): %s", reason, cause)
	}
	m.metrics.IncStorageFallbacks(reason)
	return models.NewStorageDocument()
}

func (m *SchemaManager) Save(doc *models.StorageDocument) error {
	m.writeMu.Lock()
	err := m.write(doc)
	m.writeMu.Unlock()
	if err != nil {
		return err
	}
	m.notify(models.ReasonSave)
	return nil
}

func (m *SchemaManager) Reset() error {
	m.writeMu.Lock()
	err := m.kv.Delete(m.key)
	m.writeMu.Unlock()
	if err != nil {
		return err
	}
	m.notify(models.ReasonReset)
	return nil
}

// Update runs fn against the current document and saves the result. Nothing
// is written when fn returns an error.
func (m *SchemaManager) Update(fn func(doc *models.StorageDocument) error) error {
	m.writeMu.Lock()
	doc, err := m.Load()
	if err == nil {
		err = fn(doc)
	}
	if err == nil {
		err = m.write(doc)
	}
	m.writeMu.Unlock()
	if err != nil {
		return err
	}
	m.notify(models.ReasonSave)
	return nil
}

// write must be called with writeMu held.
func (m *SchemaManager) write(doc *models.StorageDocument) error {
	if doc == nil {
		return errNilDocument
	}
	doc.Version = models.CurrentVersion
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return m.kv.Set(m.key, data)
}

// NotifyExternalChange is called when another process modified the stored
// document.
func (m *SchemaManager) NotifyExternalChange() {
	m.notify(models.ReasonExternal)
}

func (m *SchemaManager) Subscribe(listener func()) func() {
	return m.SubscribeEvents(func(models.ChangeEvent) { listener() })
}

func (m *SchemaManager) SubscribeEvents(listener func(models.ChangeEvent)) func() {
	m.mu.Lock()
	m.nextID++
	entry := &listenerEntry{id: m.nextID, fn: listener}
	entry.active.Store(true)
	m.listeners = append(m.listeners, entry)
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.active.Store(false)
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, l := range m.listeners {
				if l.id == entry.id {
					m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

func (m *SchemaManager) GetSnapshot() uint64 {
	return m.snapshot.Load()
}

func (m *SchemaManager) ListenerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.listeners)
}

func (m *SchemaManager) notify(reason models.ChangeReason) {
	m.mu.Lock()
	snap := m.snapshot.Add(1)
	listeners := make([]*listenerEntry, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	event := models.ChangeEvent{
		Snapshot: snap,
		Reason:   reason,
		At:       models.NewTimestamp(m.now()),
	}
	for _, l := range listeners {
		if l.active.Load() {
			l.fn(event)
		}
	}
}
