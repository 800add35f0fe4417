package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"guildstore/internal/models"
	"guildstore/internal/providers"
	"guildstore/internal/storage/interfaces"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() { m.Closed = true }

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu              sync.Mutex
	CacheHits       int
	CacheMisses     int
	StorageOps      map[string]int
	StorageErrors   map[string]int
	Fallbacks       map[string]int
	EventsPublished map[string]int
	Requests        []string
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		StorageOps:      make(map[string]int),
		StorageErrors:   make(map[string]int),
		Fallbacks:       make(map[string]int),
		EventsPublished: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, endpoint)
}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}
func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}
func (m *MockMetrics) ObserveStorageDuration(op string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StorageOps[op]++
}
func (m *MockMetrics) IncStorageErrors(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StorageErrors[op]++
}
func (m *MockMetrics) IncStorageFallbacks(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fallbacks[reason]++
}
func (m *MockMetrics) IncEventsPublished(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsPublished[reason]++
}
func (m *MockMetrics) TrackStore(_ interfaces.SchemaManagerInterface) {}

// ErrStorageDown is returned by FailingKeyValue.
var ErrStorageDown = errors.New("storage down")

// FailingKeyValue is a map-backed key-value store whose operations can be
// made to fail.
type FailingKeyValue struct {
	mu        sync.Mutex
	Data      map[string][]byte
	GetErr    error
	SetErr    error
	DeleteErr error
	SetCalls  int
}

func NewFailingKeyValue() *FailingKeyValue {
	return &FailingKeyValue{Data: make(map[string][]byte)}
}

func (f *FailingKeyValue) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return nil, false, f.GetErr
	}
	v, ok := f.Data[key]
	return v, ok, nil
}

func (f *FailingKeyValue) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetCalls++
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Data[key] = append([]byte(nil), value...)
	return nil
}

func (f *FailingKeyValue) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.Data, key)
	return nil
}

func (f *FailingKeyValue) Close() error { return nil }

// MockNotifier implements providers.NotifierProviderInterface.
type MockNotifier struct {
	mu     sync.Mutex
	Events []models.ChangeEvent
	Err    error
}

func (m *MockNotifier) Publish(_ context.Context, event models.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}

func (m *MockNotifier) Close() {}

func (m *MockNotifier) Published() []models.ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChangeEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
