package storage

import (
	"time"

	"guildstore/internal/providers"
	"guildstore/internal/storage/interfaces"
)

// InstrumentedKeyValue reports duration and failures of every storage call.
type InstrumentedKeyValue struct {
	inner   interfaces.KeyValueInterface
	metrics providers.MetricsProviderInterface
}

func NewInstrumentedKeyValue(inner interfaces.KeyValueInterface, metrics providers.MetricsProviderInterface) *InstrumentedKeyValue {
	return &InstrumentedKeyValue{inner: inner, metrics: metrics}
}

func (i *InstrumentedKeyValue) Get(key string) ([]byte, bool, error) {
	start := time.Now()
	val, ok, err := i.inner.Get(key)
	i.observe("get", start, err)
	return val, ok, err
}

func (i *InstrumentedKeyValue) Set(key string, value []byte) error {
	start := time.Now()
	err := i.inner.Set(key, value)
	i.observe("set", start, err)
	return err
}

func (i *InstrumentedKeyValue) Delete(key string) error {
	start := time.Now()
	err := i.inner.Delete(key)
	i.observe("delete", start, err)
	return err
}

func (i *InstrumentedKeyValue) Close() error {
	return i.inner.Close()
}

func (i *InstrumentedKeyValue) Unwrap() interfaces.KeyValueInterface {
	return i.inner
}

func (i *InstrumentedKeyValue) observe(op string, start time.Time, err error) {
	i.metrics.ObserveStorageDuration(op, time.Since(start))
	if err != nil {
		i.metrics.IncStorageErrors(op)
	}
}
