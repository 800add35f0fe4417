package storage

import (
	"fmt"

	"guildstore/internal/providers"
	"guildstore/internal/storage/interfaces"
	"guildstore/internal/structures"
)

// NewKeyValueProvider opens the backend named by storage.backend and wraps it
// with metrics. The returned cleanup closes the backend.
func NewKeyValueProvider(conf *structures.Config, compressor interfaces.CompressorInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) (interfaces.KeyValueInterface, func(), error) {
	var (
		kv  interfaces.KeyValueInterface
		err error
	)

	switch conf.Storage.Backend {
	case "memory", "":
		kv = NewMemoryKeyValue()
		logger.Warnf(providers.TypeApp, "Using in-memory storage, data is lost on exit")
	case "file":
		kv, err = NewFileKeyValue(conf.Storage.Dir, compressor)
		if err == nil {
			logger.Infof(providers.TypeApp, "Using file storage in %s", conf.Storage.Dir)
		}
	case "sqlite":
		kv, err = NewSQLiteKeyValue(conf.Storage.Dir, compressor)
		if err == nil {
			logger.Infof(providers.TypeApp, "Using sqlite storage in %s", conf.Storage.Dir)
		}
	default:
		err = fmt.Errorf("unknown storage backend %q", conf.Storage.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	instrumented := NewInstrumentedKeyValue(kv, metrics)
	cleanup := func() {
		if err := instrumented.Close(); err != nil {
			logger.Errorf(providers.TypeApp, "Failed to close storage: %s", err)
		}
	}
	return instrumented, cleanup, nil
}

// unwrapKeyValue peels metric wrappers off a backend.
func unwrapKeyValue(kv interfaces.KeyValueInterface) interfaces.KeyValueInterface {
	for {
		w, ok := kv.(interface {
			Unwrap() interfaces.KeyValueInterface
		})
		if !ok {
			return kv
		}
		kv = w.Unwrap()
	}
}
