package interfaces

import "errors"

// ErrMalformedValue marks a stored value that exists but cannot be decoded
// by the backend (for example a corrupt compressed frame).
var ErrMalformedValue = errors.New("storage: malformed value")

// KeyValueInterface is the storage port behind the schema manager: a
// synchronous string-keyed byte store.
type KeyValueInterface interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
