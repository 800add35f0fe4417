package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"guildstore/internal/storage/interfaces"
)

const (
	plainFileExt      = ".json"
	compressedFileExt = ".json.zst"
)

// FileKeyValue keeps every key in its own file under dir. Writes are atomic
// (temp file, fsync, rename). It remembers a fingerprint of the last bytes it
// wrote or reported through Changed, which lets Changed tell foreign writes
// apart. Reads never touch the fingerprint.
type FileKeyValue struct {
	mu         sync.Mutex
	dir        string
	ext        string
	compressor interfaces.CompressorInterface
	seen       map[string]fileState
}

type fileState struct {
	exists bool
	sum    uint64
}

func NewFileKeyValue(dir string, compressor interfaces.CompressorInterface) (*FileKeyValue, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	ext := plainFileExt
	if _, plain := compressor.(PlainCompression); !plain {
		ext = compressedFileExt
	}
	return &FileKeyValue{
		dir:        dir,
		ext:        ext,
		compressor: compressor,
		seen:       make(map[string]fileState),
	}, nil
}

// Path returns the file that holds key.
func (f *FileKeyValue) Path(key string) string {
	return filepath.Join(f.dir, key+f.ext)
}

func (f *FileKeyValue) Dir() string {
	return f.dir
}

func (f *FileKeyValue) Get(key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, state, err := f.read(key)
	if err != nil {
		return nil, false, err
	}
	if !state.exists {
		return nil, false, nil
	}

	data, err := f.compressor.Decompress(raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *FileKeyValue) Set(key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := f.compressor.Compress(value)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.Path(key)
	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return err
	}
	f.seen[key] = fileState{exists: true, sum: xxhash.Sum64(data)}
	return nil
}

func (f *FileKeyValue) Delete(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.Path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	f.seen[key] = fileState{}
	return nil
}

// Changed reports whether the file for key differs from what this store last
// wrote or reported, and remembers the new state.
func (f *FileKeyValue) Changed(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	_, state, err := f.read(key)
	if err != nil {
		return false, err
	}
	if prev, ok := f.seen[key]; ok && prev == state {
		return false, nil
	}
	f.seen[key] = state
	return true, nil
}

func (f *FileKeyValue) Close() error {
	f.compressor.Close()
	return nil
}

// read must be called with f.mu held.
func (f *FileKeyValue) read(key string) ([]byte, fileState, error) {
	raw, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fileState{}, nil
		}
		return nil, fileState{}, err
	}
	return raw, fileState{exists: true, sum: xxhash.Sum64(raw)}, nil
}

func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
