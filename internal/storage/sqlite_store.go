package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"guildstore/internal/storage/interfaces"
)

const sqliteFileName = "guildstore.db"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

// SQLiteKeyValue keeps keys in a single SQLite table.
type SQLiteKeyValue struct {
	db         *sql.DB
	path       string
	compressor interfaces.CompressorInterface
}

func NewSQLiteKeyValue(dir string, compressor interfaces.CompressorInterface) (*SQLiteKeyValue, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, sqliteFileName)

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteKeyValue{db: db, path: path, compressor: compressor}, nil
}

func (s *SQLiteKeyValue) Path() string {
	return s.path
}

func (s *SQLiteKeyValue) Get(key string) ([]byte, bool, error) {
	var raw []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read key %q: %w", key, err)
	}

	data, err := s.compressor.Decompress(raw)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *SQLiteKeyValue) Set(key string, value []byte) error {
	data, err := s.compressor.Compress(value)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKeyValue) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKeyValue) Close() error {
	s.compressor.Close()
	return s.db.Close()
}
