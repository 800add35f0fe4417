package models

import (
	"bytes"
	"fmt"
	"time"
)

// ISOLayout matches the ISO-8601 form produced by browsers: UTC, millisecond precision.
const ISOLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a time.Time persisted as an ISO-8601 string with millisecond
// precision. Decoding accepts any RFC 3339 string.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func Now() Timestamp {
	return NewTimestamp(time.Now())
}

func (t Timestamp) String() string {
	return t.UTC().Format(ISOLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, len(ISOLayout)+2)
	buf = append(buf, '"')
	buf = t.UTC().AppendFormat(buf, ISOLayout)
	buf = append(buf, '"')
	return buf, nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp: expected ISO-8601 string, got %s", data)
	}
	parsed, err := time.Parse(time.RFC3339Nano, string(data[1:len(data)-1]))
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Timestamp) Equal(other Timestamp) bool {
	return t.Time.Equal(other.Time)
}
