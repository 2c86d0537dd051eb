package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached record with its expiration metadata.
type Entry struct {
	Key        string          `json:"key"`
	Data       json.RawMessage `json:"data"`
	StoredAt   time.Time       `json:"stored_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	TTLSeconds int             `json:"ttl_seconds"`
}

// NewEntry builds an entry stored at now that lives for ttl.
func NewEntry(key string, data json.RawMessage, ttl time.Duration, now time.Time) Entry {
	return Entry{
		Key:        key,
		Data:       data,
		StoredAt:   now,
		ExpiresAt:  now.Add(ttl),
		TTLSeconds: int(ttl / time.Second),
	}
}

// ExpiredAt reports whether the entry has expired at t.
func (e Entry) ExpiredAt(t time.Time) bool {
	return !t.Before(e.ExpiresAt)
}

// Remaining returns the time left at t, never negative.
func (e Entry) Remaining(t time.Time) time.Duration {
	return max(e.ExpiresAt.Sub(t), 0)
}
