package session

import (
	"encoding/json"
	"fmt"
	"time"
)

type expiringValue struct {
	Value  json.RawMessage `json:"value"`
	Expiry int64           `json:"expiry"` // unix milliseconds
}

// SetWithExpiry stores value under key until now+ttl
func SetWithExpiry(s Storage, key string, value any, ttl time.Duration, now time.Time) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	data, err := json.Marshal(expiringValue{
		Value:  raw,
		Expiry: now.Add(ttl).UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(key, string(data))
}

// GetWithExpiry decodes the value stored under key into out. It returns
// false for missing, corrupt, or expired entries; expired entries are
// deleted.
func GetWithExpiry(s Storage, key string, out any, now time.Time) bool {
	raw, ok := s.Get(key)
	if !ok {
		return false
	}

	var item expiringValue
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return false
	}

	if now.UnixMilli() > item.Expiry {
		_ = s.Delete(key)
		return false
	}

	return json.Unmarshal(item.Value, out) == nil
}
