package cache

import (
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("key not found in cache")
	ErrInvalidValue = errors.New("invalid value for cache")
	ErrClosed       = errors.New("cache is closed")
	ErrInvalidKey   = errors.New("invalid cache key")
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Get(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	Close() error
}

type Options struct {
	DefaultTTL time.Duration

	// MaxEntries bounds the in-memory backend; least recently used keys go
	// first.
	MaxEntries int

	RedisURL string

	RedisPassword string

	RedisDB int

	// KeyPrefix namespaces every key, e.g. "jobbots:".
	KeyPrefix string
}

func DefaultOptions() Options {
	return Options{
		DefaultTTL: time.Hour,
		MaxEntries: 4096,
	}
}

// Key query-escapes each part and joins them with ':'. Escaped parts never
// contain ':', so distinct part lists give distinct keys.
func Key(parts ...string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = url.QueryEscape(p)
	}
	return strings.Join(out, ":")
}

// Encode turns a value into the bytes stored by a backend.
func Encode(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case encoding.BinaryMarshaler:
		return v.MarshalBinary()
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Join(ErrInvalidValue, err)
		}
		return data, nil
	}
}

// Decode is the inverse of Encode; value must be a pointer.
func Decode(data []byte, value interface{}) error {
	switch v := value.(type) {
	case *string:
		*v = string(data)
	case *[]byte:
		*v = append((*v)[:0], data...)
	case encoding.BinaryUnmarshaler:
		return v.UnmarshalBinary(data)
	default:
		if err := json.Unmarshal(data, value); err != nil {
			return errors.Join(ErrInvalidValue, err)
		}
	}
	return nil
}
