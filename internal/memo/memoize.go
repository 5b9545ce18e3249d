package memo

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/goccy/go-json"

	"dionysia/internal/logging"
)

// Key returns the canonical cache key for args. Maps encode with sorted keys,
// so equal arguments always produce the same key.
func Key(args any) (string, error) {
	data, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode memo key: %w", err)
	}
	return string(data), nil
}

// Memoize returns the cached result of fn for (name, args) while it is fresh.
// On a miss fn is called and its result stored, unless fn failed or the
// result is blank. Cache read and write failures are logged and fall through
// to fn.
func Memoize[T any](ctx context.Context, store *Store, name string, ttl time.Duration, args any, fn func(context.Context) (T, error)) (T, error) {
	if store == nil || ttl <= 0 {
		return fn(ctx)
	}
	key, err := Key(args)
	if err != nil {
		return fn(ctx)
	}

	if raw, ok, err := store.Get(ctx, name, key); err != nil {
		logging.WarnWithContext(store.logger, "memo read failed", "memo_read_failed",
			logging.String("name", name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run dionysia cache clear if the cache file is corrupt"),
			logging.String(logging.FieldImpact, "value fetched from the remote service"),
		)
	} else if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			store.logger.Debug("memo hit", logging.String("name", name), logging.String("key", key))
			return cached, nil
		}
		store.logger.Debug("memo entry undecodable; refetching", logging.String("name", name))
	}

	value, err := fn(ctx)
	if err != nil {
		return value, err
	}
	if IsBlank(value) {
		store.logger.Debug("memo skipped blank result", logging.String("name", name), logging.String("key", key))
		return value, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		store.logger.Debug("memo encode failed", logging.String("name", name), logging.Error(err))
		return value, nil
	}
	if err := store.Put(ctx, name, key, encoded, ttl); err != nil {
		logging.WarnWithContext(store.logger, "memo write failed", "memo_write_failed",
			logging.String("name", name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the cache file"),
			logging.String(logging.FieldImpact, "next run will refetch this value"),
		)
	}
	return value, nil
}

// IsBlank reports whether v is nil, an empty string, slice or map, or a nil pointer.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
