package repositories

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("record not found")
)

const (
	// CacheKeyPrefix namespaces cache entries inside shared backends.
	CacheKeyPrefix = "postfeed:cache:"
)

func storageKey(key string) []byte {
	return []byte(CacheKeyPrefix + key)
}

// Open builds the store named by backend.
func Open(backend string, opts Options) (CacheStore, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "badger":
		return NewBadgerStore(opts.BadgerPath)
	case "redis":
		return NewRedisStore(opts.RedisAddr, opts.RedisDB)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}
}

// Options carries backend-specific settings for Open.
type Options struct {
	BadgerPath string
	RedisAddr  string
	RedisDB    int
}
