// Package storage persists the console's credentials as string key/value pairs.
package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Persisted keys.
const (
	KeyUserToken      = "token"
	KeyAPIToken       = "api_token"
	KeyAPITokenExpiry = "api_token_expiry"
)

type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a Store.
type Options struct {
	Driver    string
	StateFile string
	Redis     *redis.Options
	KeyPrefix string
}

// Open builds the Store named by opts.Driver.
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(opts.StateFile)
	case "redis":
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis options are required")
		}
		return NewRedisStore(redis.NewClient(opts.Redis), opts.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", opts.Driver)
	}
}
