package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend   string
	Dir       string
	RedisAddr string
	RedisDB   int
}

// Open creates the cache described by opts. An empty backend opens a
// NullCache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache requires a directory")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		return NewRedisCache(ctx, RedisOptions{Addr: opts.RedisAddr, DB: opts.RedisDB})
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}
