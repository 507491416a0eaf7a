package cache

import (
	"time"

	"github.com/weaveframe/weave"
)

// Storage defines the interface for cache storage implementations, so a
// handler can be backed by the built-in in-memory Cache or by
// RedisStorage without the middleware itself depending on Redis.
type Storage interface {
	Set(key string, value interface{}, ttl time.Duration)
	Get(key string) (interface{}, bool)
	Delete(key string)
}

// Config defines the configuration options for the cache middleware.
type Config struct {
	// Expiration is the default duration after which cached items expire.
	// Default is 1 minute.
	Expiration time.Duration

	// ExpirationGenerator, if set, overrides Expiration per request.
	ExpirationGenerator func(req *weave.Request, cfg *Config) time.Duration

	// KeyGenerator generates a unique cache key for each request.
	// Default uses the request path.
	KeyGenerator func(req *weave.Request) string

	// CacheHeader is the name of the header that reports cache status.
	// Default is "X-Cache-Status".
	CacheHeader string

	// CacheControl, when true, honors a client's Cache-Control: no-cache.
	// Default is true.
	CacheControl bool

	// StoreResponseHeaders determines whether to cache and restore
	// response headers alongside the body. Default is true.
	StoreResponseHeaders bool

	// MaxBytes is the maximum response body size, in bytes, eligible
	// for caching. Default is 1MB.
	MaxBytes int

	// Methods lists the HTTP methods eligible for caching.
	// Default is GET and HEAD.
	Methods []string

	// CacheInvalidator, if it returns true, deletes the entry for this
	// request's key and serves the handler directly.
	CacheInvalidator func(req *weave.Request) bool

	// Next skips the middleware entirely when it returns true.
	Next func(req *weave.Request) bool

	// Storage is the cache storage engine. Defaults to an in-memory Cache.
	Storage Storage

	OnHit      func(key string)
	OnMiss     func(key string)
	OnCacheHit func(req *weave.Request, key string)
	OnCacheSet func(req *weave.Request, key string)
}

var defaultConfig = Config{
	Expiration:           1 * time.Minute,
	CacheHeader:          "X-Cache-Status",
	CacheControl:         true,
	StoreResponseHeaders: true,
	MaxBytes:             1024 * 1024,
	Methods:              []string{weave.MethodGet, weave.MethodHead},
}

// cacheEntry represents a cached HTTP response.
type cacheEntry struct {
	Body         []byte
	StatusCode   int
	Headers      map[string][]string
	ContentType  string
	Expiration   time.Time
	LastAccessed time.Time
	CreatedAt    time.Time
}
