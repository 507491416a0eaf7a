// Package cache provides middleware implementing an in-memory (or
// pluggable Storage-backed) caching layer for HTTP responses.
//
// It intercepts responses and stores them keyed by request, serving
// subsequent identical requests directly from the cache without
// running the handler chain again. Supports configurable TTL, custom
// key generation, conditional invalidation, and a pluggable Storage so
// the default in-memory shard map can be swapped for RedisStorage.
package cache

import (
	"net/http"
	"time"

	"github.com/weaveframe/weave"
)

// New builds a weave.Middleware implementing cached responses.
//
//	s.Use(cache.New(cache.Config{
//	    Expiration: 5 * time.Minute,
//	    KeyGenerator: func(req *weave.Request) string {
//	        return req.Path() + "?user=" + req.Query().Get("user")
//	    },
//	}))
func New(config ...Config) weave.Middleware {
	cfg := defaultConfig
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Expiration <= 0 {
			cfg.Expiration = defaultConfig.Expiration
		}
		if cfg.CacheHeader == "" {
			cfg.CacheHeader = defaultConfig.CacheHeader
		}
		if cfg.MaxBytes <= 0 {
			cfg.MaxBytes = defaultConfig.MaxBytes
		}
		if len(cfg.Methods) == 0 {
			cfg.Methods = defaultConfig.Methods
		}
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = func(req *weave.Request) string { return req.Path() }
	}
	if cfg.Storage == nil {
		cfg.Storage = NewCache(cfg.Expiration)
	}

	methodMap := make(map[string]struct{}, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methodMap[m] = struct{}{}
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if cfg.Next != nil && cfg.Next(req) {
				return next(req)
			}
			if _, ok := methodMap[req.Method]; !ok {
				return next(req)
			}

			key := cfg.KeyGenerator(req)

			if cfg.CacheInvalidator != nil && cfg.CacheInvalidator(req) {
				cfg.Storage.Delete(key)
				resp, err := next(req)
				if resp != nil {
					resp.Set(cfg.CacheHeader, "INVALIDATED")
				}
				return resp, err
			}

			if cfg.CacheControl && req.Header("Cache-Control") == "no-cache" {
				resp, err := next(req)
				if resp != nil {
					resp.Set(cfg.CacheHeader, "BYPASS")
				}
				return resp, err
			}

			if cached, found := cfg.Storage.Get(key); found {
				entry := cached.(*cacheEntry)
				if time.Now().After(entry.Expiration) {
					cfg.Storage.Delete(key)
				} else {
					if cfg.OnHit != nil {
						cfg.OnHit(key)
					}
					if cfg.OnCacheHit != nil {
						cfg.OnCacheHit(req, key)
					}
					return servedFromCache(cfg, entry), nil
				}
			}
			if cfg.OnMiss != nil {
				cfg.OnMiss(key)
			}

			resp, err := next(req)
			if err != nil || resp == nil {
				return resp, err
			}

			if !resp.IsStreamed() && len(resp.Body()) <= cfg.MaxBytes {
				expiration := calculateExpiration(req, &cfg)
				entry := &cacheEntry{
					Body:         append([]byte(nil), resp.Body()...),
					StatusCode:   resp.Status(),
					ContentType:  resp.Header().Get("Content-Type"),
					Expiration:   expiration,
					CreatedAt:    time.Now(),
					LastAccessed: time.Now(),
				}
				if cfg.StoreResponseHeaders {
					entry.Headers = cloneHeaders(resp.Header())
				}
				cfg.Storage.Set(key, entry, time.Until(expiration))
				if cfg.OnCacheSet != nil {
					cfg.OnCacheSet(req, key)
				}
			}

			resp.Set(cfg.CacheHeader, "MISS")
			return resp, nil
		}
	}
}

func calculateExpiration(req *weave.Request, cfg *Config) time.Time {
	if cfg.ExpirationGenerator != nil {
		return time.Now().Add(cfg.ExpirationGenerator(req, cfg))
	}
	return time.Now().Add(cfg.Expiration)
}

func servedFromCache(cfg Config, entry *cacheEntry) *weave.Response {
	resp := weave.NewResponse(entry.StatusCode)
	if cfg.StoreResponseHeaders {
		for k, vs := range entry.Headers {
			for _, v := range vs {
				resp.Add(k, v)
			}
		}
	} else if entry.ContentType != "" {
		resp.Set("Content-Type", entry.ContentType)
	}
	resp.Set(cfg.CacheHeader, "HIT")
	resp.Set("X-Cache-Source", "memory")
	resp.Set("X-Cache-Expires-At", entry.Expiration.Format(time.RFC3339))
	resp.Send(entry.Body)
	return resp
}

func cloneHeaders(h http.Header) map[string][]string {
	out := make(map[string][]string, len(h))
	for k, vs := range h {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
