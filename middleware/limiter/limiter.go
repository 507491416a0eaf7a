// Package limiter provides middleware for rate limiting requests.
//
// This middleware controls the number of requests a client can make
// within a specified time window, helping to prevent abuse, protect APIs
// from excessive traffic, and improve overall system stability.
//
// Features:
//   - Configurable maximum requests per time window.
//   - Customizable key generator (e.g., per-IP, per-user, etc.).
//   - Flexible expiration time for rate-limited requests.
//   - Custom handler when the request limit is exceeded.
//   - Uses sharded maps for efficient concurrency handling.
//   - Periodic cleanup of expired request records to optimize memory usage.
package limiter

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/weaveframe/weave"
)

// Config defines the rate limiting configuration.
type Config struct {
	Max          int                            // Maximum requests allowed in the time window
	Expiration   time.Duration                  // Time window for rate limiting
	KeyGenerator func(req *weave.Request) string // Function to generate a unique key per client
	LimitReached func(req *weave.Request) (*weave.Response, error)
}

// client tracks individual request data for rate limiting.
type client struct {
	mu       sync.Mutex
	requests int
	expires  time.Time
}

// RateLimiter manages all rate limiting logic, storing request counters
// across multiple shards.
type RateLimiter struct {
	config     Config
	shards     []*sync.Map
	shardCount uint32
}

// New builds a weave.Middleware enforcing config's rate limit. A
// background goroutine periodically sweeps expired client entries out of
// the shard maps, so a long-running server doesn't accumulate one entry
// per distinct key forever.
//
// Usage:
//
//	s.Use(limiter.New(limiter.Config{
//	    Max:        3,
//	    Expiration: 2 * time.Second,
//	    KeyGenerator: func(req *weave.Request) string { return req.Peer.Addr },
//	    LimitReached: func(req *weave.Request) (*weave.Response, error) {
//	        return weave.NewResponse(429).SendString("Too many requests"), nil
//	    },
//	}))
func New(config Config) weave.Middleware {
	rl := &RateLimiter{
		config:     config,
		shardCount: 256,
	}
	rl.shards = make([]*sync.Map, rl.shardCount)
	for i := 0; i < int(rl.shardCount); i++ {
		rl.shards[i] = &sync.Map{}
	}
	go rl.startCleanup()

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			key := rl.config.KeyGenerator(req)

			shard := rl.getShard(key)
			now := time.Now()

			val, _ := shard.LoadOrStore(key, &client{
				requests: 0,
				expires:  now.Add(rl.config.Expiration),
			})
			cl := val.(*client)

			cl.mu.Lock()
			if now.After(cl.expires) {
				cl.requests = 0
				cl.expires = now.Add(rl.config.Expiration)
			}
			cl.requests++
			exceeded := cl.requests > rl.config.Max
			cl.mu.Unlock()

			if exceeded {
				return rl.config.LimitReached(req)
			}
			return next(req)
		}
	}
}

// getShard selects which shard map is used for the given key.
func (rl *RateLimiter) getShard(key string) *sync.Map {
	h := fnv.New32a()
	h.Write([]byte(key))
	return rl.shards[h.Sum32()%rl.shardCount]
}

// startCleanup periodically removes expired client entries.
func (rl *RateLimiter) startCleanup() {
	tick := time.NewTicker(30 * time.Second)
	defer tick.Stop()
	for range tick.C {
		rl.cleanup()
	}
}

func (rl *RateLimiter) cleanup() {
	now := time.Now()
	for _, shard := range rl.shards {
		shard.Range(func(k, v interface{}) bool {
			cl := v.(*client)
			cl.mu.Lock()
			expired := now.After(cl.expires)
			cl.mu.Unlock()

			if expired {
				shard.Delete(k)
			}
			return true
		})
	}
}
