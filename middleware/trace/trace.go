// Package trace injects trace metadata (trace IDs, user IDs,
// environment tags, ...) into a context.Context derived from the
// request's own context, for later retrieval during logging,
// telemetry, or business logic without threading extra parameters
// through every call.
//
// Values are stored under private keys to avoid collisions and are
// retrieved with GetCtx or GetCtxMap against the context Context
// returns for the current request.
//
//	s.Use(trace.New(trace.Config{
//	    Timeout: 10 * time.Second,
//	    Fields: map[string]func(req *weave.Request) string{
//	        "X-Trace-ID": func(req *weave.Request) string {
//	            if id := req.Header("X-Trace-ID"); id != "" {
//	                return id
//	            }
//	            return uuid.NewString()
//	        },
//	    },
//	}))
//
//	// later, in a handler:
//	traceID := trace.GetCtx(trace.Context(req), "X-Trace-ID")
package trace

import (
	"context"
	"sync"
	"time"

	"github.com/weaveframe/weave"
)

type contextKey struct{ name string }

const internalCtxKeysKey = "__trace_keys__"

var keyCache sync.Map

// extensionKey is where the enriched context.Context built by New is
// stashed on the request, retrievable via Context.
type extensionKeyType struct{}

var extensionKey = extensionKeyType{}

// Config holds middleware settings for injecting trace values.
type Config struct {
	// Fields maps a header/context key name to a function deriving its
	// value from the request.
	Fields map[string]func(req *weave.Request) string

	// Timeout bounds the derived context (default 30s).
	Timeout time.Duration

	// Next skips the middleware if it returns true.
	Next func(req *weave.Request) bool
}

func getCtxKey(name string) *contextKey {
	if name == "" {
		return &contextKey{"TraceID"}
	}
	if v, ok := keyCache.Load(name); ok {
		return v.(*contextKey)
	}
	k := &contextKey{name}
	keyCache.Store(name, k)
	return k
}

// New builds a weave.Middleware that derives an enriched, timeout-bound
// context.Context from each field function and stores it on the
// request for retrieval via Context.
func New(cfg Config) weave.Middleware {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if cfg.Next != nil && cfg.Next(req) {
				return next(req)
			}

			base := req.Context()
			var keysUsed []string

			for key, fn := range cfg.Fields {
				if fn == nil {
					continue
				}
				if val := fn(req); val != "" {
					base = context.WithValue(base, getCtxKey(key), val)
					keysUsed = append(keysUsed, key)
				}
			}
			base = context.WithValue(base, getCtxKey(internalCtxKeysKey), keysUsed)

			ctx, cancel := context.WithTimeout(base, cfg.Timeout)
			defer cancel()

			req.SetExtension(extensionKey, ctx)
			return next(req)
		}
	}
}

// Context returns the enriched context.Context New stored on req, or
// req.Context() unchanged if the middleware never ran.
func Context(req *weave.Request) context.Context {
	if v, ok := req.Extension(extensionKey); ok {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}
	return req.Context()
}

// GetCtx retrieves a single trace value from ctx by key.
func GetCtx(ctx context.Context, key string) string {
	if ctx == nil {
		return ""
	}
	if str, ok := ctx.Value(getCtxKey(key)).(string); ok {
		return str
	}
	return ""
}

// GetCtxMap retrieves every key/value pair New injected into ctx.
func GetCtxMap(ctx context.Context) map[string]string {
	result := make(map[string]string)
	if ctx == nil {
		return result
	}
	names, ok := ctx.Value(getCtxKey(internalCtxKeysKey)).([]string)
	if !ok {
		return result
	}
	for _, name := range names {
		if str, ok := ctx.Value(getCtxKey(name)).(string); ok {
			result[name] = str
		}
	}
	return result
}
