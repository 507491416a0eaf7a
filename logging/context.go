// Package logging provides the core's structured logger (built on
// logrus) and a fluent context-trace builder adapted from quick's
// glog/glog_ctx.go: inject a handful of string fields (trace ID,
// connection ID, ...) into a context.Context with no extra allocations
// beyond the first time a given key name is seen.
package logging

import (
	"context"
	"sync"
	"time"
)

const internalKeysKey = "__weave_ctx_keys__"

const defaultCtxTimeout = 30 * time.Second

type contextKey string

var keyCache sync.Map // map[string]contextKey

func ctxKey(name string) contextKey {
	if v, ok := keyCache.Load(name); ok {
		return v.(contextKey)
	}
	k := contextKey(name)
	keyCache.Store(name, k)
	return k
}

// TraceBuilder is a fluent builder for a context.Context carrying a
// handful of string fields plus an optional timeout, used to thread a
// request's trace ID (and similar) through to its log entries.
type TraceBuilder struct {
	parent  context.Context
	fields  map[string]string
	timeout time.Duration
}

// NewTrace starts a TraceBuilder rooted at parent (context.Background()
// if nil).
func NewTrace(parent context.Context) *TraceBuilder {
	if parent == nil {
		parent = context.Background()
	}
	return &TraceBuilder{parent: parent, fields: make(map[string]string), timeout: defaultCtxTimeout}
}

// Set injects key=value; empty keys/values are ignored.
func (b *TraceBuilder) Set(key, value string) *TraceBuilder {
	if key != "" && value != "" {
		b.fields[key] = value
	}
	return b
}

// Timeout overrides the default 30s timeout Build applies.
func (b *TraceBuilder) Timeout(d time.Duration) *TraceBuilder {
	if d > 0 {
		b.timeout = d
	}
	return b
}

// Build returns a context carrying every field set so far, plus a cancel
// function bound to the builder's timeout.
func (b *TraceBuilder) Build() (context.Context, context.CancelFunc) {
	ctx := b.parent
	keys := make([]string, 0, len(b.fields))
	for k, v := range b.fields {
		ctx = context.WithValue(ctx, ctxKey(k), v)
		keys = append(keys, k)
	}
	ctx = context.WithValue(ctx, internalKeysKey, keys)
	return context.WithTimeout(ctx, b.timeout)
}

// Get retrieves a single field previously injected by TraceBuilder.
func Get(ctx context.Context, key string) string {
	if ctx == nil || key == "" {
		return ""
	}
	v, _ := ctx.Value(ctxKey(key)).(string)
	return v
}

// Fields returns every field previously injected by TraceBuilder, for
// handing straight to logrus.WithFields.
func Fields(ctx context.Context) map[string]any {
	out := make(map[string]any)
	if ctx == nil {
		return out
	}
	keys, _ := ctx.Value(internalKeysKey).([]string)
	for _, k := range keys {
		out[k] = Get(ctx, k)
	}
	return out
}
