package weave

import (
	"crypto/tls"
	"reflect"
	"runtime"
	"time"
)

// Config holds the server-wide settings a Server is built with. It plays
// the same role as the framework's own Config: a plain struct passed to the
// constructor, not a builder or a functional-options chain.
type Config struct {
	MaxBodySize int64 // Maximum request body size allowed, in bytes.
	MaxHeaderBytes int // Maximum number of bytes allowed in request headers.

	GOMAXPROCS int // Maximum number of CPU cores the process may use. 0 leaves runtime default.

	ReadTimeout time.Duration // Maximum duration for reading the entire request.
	WriteTimeout time.Duration // Maximum duration before timing out response writes.
	IdleTimeout time.Duration // Maximum time to wait for the next request on a keep-alive connection.
	ReadHeaderTimeout time.Duration // Amount of time allowed to read request headers.
	HandlerTimeout time.Duration // Per-request deadline; exceeding it yields a 504.

	AcceptQueueDepth int // Admission controller token bucket capacity. 0 rejects every connection.
	RefillEvery time.Duration
	MaxAdmitWait time.Duration

	ShutdownGrace time.Duration // Grace period before the shutdown controller force-aborts.

	TLSConfig *tls.Config

	QUICPort int // When non-zero, C1 also binds a QUIC/HTTP3 listener on this port.

	NoBanner bool // Disables the startup Display banner.
}

// defaultConfig mirrors the framework's defaultConfig: sane values for
// running the server with zero configuration.
var defaultConfig = Config{
	MaxBodySize: 2 * 1024 * 1024,
	MaxHeaderBytes: 1 * 1024 * 1024,

	GOMAXPROCS: runtime.NumCPU(),

	ReadTimeout: 15 * time.Second,
	WriteTimeout: 15 * time.Second,
	IdleTimeout: 60 * time.Second,
	ReadHeaderTimeout: 5 * time.Second,
	HandlerTimeout: 30 * time.Second,

	AcceptQueueDepth: 1024,
	RefillEvery: time.Millisecond,
	MaxAdmitWait: 2 * time.Second,

	ShutdownGrace: 10 * time.Second,

	NoBanner: false,
}

// Configs is the per-request, shared immutable map keyed by type that
// "Shared state" requires: handlers obtain typed references
// with no locking, because nothing in it is ever mutated after the
// Server starts.
type Configs struct {
	values map[reflect.Type]any
}

// NewConfigs builds an empty Configs. Use Provide to register values
// before the Server starts serving; the map is never written to again
// after that point.
func NewConfigs() *Configs {
	return &Configs{values: make(map[reflect.Type]any)}
}

// Provide registers v under its own concrete type. Only valid before the
// Server starts accepting connections.
func Provide[T any](c *Configs, v T) {
	c.values[reflect.TypeOf(v)] = v
}

// ConfigOf retrieves the value registered for type T, if any.
func ConfigOf[T any](c *Configs) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, ok := c.values[reflect.TypeOf(zero)]
	if !ok {
		return zero, false
	}
	return v.(T), true
}
