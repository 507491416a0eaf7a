// Package recover provides middleware that gracefully handles panics
// during request processing.
//
// When a panic occurs, the middleware intercepts it, optionally prints a
// stack trace, and produces a 500 Internal Server Error response instead
// of letting the panic propagate up to the dispatcher's own goroutine.
//
// You can customize the behavior using the Config struct:
//   - Enable or disable stack trace logging
//   - Provide a custom stack trace handler for advanced logging or reporting
//   - Conditionally skip the middleware using a Next function
package recover

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/weaveframe/weave"
)

// Config defines the configuration for the Recover middleware.
type Config struct {
	// Next is an optional function. If it returns true, panic recovery
	// is skipped for this request.
	Next func(req *weave.Request) bool

	// EnableStacktrace enables printing the stack trace to stderr when a
	// panic occurs. Defaults to true.
	EnableStacktrace bool

	// StackTraceHandler is an optional function that handles the
	// recovered panic, called instead of the default stack trace
	// printer.
	StackTraceHandler func(req *weave.Request, err interface{})
}

// New returns a Recover middleware that catches panics raised by next (or
// anything downstream of it), logs them, and responds with a 500
// Internal Server Error instead of crashing the handler goroutine.
func New(cfgs ...Config) weave.Middleware {
	cfg := defaultConfig(cfgs...)

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (resp *weave.Response, err error) {
			if cfg.Next != nil && cfg.Next(req) {
				return next(req)
			}

			defer func() {
				if r := recover(); r != nil {
					resp = handlePanic(r, cfg, req)
					err = nil
				}
			}()

			return next(req)
		}
	}
}

func defaultConfig(config ...Config) Config {
	if len(config) == 0 {
		return Config{EnableStacktrace: true}
	}
	return config[0]
}

// handlePanic converts a recovered panic value into a 500 Response,
// logging it to stderr (with a stack trace unless disabled) or
// delegating to a custom StackTraceHandler if one is set.
func handlePanic(r interface{}, cfg Config, req *weave.Request) *weave.Response {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("%v", r)
	}

	if cfg.StackTraceHandler != nil {
		cfg.StackTraceHandler(req, r)
	} else if cfg.EnableStacktrace {
		fmt.Fprintf(os.Stderr, "recovered panic: %v\n%s\n", err, debug.Stack())
	} else {
		fmt.Fprintln(os.Stderr, "recovered panic: stacktrace disabled")
	}

	return weave.NewResponse(500).SendString("Internal Server Error")
}
