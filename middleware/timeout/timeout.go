// Package timeout provides an opt-in, per-route request deadline,
// distinct from the dispatcher's own handler timeout: this middleware
// reports a 408 Request Timeout (the request itself took too long), not
// a 504 Gateway Timeout (the server couldn't produce a response at all).
package timeout

import (
	"context"
	"time"

	"github.com/weaveframe/weave"
)

// Options configures the timeout middleware.
type Options struct {
	// Duration is the per-request deadline. Zero or negative disables
	// the middleware entirely.
	Duration time.Duration

	// Next is an optional function. If it returns true, the middleware
	// is skipped for this request.
	Next func(req *weave.Request) bool
}

func defaultOptions(opt ...Options) Options {
	if len(opt) == 0 {
		return Options{Duration: 5 * time.Second}
	}
	return opt[0]
}

// New builds a weave.Middleware enforcing option.Duration as a deadline
// on next. If next doesn't finish before the deadline, the middleware
// returns 408 Request Timeout immediately; the handler goroutine itself
// is not interrupted (only the dispatcher's own handlerTimeout produces
// that guarantee, via a 504).
//
//	s.Use(timeout.New(timeout.Options{Duration: 5 * time.Second}))
func New(opt ...Options) weave.Middleware {
	option := defaultOptions(opt...)

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if option.Next != nil && option.Next(req) {
				return next(req)
			}
			if option.Duration <= 0 {
				return next(req)
			}

			ctx, cancel := context.WithTimeout(req.Context(), option.Duration)
			defer cancel()

			done := make(chan struct{})
			var resp *weave.Response
			var err error
			go func() {
				resp, err = next(req)
				close(done)
			}()

			select {
			case <-done:
				return resp, err
			case <-ctx.Done():
				return weave.NewResponse(408).SendString("Request Timeout"), nil
			}
		}
	}
}
