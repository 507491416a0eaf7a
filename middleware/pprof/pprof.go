// Package pprof exposes Go's built-in net/http/pprof profiler under a
// configurable route prefix, for runtime analysis, CPU/heap profiling,
// and goroutine dumps.
//
// Intended for development and staging. In production, either omit
// this middleware entirely or gate it behind Config.Next.
package pprof

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/weaveframe/weave"
)

// Config controls the route prefix pprof is served under and whether
// the middleware is bypassed for a given request.
type Config struct {
	// Prefix is the base route for pprof endpoints. Default "/debug/pprof".
	Prefix string

	// Next, if set and returning true, bypasses this middleware.
	Next func(req *weave.Request) bool
}

var defaultConfig = Config{Prefix: "/debug/pprof"}

// New builds a weave.Middleware that serves pprof's index, cmdline,
// profile, symbol, trace, and runtime-profile (allocs/block/goroutine/
// heap/mutex/threadcreate) endpoints under cfg.Prefix.
//
//	s.Use(pprof.New(pprof.Config{
//	    Next: func(req *weave.Request) bool { return env.IsProd() },
//	}))
func New(config ...Config) weave.Middleware {
	cfg := defaultConfig
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Prefix == "" {
			cfg.Prefix = defaultConfig.Prefix
		}
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if cfg.Next != nil && cfg.Next(req) {
				return next(req)
			}

			path := req.Path()
			if path != cfg.Prefix && !strings.HasPrefix(path, cfg.Prefix+"/") {
				return next(req)
			}

			handler, ok := routeHandler(strings.TrimPrefix(path, cfg.Prefix))
			if !ok {
				return weave.NewResponse(weave.StatusFound).
					Set("Location", cfg.Prefix+"/").Send(nil), nil
			}

			httpReq := (&http.Request{
				Method: req.Method,
				URL:    req.URI,
				Header: req.Headers,
			}).WithContext(req.Context())

			resp := weave.NewResponse(weave.StatusOK)
			resp.Stream(func(w http.ResponseWriter) error {
				handler.ServeHTTP(w, httpReq)
				return nil
			})
			return resp, nil
		}
	}
}

func routeHandler(subpath string) (http.Handler, bool) {
	switch subpath {
	case "", "/":
		return http.HandlerFunc(pprof.Index), true
	case "/cmdline":
		return http.HandlerFunc(pprof.Cmdline), true
	case "/profile":
		return http.HandlerFunc(pprof.Profile), true
	case "/symbol":
		return http.HandlerFunc(pprof.Symbol), true
	case "/trace":
		return http.HandlerFunc(pprof.Trace), true
	case "/allocs":
		return pprof.Handler("allocs"), true
	case "/block":
		return pprof.Handler("block"), true
	case "/goroutine":
		return pprof.Handler("goroutine"), true
	case "/heap":
		return pprof.Handler("heap"), true
	case "/mutex":
		return pprof.Handler("mutex"), true
	case "/threadcreate":
		return pprof.Handler("threadcreate"), true
	default:
		return nil, false
	}
}
