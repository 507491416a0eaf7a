// Package cors provides Cross-Origin Resource Sharing middleware for
// weave servers, built on github.com/rs/cors for the actual origin,
// method, and header negotiation logic.
package cors

import (
	"net/http"
	"net/http/httptest"

	rscors "github.com/rs/cors"

	"github.com/weaveframe/weave"
)

// Config is the subset of rs/cors' Options this middleware exposes.
type Config struct {
	// AllowedOrigins is a list of origins a cross-domain request can be
	// executed from. "*" allows all. Default is ["*"].
	AllowedOrigins []string
	// AllowOriginFunc validates the origin directly; if set,
	// AllowedOrigins is ignored.
	AllowOriginFunc func(origin string) bool
	// AllowedMethods is a list of methods permitted in cross-domain
	// requests.
	AllowedMethods []string
	// AllowedHeaders is a list of non-simple headers permitted in
	// cross-domain requests. "*" allows all.
	AllowedHeaders []string
	// ExposedHeaders indicates which headers are safe to expose.
	ExposedHeaders []string
	// MaxAge indicates how long, in seconds, a preflight response may
	// be cached.
	MaxAge int
	// AllowCredentials indicates whether the request may include
	// cookies, HTTP authentication, or client-side SSL certificates.
	AllowCredentials bool
	// OptionsSuccessStatus is the status code returned for a
	// successfully handled preflight request. Default 204.
	OptionsSuccessStatus int
}

// ConfigDefault is the default CORS configuration.
var ConfigDefault = Config{
	AllowedOrigins:       []string{"*"},
	AllowedMethods:       []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:       []string{"Origin", "Content-Type", "Accept", "Authorization"},
	ExposedHeaders:       []string{"Content-Length"},
	AllowCredentials:     false,
	MaxAge:               600,
	OptionsSuccessStatus: 204,
}

// New builds a weave.Middleware applying CORS rules to every request,
// delegating the actual negotiation to rs/cors. Since rs/cors is built
// around http.Handler/http.ResponseWriter rather than weave's buffered
// Response, each request is bridged through an httptest.ResponseRecorder:
// rs/cors writes headers (and, for a rejected or preflight request, the
// final status) onto the recorder, and those are copied onto the real
// *weave.Response before it's returned — the same adapt-the-boundary
// technique middleware/pprof uses to hand pprof's handlers a live
// http.ResponseWriter.
func New(config ...Config) weave.Middleware {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
		if cfg.OptionsSuccessStatus == 0 {
			cfg.OptionsSuccessStatus = ConfigDefault.OptionsSuccessStatus
		}
	}

	c := rscors.New(rscors.Options{
		AllowedOrigins:       cfg.AllowedOrigins,
		AllowOriginFunc:      cfg.AllowOriginFunc,
		AllowedMethods:       cfg.AllowedMethods,
		AllowedHeaders:       cfg.AllowedHeaders,
		ExposedHeaders:       cfg.ExposedHeaders,
		MaxAge:               cfg.MaxAge,
		AllowCredentials:     cfg.AllowCredentials,
		OptionsSuccessStatus: cfg.OptionsSuccessStatus,
	})

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			httpReq := (&http.Request{
				Method: req.Method,
				URL:    req.URI,
				Header: req.Headers.Clone(),
			}).WithContext(req.Context())

			rec := httptest.NewRecorder()
			var resp *weave.Response
			var err error
			reached := false

			c.ServeHTTP(rec, httpReq, func(w http.ResponseWriter, r *http.Request) {
				reached = true
				resp, err = next(req)
			})

			if !reached {
				out := weave.NewResponse(rec.Code)
				copyHeaders(out, rec.Header())
				return out, nil
			}
			if resp != nil {
				copyHeaders(resp, rec.Header())
			}
			return resp, err
		}
	}
}

func copyHeaders(resp *weave.Response, h http.Header) {
	for k, vs := range h {
		for _, v := range vs {
			resp.Add(k, v)
		}
	}
}

// Default returns config[0] if given, otherwise ConfigDefault.
func Default(config ...Config) Config {
	if len(config) > 0 {
		return config[0]
	}
	return ConfigDefault
}
