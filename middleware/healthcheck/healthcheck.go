// Package healthcheck provides a middleware and endpoint for application
// health monitoring.
//
// It lets a weave.Server expose a configurable healthcheck endpoint,
// usable by external systems (load balancers, orchestrators) to verify
// the application is running and healthy.
//
// Features:
//   - Customizable endpoint path (default "/healthcheck")
//   - Support for a user-defined health probe
//   - Option to skip the middleware conditionally with a Next function
//   - Automatically registers the healthcheck route during application setup
//
// The middleware itself does not modify the flow of other routes; it
// only responds to the configured healthcheck endpoint.
package healthcheck

import (
	"github.com/weaveframe/weave"
)

// anyMethods lists the methods registered for the healthcheck endpoint.
// HEAD is not listed: the route tree falls back to GET for HEAD requests
// on its own.
var anyMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

// Options defines the configuration for the healthcheck middleware.
type Options struct {
	// Next, if it returns true, skips the probe and reports 404 instead.
	Next func(req *weave.Request) bool

	// Endpoint is the route path registered for the healthcheck. Default
	// "/healthcheck".
	Endpoint string

	// Probe runs on every healthcheck request; true means healthy.
	// Default: always true.
	Probe func(req *weave.Request) bool

	// App is the Server instance the endpoint is registered against.
	// Required.
	App *weave.Server
}

// New registers the healthcheck endpoint on option.App and returns a
// pass-through middleware (the healthcheck route itself, not this
// middleware, is what answers /healthcheck — New just needs to run once
// during setup to perform that registration).
//
//	app := weave.New()
//	app.Use(healthcheck.New(healthcheck.Options{
//	    App:      app,
//	    Endpoint: "/health",
//	    Probe: func(req *weave.Request) bool { return true },
//	}))
func New(opt ...Options) weave.Middleware {
	option := defaultOptions(opt...)

	handler := func(req *weave.Request) (*weave.Response, error) {
		if option.Next != nil && option.Next(req) {
			return weave.NewResponse(404).SendString("Not Found"), nil
		}
		if req.Method != "GET" {
			return weave.NewResponse(405).SendString("Method Not Allowed"), nil
		}
		if option.Probe(req) {
			return weave.NewResponse(200).SendString("OK"), nil
		}
		return weave.NewResponse(503).SendString("Service Unavailable"), nil
	}

	for _, m := range anyMethods {
		switch m {
		case "GET":
			option.App.Get(option.Endpoint, handler)
		case "POST":
			option.App.Post(option.Endpoint, handler)
		case "PUT":
			option.App.Put(option.Endpoint, handler)
		case "DELETE":
			option.App.Delete(option.Endpoint, handler)
		case "PATCH":
			option.App.Patch(option.Endpoint, handler)
		}
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			return next(req)
		}
	}
}

// defaultOptions applies sane defaults. App is required and New panics
// without it, since there is no route to register the endpoint against.
func defaultOptions(opt ...Options) Options {
	cfg := Options{
		Endpoint: "/healthcheck",
		Probe:    func(req *weave.Request) bool { return true },
	}
	if len(opt) > 0 {
		cfg = opt[0]
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "/healthcheck"
	}
	if cfg.Probe == nil {
		cfg.Probe = func(req *weave.Request) bool { return true }
	}
	if cfg.App == nil {
		panic("healthcheck.New: Options.App is required to register the endpoint")
	}
	return cfg
}
