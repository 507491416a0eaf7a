// Package helmet provides middleware that sets various HTTP headers to
// help secure an application.
//
// Inspired by Helmet in the Node.js ecosystem, this package includes
// protections against well-known web vulnerabilities by configuring
// headers such as:
//
//   - X-XSS-Protection
//   - X-Content-Type-Options
//   - X-Frame-Options
//   - Content-Security-Policy
//   - Referrer-Policy
//   - Permissions-Policy
//   - Cross-Origin-Embedder-Policy / Opener-Policy / Resource-Policy
//   - Origin-Agent-Cluster
//   - X-DNS-Prefetch-Control
//   - X-Download-Options
//   - X-Permitted-Cross-Domain-Policies
//   - Strict-Transport-Security (TLS connections only)
//   - Cache-Control
//
// It provides secure defaults, but allows customization via the Options
// struct. You can skip the middleware for specific requests by providing
// a Next function.
package helmet

import (
	"fmt"

	"github.com/weaveframe/weave"
)

// Options defines the configuration for the Helmet middleware. Each
// field maps to a specific HTTP header.
type Options struct {
	Next func(req *weave.Request) bool

	XSSProtection         string
	ContentTypeNosniff    string
	XFrameOptions         string
	ContentSecurityPolicy string
	CSPReportOnly         bool
	ReferrerPolicy        string
	PermissionsPolicy     string

	CrossOriginEmbedderPolicy string
	CrossOriginOpenerPolicy   string
	CrossOriginResourcePolicy string

	OriginAgentCluster    string
	XDNSPrefetchControl   string
	XDownloadOptions      string
	XPermittedCrossDomain string

	HSTSMaxAge            int
	HSTSExcludeSubdomains bool
	HSTSPreloadEnabled    bool

	CacheControl string
}

// Helmet builds a weave.Middleware that adds security-related headers to
// every response. Passing no Options uses secure defaults.
//
//	s.Use(helmet.Helmet(helmet.Options{
//	    XFrameOptions: "DENY",
//	    HSTSMaxAge:    31536000,
//	}))
func Helmet(opt ...Options) weave.Middleware {
	options := defaultOptions()
	if len(opt) > 0 {
		options = opt[0]
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if options.Next != nil && options.Next(req) {
				return next(req)
			}

			resp, err := next(req)
			if err != nil || resp == nil {
				return resp, err
			}

			setIfNotEmpty(resp, "X-XSS-Protection", options.XSSProtection)
			setIfNotEmpty(resp, "X-Content-Type-Options", options.ContentTypeNosniff)
			setIfNotEmpty(resp, "X-Frame-Options", options.XFrameOptions)

			if options.ContentSecurityPolicy != "" {
				if options.CSPReportOnly {
					resp.Set("Content-Security-Policy-Report-Only", options.ContentSecurityPolicy)
				} else {
					resp.Set("Content-Security-Policy", options.ContentSecurityPolicy)
				}
			}

			setIfNotEmpty(resp, "Referrer-Policy", options.ReferrerPolicy)
			setIfNotEmpty(resp, "Permissions-Policy", options.PermissionsPolicy)
			setIfNotEmpty(resp, "Cross-Origin-Embedder-Policy", options.CrossOriginEmbedderPolicy)
			setIfNotEmpty(resp, "Cross-Origin-Opener-Policy", options.CrossOriginOpenerPolicy)
			setIfNotEmpty(resp, "Cross-Origin-Resource-Policy", options.CrossOriginResourcePolicy)
			setIfNotEmpty(resp, "Origin-Agent-Cluster", options.OriginAgentCluster)
			setIfNotEmpty(resp, "X-DNS-Prefetch-Control", options.XDNSPrefetchControl)
			setIfNotEmpty(resp, "X-Download-Options", options.XDownloadOptions)
			setIfNotEmpty(resp, "X-Permitted-Cross-Domain-Policies", options.XPermittedCrossDomain)

			if req.TLS && options.HSTSMaxAge > 0 {
				hsts := fmt.Sprintf("max-age=%d", options.HSTSMaxAge)
				if !options.HSTSExcludeSubdomains {
					hsts += "; includeSubDomains"
				}
				if options.HSTSPreloadEnabled {
					hsts += "; preload"
				}
				resp.Set("Strict-Transport-Security", hsts)
			}

			setIfNotEmpty(resp, "Cache-Control", options.CacheControl)

			return resp, nil
		}
	}
}

// defaultOptions returns a set of secure default values for the Helmet
// middleware.
func defaultOptions() Options {
	return Options{
		XSSProtection:             "0",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		ContentSecurityPolicy:     "default-src 'self'",
		ReferrerPolicy:            "no-referrer",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
		HSTSMaxAge:                31536000,
		HSTSPreloadEnabled:        true,
		CacheControl:              "no-cache, no-store, must-revalidate",
	}
}

func setIfNotEmpty(resp *weave.Response, key, value string) {
	if value != "" {
		resp.Set(key, value)
	}
}
