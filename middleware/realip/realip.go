// Package realip overrides a request's reported peer address with the
// client IP asserted by a trusted reverse proxy, read from a
// configurable header (X-Forwarded-For or X-Real-IP).
//
// It never trusts the header blindly: the socket peer itself must fall
// within one of the configured TrustedProxies networks before its
// header is honored, so a direct-connecting client can't spoof its own
// address by setting the header.
package realip

import (
	"net"
	"strings"

	"github.com/weaveframe/weave"
)

// Header selects which proxy-supplied header to read the client IP from.
type Header int

const (
	// HeaderXForwardedFor reads the left-most address of a
	// comma-separated X-Forwarded-For chain.
	HeaderXForwardedFor Header = iota
	// HeaderXRealIP reads a single-value X-Real-IP header.
	HeaderXRealIP
)

// Config configures the realip middleware.
type Config struct {
	// Header selects which header to trust. Default HeaderXForwardedFor.
	Header Header

	// TrustedProxies lists the CIDR blocks a socket peer must belong to
	// before its forwarded-for header is honored. An empty list trusts
	// no one, making this middleware a no-op.
	TrustedProxies []string

	// Next skips the middleware entirely when it returns true.
	Next func(req *weave.Request) bool
}

// ConfigDefault trusts private/loopback networks, the common case for
// a server sitting behind an nginx/HAProxy instance on the same host
// or in the same private network.
var ConfigDefault = Config{
	Header: HeaderXForwardedFor,
	TrustedProxies: []string{
		"127.0.0.0/8",
		"::1/128",
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
	},
}

// New builds a weave.Middleware that overrides req.Peer.Trusted with
// the client IP reported by a trusted proxy.
func New(config ...Config) weave.Middleware {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}

	nets := make([]*net.IPNet, 0, len(cfg.TrustedProxies))
	for _, cidr := range cfg.TrustedProxies {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		nets = append(nets, n)
	}

	headerName := "X-Forwarded-For"
	if cfg.Header == HeaderXRealIP {
		headerName = "X-Real-IP"
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if cfg.Next != nil && cfg.Next(req) {
				return next(req)
			}

			if peerTrusted(req.Peer, nets) {
				if ip := clientIP(req.Header(headerName), cfg.Header); ip != nil {
					req.Peer.Trusted = ip
				}
			}

			return next(req)
		}
	}
}

func peerTrusted(peer weave.PeerAddr, nets []*net.IPNet) bool {
	if len(nets) == 0 {
		return false
	}
	host := peer.RemoteIP()
	if host == "" {
		return false
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func clientIP(headerValue string, kind Header) net.IP {
	if headerValue == "" {
		return nil
	}
	value := headerValue
	if kind == HeaderXForwardedFor {
		if idx := strings.IndexByte(headerValue, ','); idx >= 0 {
			value = headerValue[:idx]
		}
	}
	value = strings.TrimSpace(value)
	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}
	return net.ParseIP(value)
}
