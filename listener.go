package weave

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
)

// ListenerSet is C1: one or more raw listeners (TCP, TLS, Unix) accepted
// from fairly, racing their Accept calls into a single channel so no one
// listener can starve the others. It satisfies net.Listener so it can be
// handed straight to an *http.Server's Serve method, the same way the
// teacher hands its SO_REUSEPORT-tuned listener to http.Server.ServeTLS
// (quick.go's ListenTLS/startServerWithGracefulShutdown).
type ListenerSet struct {
	listeners []net.Listener
	admission *AdmissionController
	metrics *Metrics

	accepted chan acceptResult
	closeErr chan struct{}
	closeMu sync.Mutex
	closed bool
}

type acceptResult struct {
	conn net.Conn
	kind Transport
	err error
}

// admittedConn wraps a connection the AdmissionController let through so
// its concurrency slot is freed exactly once, on whichever Close call
// actually closes the connection.
type admittedConn struct {
	net.Conn
	release func()
	once sync.Once
}

func (c *admittedConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(c.release)
	return err
}

// NewListenerSet wraps listeners for fair racing. kinds must be the same
// length as listeners and tags each with its Transport.
func NewListenerSet(listeners []net.Listener, kinds []Transport, admission *AdmissionController, metrics *Metrics) *ListenerSet {
	ls := &ListenerSet{
		listeners: listeners,
		admission: admission,
		metrics: metrics,
		accepted: make(chan acceptResult),
		closeErr: make(chan struct{}),
	}
	for i, l := range listeners {
		go ls.acceptLoop(l, kinds[i])
	}
	return ls
}

func (ls *ListenerSet) acceptLoop(l net.Listener, kind Transport) {
	for {
		conn, err := l.Accept()
		select {
		case ls.accepted <- acceptResult{conn: conn, kind: kind, err: err}:
		case <-ls.closeErr:
			if conn != nil {
				conn.Close()
			}
			return
		}
		if err != nil {
			return
		}
	}
}

// Accept implements net.Listener. It admits the accepted connection
// through the AdmissionController before returning it; a rejected
// connection is closed immediately and Accept tries the next one, so
// callers (http.Server.Serve) never see a rejected connection at all.
func (ls *ListenerSet) Accept() (net.Conn, error) {
	for {
		select {
		case res := <-ls.accepted:
			if res.err != nil {
				if ls.metrics != nil {
					ls.metrics.AcceptErr.Inc()
				}
				return nil, res.err
			}
			if ls.admission != nil && !ls.admission.Admit(context.Background()) {
				if ls.metrics != nil {
					ls.metrics.RateLimiterClosed.Inc()
				}
				res.conn.Close()
				continue
			}
			if ls.metrics != nil {
				ls.metrics.AcceptOK.Inc()
			}
			if ls.admission != nil {
				return &admittedConn{Conn: res.conn, release: ls.admission.Release}, nil
			}
			return res.conn, nil
		case <-ls.closeErr:
			return nil, net.ErrClosed
		}
	}
}

func (ls *ListenerSet) Close() error {
	ls.closeMu.Lock()
	defer ls.closeMu.Unlock()
	if ls.closed {
		return nil
	}
	ls.closed = true
	close(ls.closeErr)
	var firstErr error
	for _, l := range ls.listeners {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Addr returns the first listener's address (matching net.Listener; a
// ListenerSet is typically built from listeners sharing one bind port).
func (ls *ListenerSet) Addr() net.Addr {
	if len(ls.listeners) == 0 {
		return nil
	}
	return ls.listeners[0].Addr()
}

// ListenTCP opens a plain TCP listener on addr.
func ListenTCP(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}

// ListenUnix opens a Unix domain socket listener at path.
func ListenUnix(path string) (net.Listener, error) {
	return net.Listen("unix", path)
}

// ListenTLSConfig builds a modern TLS configuration, following the
// teacher's own ListenTLS defaults (TLS 1.3 floor, curve/cipher
// preferences, session resumption cache) when cfg is nil.
func ListenTLSConfig(cfg *tls.Config, http2 bool) *tls.Config {
	if cfg == nil {
		cfg = &tls.Config{
			MinVersion: tls.VersionTLS13,
			CurvePreferences: []tls.CurveID{tls.X25519, tls.CurveP256},
			CipherSuites: []uint16{
				tls.TLS_AES_128_GCM_SHA256,
				tls.TLS_AES_256_GCM_SHA384,
				tls.TLS_CHACHA20_POLY1305_SHA256,
			},
			SessionTicketsDisabled: false,
			ClientSessionCache: tls.NewLRUClientSessionCache(128),
		}
	}
	if http2 {
		cfg.NextProtos = []string{"h2", "http/1.1"}
	} else {
		cfg.NextProtos = []string{"http/1.1"}
	}
	return cfg
}

// ListenTLS opens a TLS-wrapped TCP listener on addr using cert/key.
func ListenTLS(addr, certFile, keyFile string, cfg *tls.Config) (net.Listener, error) {
	tlsCfg := cfg.Clone()
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load TLS cert: %w", err)
	}
	tlsCfg.Certificates = []tls.Certificate{cert}
	return tls.Listen("tcp", addr, tlsCfg)
}
