package weave

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/weaveframe/weave/logging"
)

// Server is weave's top-level type: it owns the route tree being built,
// and once Listen starts, wires together C1 (ListenerSet) + C2
// (AdmissionController) + C3 (Dispatcher) + the optional QUIC/
// WebTransport servers + C6 (GracefulShutdown). Modeled on the framework's
// Quick type, split across the core components the spec names instead
// of one god-object.
type Server struct {
	config Config
	root *Route
	log *logging.Logger
	reg prometheus.Registerer
	metrics *Metrics

	dispatcher *Dispatcher
	cfgs *Configs

	httpServer *http.Server
	quicServer *QUICServer
	listeners *ListenerSet
	shutdown *GracefulShutdown
}

// New builds a Server with the given config (or defaultConfig if none
// is provided), matching the framework's New(c ...Config) variadic-default
// convention.
func New(c ...Config) *Server {
	cfg := defaultConfig
	if len(c) > 0 {
		cfg = c[0]
	}
	return &Server{
		config: cfg,
		root: NewRoute(""),
		log: logging.New(),
		reg: prometheus.NewRegistry(),
	}
}

// Root returns the server's root Route, the entry point for registering
// handlers and middleware before Listen is called.
func (s *Server) Root() *Route { return s.root }

// Use registers a middleware that applies to every request, regardless
// of which route eventually matches (or fails to match).
func (s *Server) Use(mw Middleware) *Server {
	s.root.Hook(mw)
	return s
}

// Get/Post/Put/Delete/Patch register a handler on the root route's
// matching pattern, thin forwarders to Route's own method helpers so
// simple apps never need to touch Root() directly.
func (s *Server) Get(pattern string, h Handler) *Server { s.route(pattern, "GET", h); return s }
func (s *Server) Post(pattern string, h Handler) *Server { s.route(pattern, "POST", h); return s }
func (s *Server) Put(pattern string, h Handler) *Server { s.route(pattern, "PUT", h); return s }
func (s *Server) Delete(pattern string, h Handler) *Server { s.route(pattern, "DELETE", h); return s }
func (s *Server) Patch(pattern string, h Handler) *Server { s.route(pattern, "PATCH", h); return s }

func (s *Server) route(pattern, method string, h Handler) {
	child := NewRoute(pattern)
	child.method(method, h)
	s.root.Append(child)
}

// Mount attaches a pre-built Route subtree (e.g. a group built with
// NewRoute("/v1").Extend(...)) under the server's root.
func (s *Server) Mount(r *Route) *Server {
	s.root.Append(r)
	return s
}

// Metrics returns the Prometheus registerer backing this server, so
// callers can expose it on a /metrics endpoint.
func (s *Server) Registerer() prometheus.Registerer { return s.reg }

// Logger returns the server's structured logger.
func (s *Server) Logger() *logging.Logger { return s.log }

// build finalizes the route tree and the shared components every
// listener needs. Idempotent: a second call (e.g. from both Handler and
// ListenAndServe) returns the same Dispatcher instead of re-registering
// metrics with the Prometheus registerer.
func (s *Server) build() (*Dispatcher, *Configs) {
	if s.dispatcher != nil {
		return s.dispatcher, s.cfgs
	}
	s.metrics = NewMetrics(s.reg)
	tree := NewRouteTree(s.root)
	s.cfgs = NewConfigs()
	s.dispatcher = NewDispatcher(tree, s.cfgs, s.config.HandlerTimeout, s.config.MaxBodySize, s.metrics, s.log)
	return s.dispatcher, s.cfgs
}

// Handler finalizes the route tree and returns the resulting
// http.Handler without binding any listener, for use in tests
// (weavetest) via httptest.NewRecorder.
func (s *Server) Handler() http.Handler {
	dispatcher, _ := s.build()
	return dispatcher
}

// Configs returns the server's shared configuration handle, so
// Provide[T] can register values before the server starts serving.
func (s *Server) Configs() *Configs {
	_, cfgs := s.build()
	return cfgs
}

// ListenAndServe starts the HTTP/1.1+HTTP/2 listener (and the HTTP/3
// listener, if config.QUICPort is set) behind the admission controller,
// and blocks until ctx is cancelled or a termination signal arrives, at
// which point it runs the C6 graceful shutdown sequence.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	dispatcher, _ := s.build()

	admission := NewAdmissionController(s.config.AcceptQueueDepth, s.config.RefillEvery, s.config.MaxAdmitWait)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	kind := TransportTCP
	tlsCfg := s.config.TLSConfig
	if tlsCfg != nil {
		ln = tls.NewListener(ln, ListenTLSConfig(tlsCfg, true))
		kind = TransportTLS
	}

	s.listeners = NewListenerSet([]net.Listener{ln}, []Transport{kind}, admission, s.metrics)

	s.httpServer = &http.Server{
		Handler: dispatcher,
		ReadTimeout: s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout: s.config.IdleTimeout,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}

	s.shutdown = NewGracefulShutdown(s.config.ShutdownGrace, s.log, s.metrics, s.httpServer.Shutdown)
	s.shutdown.Watch(closerFunc(func() error { return s.listeners.Close() }))

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(s.listeners); err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	if s.config.QUICPort > 0 && tlsCfg != nil {
		quicAddr := fmt.Sprintf(":%d", s.config.QUICPort)
		s.quicServer = NewQUICServer(quicAddr, tlsCfg, dispatcher, nil, s.log, s.config.ShutdownGrace)
		s.shutdown.Watch(closerFunc(func() error { return s.quicServer.Close() }))
		go func() {
			if err := s.quicServer.ListenAndServe(ctx); err != nil {
				s.log.WithTrace(ctx).WithError(err).Warn("quic server stopped")
			}
		}()
	}

	if !s.config.NoBanner {
		printBanner(s.log, addr, s.config)
	}

	shutdownDone := make(chan error, 1)
	go func() { shutdownDone <- s.shutdown.Run(ctx) }()

	select {
	case err := <-serverErr:
		return err
	case err := <-shutdownDone:
		return err
	}
}

// Shutdown triggers the graceful shutdown sequence programmatically,
// without waiting for a signal. Useful from tests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if s.listeners != nil {
		s.listeners.Close()
	}
	if s.quicServer != nil {
		s.quicServer.Close()
	}
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
