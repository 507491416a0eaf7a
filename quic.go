package weave

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/weaveframe/weave/logging"
)

// QUICServer is C1's QUIC half plus C3's HTTP/3 dispatch path: a single
// UDP listener demuxed by ALPN, the same shape as
// hazyhaar-touchstone-registry/pkg/chassis/server.go's QUIC accept loop,
// adapted to weave's Dispatcher instead of a plain http.Handler mux.
type QUICServer struct {
	addr string
	tlsConfig *tls.Config
	dispatcher *Dispatcher
	h3 *http3.Server
	wt *WebTransportServer
	ln *quic.EarlyListener
	log *logging.Logger
	grace time.Duration
}

// NewQUICServer builds the HTTP/3 server and, if wt is non-nil, layers
// WebTransport CONNECT handling in front of it. grace bounds how long
// Close waits for in-flight HTTP/3 streams to finish after sending
// GOAWAY, mirroring the same grace period the HTTP/1.1+HTTP/2 listener
// drains within.
func NewQUICServer(addr string, tlsConfig *tls.Config, dispatcher *Dispatcher, wt *WebTransportServer, log *logging.Logger, grace time.Duration) *QUICServer {
	tlsConfig = tlsConfig.Clone()
	tlsConfig.NextProtos = []string{"h3"}

	handler := http.Handler(dispatcher)
	if wt != nil {
		handler = wt.wrapHandler(dispatcher)
	}

	return &QUICServer{
		addr: addr,
		tlsConfig: tlsConfig,
		dispatcher: dispatcher,
		h3: &http3.Server{Handler: handler},
		wt: wt,
		log: log,
		grace: grace,
	}
}

// ListenAndServe binds the QUIC/UDP listener and serves HTTP/3 (and, via
// the wrapped handler, WebTransport) until ctx is cancelled.
func (q *QUICServer) ListenAndServe(ctx context.Context) error {
	ln, err := quic.ListenAddrEarly(q.addr, q.tlsConfig, &quic.Config{
		EnableDatagrams: q.wt != nil,
	})
	if err != nil {
		return fmt.Errorf("QUIC listen: %w", err)
	}
	q.ln = ln

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("QUIC accept: %w", err)
		}
		go func() {
			if err := q.h3.ServeQUICConn(conn); err != nil && q.log != nil {
				q.log.WithTrace(ctx).WithError(err).Debug("http/3 connection ended")
			}
		}()
	}
}

// Close stops the QUIC listener from accepting new connections
// immediately, then sends GOAWAY to every open HTTP/3 connection and
// gives in-flight streams up to grace to finish, matching the way the
// HTTP/1.1+HTTP/2 listener is drained rather than cut off abruptly.
func (q *QUICServer) Close() error {
	if q.ln != nil {
		q.ln.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), q.grace)
	defer cancel()
	return q.h3.CloseGracefully(ctx)
}
