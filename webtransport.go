package weave

import (
	"net/http"

	"github.com/quic-go/webtransport-go"
)

// WebTransportSession is the application-facing handle grants
// a WebTransport handler: receive/send data over the session's default
// bidirectional stream, and a way to end the session. It mirrors the
// WebSocket hooks' shape (on_connect/on_receive/on_send/on_close) but
// speaks WebTransport's stream/datagram model instead of framed messages.
type WebTransportSession struct {
	session *webtransport.Session
}

// RecvData reads up to len(p) bytes from the session's first incoming
// bidirectional stream, opening it lazily on first call.
func (s *WebTransportSession) RecvData(p []byte) (int, error) {
	stream, err := s.session.AcceptStream(s.session.Context())
	if err != nil {
		return 0, err
	}
	return stream.Read(p)
}

// SendData opens a new outgoing unidirectional stream and writes p to it.
func (s *WebTransportSession) SendData(p []byte) error {
	stream, err := s.session.OpenUniStreamSync(s.session.Context())
	if err != nil {
		return err
	}
	defer stream.Close()
	_, err = stream.Write(p)
	return err
}

// Finish closes the session cleanly.
func (s *WebTransportSession) Finish() error {
	return s.session.CloseWithError(0, "session finished")
}

// WebTransportHandler is the application-level callback set invoked over
// a session's lifetime, matching the on_connect/on_close shape
// WebSocketHandler gives WebSocket (WebTransport has no per-message
// hooks since it is stream/datagram oriented, not framed).
type WebTransportHandler struct {
	OnConnect func(session *WebTransportSession)
	OnClose func(session *WebTransportSession)
}

// WebTransportServer intercepts CONNECT requests carrying the
// ":protocol: webtransport" pseudo-header extension and upgrades them,
// handing the resulting session to Handler. Built on
// github.com/quic-go/webtransport-go, grounded on
// other_examples/teonet-go-webtransport-go/webtransport.go's CONNECT/
// protocol-extension handshake shape.
type WebTransportServer struct {
	upgrader *webtransport.Server
	handler WebTransportHandler
	metrics *Metrics
	path string
}

// NewWebTransportServer builds a server that upgrades WebTransport
// sessions arriving at path, invoking handler for each.
func NewWebTransportServer(path string, handler WebTransportHandler, metrics *Metrics) *WebTransportServer {
	return &WebTransportServer{
		upgrader: &webtransport.Server{},
		handler: handler,
		metrics: metrics,
		path: path,
	}
}

// wrapHandler intercepts matching CONNECT requests before they reach
// fallback, which keeps serving ordinary HTTP/3 requests unchanged.
func (s *WebTransportServer) wrapHandler(fallback http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodConnect || r.URL.Path != s.path {
			fallback.ServeHTTP(w, r)
			return
		}
		session, err := s.upgrader.Upgrade(w, r)
		if err != nil {
			if s.metrics != nil {
				s.metrics.WebTransportError.Inc()
			}
			w.WriteHeader(StatusInternalServerError)
			return
		}
		if s.metrics != nil {
			s.metrics.WebTransportAccept.Inc()
		}
		wts := &WebTransportSession{session: session}
		if s.handler.OnConnect != nil {
			s.handler.OnConnect(wts)
		}
		<-session.Context().Done()
		if s.handler.OnClose != nil {
			s.handler.OnClose(wts)
		}
	})
}
