package weave

import (
	"context"
	"net/http"
	"time"

	"github.com/weaveframe/weave/logging"
)

// Dispatcher is C3: it owns the per-connection task logic the spec
// describes, implemented as an http.Handler so the HTTP/1.1+HTTP/2 wire
// codec (explicitly a collaborator, not specified here) can be whatever
// the standard library's net/http or net/http+http3 provides.
type Dispatcher struct {
	tree *RouteTree
	cfg *Configs
	handlerTimeout time.Duration
	maxBodySize int64
	metrics *Metrics
	log *logging.Logger
}

// NewDispatcher builds a Dispatcher wired to tree and the given limits.
func NewDispatcher(tree *RouteTree, cfg *Configs, handlerTimeout time.Duration, maxBodySize int64, metrics *Metrics, log *logging.Logger) *Dispatcher {
	return &Dispatcher{tree: tree, cfg: cfg, handlerTimeout: handlerTimeout, maxBodySize: maxBodySize, metrics: metrics, log: log}
}

// ServeHTTP builds a Request from r, enforces the per-request handler
// timeout and body-size bound, runs the C5 pipeline, and writes the
// Response to w. This is the HTTP/1.1+HTTP/2 path; the HTTP/3 path
// (quic.go) builds its own Request from an http3 stream but shares
// everything from Dispatch onward.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if d.handlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.handlerTimeout)
		defer cancel()
	}

	peer := peerAddrFromRemoteAddr(r.RemoteAddr)
	r.Body = newBoundedBody(r.Body, d.maxBodySize)

	req := acquireRequest(ctx, r, peer, d.cfg)

	start := time.Now()
	resp, completed := runWithTimeout(ctx, func() *Response { return Dispatch(d.tree, req) })
	d.recordHandlerMetrics(resp, time.Since(start))

	// A straggler goroutine from a timed-out handler may still be
	// reading req; only the pool, not correctness, is at stake, so only
	// recycle req once we know Dispatch actually returned.
	if completed {
		defer releaseRequest(req)
	}

	if intent, ok := resp.isUpgrade(); ok {
		d.serveUpgrade(w, r, intent)
		return
	}

	writeResponse(w, resp)
}

// runWithTimeout runs fn and, if ctx is cancelled before fn returns,
// produces a 504 response instead of blocking the connection goroutine
// on a handler that may never return. The bool result reports whether
// fn itself finished before the deadline, so callers know whether
// anything fn closed over is still in use by a straggler goroutine.
func runWithTimeout(ctx context.Context, fn func() *Response) (*Response, bool) {
	done := make(chan *Response, 1)
	go func() { done <- fn() }()
	select {
	case resp := <-done:
		return resp, true
	case <-ctx.Done():
		return NewResponse(StatusGatewayTimeout).SendString("handler timeout"), false
	}
}

func (d *Dispatcher) recordHandlerMetrics(resp *Response, elapsed time.Duration) {
	if d.metrics == nil {
		return
	}
	d.metrics.HandlerDurationNS.Observe(float64(elapsed.Nanoseconds()))
	switch {
	case resp.Status() == StatusGatewayTimeout:
		d.metrics.HandlerTimeout.Inc()
	case resp.Status() >= 500:
		d.metrics.HandlerErr.Inc()
	default:
		d.metrics.HandlerOK.Inc()
	}
}

// serveUpgrade hands w and r straight to the upgrade intent's callback.
// The callback (gorilla/websocket's Upgrader, for WebSocket) performs
// its own hijack; weave never touches the connection once this intent
// is set, matching net/http's own "don't call WriteHeader before a
// caller-managed hijack" rule.
func (d *Dispatcher) serveUpgrade(w http.ResponseWriter, r *http.Request, intent *upgradeIntent) {
	intent.onUpgrade(w, r)
}

func writeResponse(w http.ResponseWriter, resp *Response) {
	header := w.Header()
	for k, vs := range resp.Header() {
		for _, v := range vs {
			header.Add(k, v)
		}
	}
	for _, c := range resp.Cookies() {
		http.SetCookie(w, c)
	}
	w.WriteHeader(resp.Status())
	if resp.IsStreamed() {
		resp.stream(w)
		return
	}
	if b := resp.Body(); b != nil {
		w.Write(b)
	}
}

func peerAddrFromRemoteAddr(remoteAddr string) PeerAddr {
	addr, err := parseHostPort(remoteAddr)
	if err != nil {
		return PeerAddr{Kind: PeerAddrTCP}
	}
	return PeerAddr{Kind: PeerAddrTCP, Addr: addr}
}
