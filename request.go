package weave

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// Request is the core's inbound half of the Request/Response pair. It
// is created by the dispatcher on each new HTTP message, mutated during
// route matching (path params, peer address), and consumed by the
// pipeline and the handler it eventually reaches.
//
// A Request is not safe for concurrent use by more than one in-flight
// middleware chain; lazily-memoized fields (Query, JSON, Form) use a mutex
// only to guard against a handler and its own goroutines racing, not
// against unrelated requests.
type Request struct {
	ctx context.Context
	Method string
	URI *url.URL
	Proto string // "HTTP/1.1", "HTTP/2.0", "HTTP/3.0"
	Headers http.Header
	Peer PeerAddr
	TLS bool // true if this request arrived over a TLS-terminated connection

	body io.ReadCloser

	params map[string]PathParam

	// extensions is the typed heterogeneous bag calls for:
	// the upgrade hand-off channel, trace IDs, and anything middleware
	// wants to pass down the chain without widening this struct.
	extensions map[any]any

	cfg *Configs

	mu sync.Mutex
	bodyBytes []byte
	bodyRead bool
	query url.Values
	queryBuilt bool
	jsonCache any
	jsonErr error
	jsonBuilt bool
	formCache url.Values
	formErr error
	formBuilt bool
}

// NewRequest builds a Request from an incoming *http.Request. C3 calls
// this once per accepted HTTP message; QUIC's HTTP/3 path builds one per
// request stream the same way (see quic.go).
func NewRequest(ctx context.Context, r *http.Request, peer PeerAddr, cfg *Configs) *Request {
	return &Request{
		ctx: ctx,
		Method: r.Method,
		URI: r.URL,
		Proto: r.Proto,
		Headers: r.Header,
		Peer: peer,
		TLS: r.TLS != nil,
		body: r.Body,
		params: make(map[string]PathParam),
		cfg: cfg,
	}
}

// Context returns the request's cancellation context, rooted under the
// server's own cancellation tree (shutdown → connection timeout →
// handler timeout).
func (req *Request) Context() context.Context { return req.ctx }

// Path returns the request's URL path.
func (req *Request) Path() string { return req.URI.Path }

// Header returns a single request header value.
func (req *Request) Header(key string) string { return req.Headers.Get(key) }

// Param returns the typed path parameter bound to name by route matching,
// and whether it was present. Absence means the route pattern had no such
// parameter, not that parsing failed — a parse failure is a routing miss
// handled before the handler ever runs.
func (req *Request) Param(name string) (PathParam, bool) {
	p, ok := req.params[name]
	return p, ok
}

// setParam is called by the route tree matcher while binding a match.
func (req *Request) setParam(name string, p PathParam) {
	req.params[name] = p
}

// Query returns the parsed query-parameter map, building and memoizing it
// on first call from a pooled url.Values rather than the fresh map
// url.Values.Query() would allocate. The returned map is only valid for
// the lifetime of this Request; like every other value derived from a
// Request, it must not be retained past release back to the pool.
func (req *Request) Query() url.Values {
	req.mu.Lock()
	defer req.mu.Unlock()
	if !req.queryBuilt {
		q := acquireQueryValues()
		if parsed, err := url.ParseQuery(req.URI.RawQuery); err == nil {
			for k, vs := range parsed {
				q[k] = vs
			}
		}
		req.query = q
		req.queryBuilt = true
	}
	return req.query
}

// Body reads and memoizes the full request body, honoring whatever
// maximum-size wrapping C3 applied before invoking the pipeline. Repeated
// calls return the same bytes without reading the underlying stream
// again.
func (req *Request) Body() ([]byte, error) {
	req.mu.Lock()
	defer req.mu.Unlock()
	if req.bodyRead {
		return req.bodyBytes, nil
	}
	if req.body == nil {
		req.bodyRead = true
		return nil, nil
	}
	b, err := io.ReadAll(req.body)
	if err != nil {
		req.bodyRead = true
		if lim, ok := err.(*bodyTooLarge); ok {
			return nil, lim
		}
		return nil, &malformedBody{cause: err}
	}
	req.bodyBytes = b
	req.bodyRead = true
	return b, nil
}

// JSON unmarshals the body into v's type and memoizes the decoded value;
// a second call within the same request returns the cached value without
// re-parsing. v must be a pointer of the same
// concrete type on every call within one request.
func (req *Request) JSON(v any) error {
	req.mu.Lock()
	defer req.mu.Unlock()
	if req.jsonBuilt {
		if req.jsonErr != nil {
			return req.jsonErr
		}
		return json.Unmarshal(req.jsonCache.(json.RawMessage), v)
	}
	b, err := req.bodyLocked()
	if err != nil {
		req.jsonErr = err
		req.jsonBuilt = true
		return err
	}
	req.jsonCache = json.RawMessage(b)
	req.jsonBuilt = true
	if err := json.Unmarshal(b, v); err != nil {
		return ParamFailure("body", err.Error())
	}
	return nil
}

// bodyLocked reads the body assuming mu is already held.
func (req *Request) bodyLocked() ([]byte, error) {
	if req.bodyRead {
		return req.bodyBytes, nil
	}
	if req.body == nil {
		req.bodyRead = true
		return nil, nil
	}
	b, err := io.ReadAll(req.body)
	req.bodyRead = true
	if err != nil {
		if lim, ok := err.(*bodyTooLarge); ok {
			return nil, lim
		}
		return nil, &malformedBody{cause: err}
	}
	req.bodyBytes = b
	return b, nil
}

// Form parses the body as application/x-www-form-urlencoded and memoizes
// the result (same idempotency contract as JSON).
func (req *Request) Form() (url.Values, error) {
	req.mu.Lock()
	defer req.mu.Unlock()
	if req.formBuilt {
		return req.formCache, req.formErr
	}
	b, err := req.bodyLocked()
	if err != nil {
		req.formErr = err
		req.formBuilt = true
		return nil, err
	}
	values, err := url.ParseQuery(string(b))
	if err != nil {
		req.formErr = ParamFailure("body", err.Error())
		req.formBuilt = true
		return nil, req.formErr
	}
	req.formCache = values
	req.formBuilt = true
	return values, nil
}

// Configs returns the request's shared, immutable configuration handle.
func (req *Request) Configs() *Configs { return req.cfg }

// SetExtension stores an opaque value under key in the request's
// heterogeneous bag.
func (req *Request) SetExtension(key, value any) {
	if req.extensions == nil {
		req.extensions = make(map[any]any)
	}
	req.extensions[key] = value
}

// Extension retrieves a previously stored extension value.
func (req *Request) Extension(key any) (any, bool) {
	if req.extensions == nil {
		return nil, false
	}
	v, ok := req.extensions[key]
	return v, ok
}

// reset clears a pooled Request for reuse, dropping every per-request
// field back to zero value without reallocating the params/extensions
// maps. Called by releaseRequest (pool.go) once the pipeline has
// finished with a request and its Response has been written.
func (req *Request) reset() {
	req.ctx = nil
	req.Method = ""
	req.URI = nil
	req.Proto = ""
	req.Headers = nil
	req.Peer = PeerAddr{}
	req.TLS = false
	req.body = nil
	req.cfg = nil

	for k := range req.params {
		delete(req.params, k)
	}
	for k := range req.extensions {
		delete(req.extensions, k)
	}

	req.bodyBytes = nil
	req.bodyRead = false
	if req.query != nil {
		releaseQueryValues(req.query)
	}
	req.query = nil
	req.queryBuilt = false
	req.jsonCache = nil
	req.jsonErr = nil
	req.jsonBuilt = false
	req.formCache = nil
	req.formErr = nil
	req.formBuilt = false
}

// stripBodyForHead replaces the body with an empty reader; used by the
// route tree's HEAD-falls-back-to-GET path before the GET handler runs,
// so a handler that doesn't inspect the method never sees a body to
// discard (mirrors the response-side StripBody).
func (req *Request) stripBodyForHead() {
	req.body = http.NoBody
	req.bodyRead = false
	req.bodyBytes = nil
}
