package weave

import (
	"encoding/json"
	"net/http"
)

// bodyKind distinguishes the three body shapes a Response may carry:
// nothing written, a single buffered sequence, or a sequence of streamed
// frames handed to the dispatcher one at a time.
type bodyKind uint8

const (
	bodyEmpty bodyKind = iota
	bodyBuffered
	bodyStreamed
)

// StreamFunc writes a streamed response body directly to w. The dispatcher
// calls it once, after the header has been flushed.
type StreamFunc func(w http.ResponseWriter) error

// Cookie mirrors net/http.Cookie; kept as its own type so callers never
// need to import net/http just to set a cookie on a Response.
type Cookie = http.Cookie

// Response is the core's outbound half of the Request/Response pair. It is
// built by handlers and middleware as the chain unwinds, then consumed by
// the dispatcher for wire serialization.
//
// A Response is not safe for concurrent use; it belongs to exactly one
// request's middleware chain at a time.
type Response struct {
	status int
	headers http.Header
	cookies []*Cookie

	kind bodyKind
	buffered []byte
	stream StreamFunc

	// extensions is opaque to the core except for the one distinguished
	// key used to hand an upgraded connection back to the dispatcher
	//.
	extensions map[any]any
}

// NewResponse creates a Response with the given status and no body.
func NewResponse(status int) *Response {
	return &Response{
		status: status,
		headers: make(http.Header),
	}
}

// Status reports the response's current status code.
func (r *Response) Status() int { return r.status }

// SetStatus sets the status code and returns the Response for chaining.
func (r *Response) SetStatus(status int) *Response {
	r.status = status
	return r
}

// Header returns the response's header map, creating it if necessary. The
// caller may mutate it directly, matching net/http.ResponseWriter's
// convention.
func (r *Response) Header() http.Header {
	if r.headers == nil {
		r.headers = make(http.Header)
	}
	return r.headers
}

// Set sets a response header, replacing any existing values.
func (r *Response) Set(key, value string) *Response {
	r.Header().Set(key, value)
	return r
}

// Add appends a response header value without replacing existing ones.
func (r *Response) Add(key, value string) *Response {
	r.Header().Add(key, value)
	return r
}

// SetCookie appends a cookie to the response's cookie jar. The jar is only
// ever serialized as Set-Cookie headers by the dispatcher; the core does
// not implement cookie storage or signing.
func (r *Response) SetCookie(c *Cookie) *Response {
	r.cookies = append(r.cookies, c)
	return r
}

// Cookies returns the cookies queued on this response.
func (r *Response) Cookies() []*Cookie { return r.cookies }

// SendString sets the response body to s and Content-Type to text/plain if
// no Content-Type has been set yet.
func (r *Response) SendString(s string) *Response {
	return r.Send([]byte(s))
}

// Send sets the response body to the given bytes, buffered and sent in one
// piece. Replaces any previously set body.
func (r *Response) Send(b []byte) *Response {
	if r.Header().Get("Content-Type") == "" {
		r.Set("Content-Type", "text/plain; charset=utf-8")
	}
	r.kind = bodyBuffered
	r.buffered = b
	r.stream = nil
	return r
}

// JSON marshals v and sets it as the buffered body with Content-Type
// application/json. A marshal error is returned directly to the caller so
// the handler can decide how to report it (most will wrap it as an
// Internal error via errorToResponse's default case).
func (r *Response) JSON(v any) (*Response, error) {
	buf := acquireJSONBuffer()
	defer releaseJSONBuffer(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return r, err
	}
	r.Set("Content-Type", "application/json; charset=utf-8")
	r.kind = bodyBuffered
	r.buffered = append([]byte(nil), buf.Bytes()...)
	r.stream = nil
	return r, nil
}

// Stream sets the response body to a streamed sequence of frames, written
// by fn once the header is flushed. Use for large or unbounded bodies that
// should not be buffered in memory.
func (r *Response) Stream(fn StreamFunc) *Response {
	r.kind = bodyStreamed
	r.stream = fn
	r.buffered = nil
	return r
}

// Body returns the buffered body bytes, or nil if the response has no body
// or a streamed one.
func (r *Response) Body() []byte {
	if r.kind != bodyBuffered {
		return nil
	}
	return r.buffered
}

// IsStreamed reports whether the response body is a StreamFunc rather than
// a buffered byte sequence.
func (r *Response) IsStreamed() bool { return r.kind == bodyStreamed }

// StripBody clears any body while preserving status, headers, and cookies.
// Used by the route tree's HEAD-falls-back-to-GET substitution (invariant
// 5): the GET handler runs normally and its body is discarded afterward.
func (r *Response) StripBody() *Response {
	r.kind = bodyEmpty
	r.buffered = nil
	r.stream = nil
	return r
}

// SetExtension stores an opaque value under key, for use by middleware and
// the dispatcher (e.g. the upgrade hand-off channel). Opaque to the core.
func (r *Response) SetExtension(key, value any) *Response {
	if r.extensions == nil {
		r.extensions = make(map[any]any)
	}
	r.extensions[key] = value
	return r
}

// Extension retrieves a previously stored extension value.
func (r *Response) Extension(key any) (any, bool) {
	if r.extensions == nil {
		return nil, false
	}
	v, ok := r.extensions[key]
	return v, ok
}

// upgradeExtensionKey is the distinguished extension key
// reserves for "continue the upgrade hand-off": a handler that wants to
// upgrade the connection sets this to an *upgradeIntent before returning.
type upgradeExtensionKeyType struct{}

var upgradeExtensionKey = upgradeExtensionKeyType{}

// upgradeIntent carries the callback the dispatcher should invoke with
// the original ResponseWriter/Request pair instead of writing this
// response normally. The callback owns the connection from that point
// on (it performs its own hijack, as gorilla/websocket's Upgrader does).
type upgradeIntent struct {
	onUpgrade func(w http.ResponseWriter, r *http.Request)
}

// Upgrade marks this response as a protocol hand-off (status 101 for a
// WebSocket handshake) and registers the callback the dispatcher invokes
// with the live ResponseWriter/Request instead of writing a normal body.
func (r *Response) Upgrade(status int, onUpgrade func(w http.ResponseWriter, r *http.Request)) *Response {
	r.status = status
	r.SetExtension(upgradeExtensionKey, &upgradeIntent{onUpgrade: onUpgrade})
	return r
}

// isUpgrade reports whether this response carries an upgrade intent, and
// returns it if so.
func (r *Response) isUpgrade() (*upgradeIntent, bool) {
	v, ok := r.Extension(upgradeExtensionKey)
	if !ok {
		return nil, false
	}
	intent, ok := v.(*upgradeIntent)
	return intent, ok
}
