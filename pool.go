package weave

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"sync"
)

// requestPool recycles Request objects across the life of a server,
// the same sync.Pool-per-hot-object shape the framework uses for its Ctx
// (quick_pool.go's ctxPool), generalized here to the Request/Response
// split: pool the Request, since it is the struct allocated once per
// accepted connection on the hot path.
var requestPool = sync.Pool{
	New: func() any {
		return &Request{
			params: make(map[string]PathParam),
			extensions: make(map[any]any),
		}
	},
}

// acquireRequest takes a Request from the pool and populates it from an
// incoming *http.Request, avoiding the allocation NewRequest would
// otherwise make on every call.
func acquireRequest(ctx context.Context, r *http.Request, peer PeerAddr, cfg *Configs) *Request {
	req := requestPool.Get().(*Request)
	req.ctx = ctx
	req.Method = r.Method
	req.URI = r.URL
	req.Proto = r.Proto
	req.Headers = r.Header
	req.Peer = peer
	req.TLS = r.TLS != nil
	req.body = r.Body
	req.cfg = cfg
	return req
}

// releaseRequest resets req and returns it to the pool. Callers must not
// touch req, or any value derived from it (path params, cached body),
// after calling this.
func releaseRequest(req *Request) {
	req.reset()
	requestPool.Put(req)
}

// jsonBufferPool recycles the scratch buffers Response.JSON uses to
// marshal a body, mirroring the framework's jsonBufferPool.
var jsonBufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

func acquireJSONBuffer() *bytes.Buffer {
	return jsonBufferPool.Get().(*bytes.Buffer)
}

func releaseJSONBuffer(buf *bytes.Buffer) {
	buf.Reset()
	jsonBufferPool.Put(buf)
}

// queryValuesPool recycles the url.Values maps Request.Query builds,
// since a high-QPS server otherwise allocates one per request just to
// hold 1-2 query parameters.
var queryValuesPool = sync.Pool{
	New: func() any {
		return make(url.Values, 4)
	},
}

func acquireQueryValues() url.Values {
	return queryValuesPool.Get().(url.Values)
}

func releaseQueryValues(v url.Values) {
	for k := range v {
		delete(v, k)
	}
	queryValuesPool.Put(v)
}
