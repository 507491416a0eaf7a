// Package compress provides middleware for compressing response bodies
// with gzip.
package compress

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/weaveframe/weave"
)

// gzipWriterPool maintains a pool of gzip writers to reduce per-request
// allocations.
var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		return gzip.NewWriter(io.Discard)
	},
}

func clientSupportsGzip(req *weave.Request) bool {
	return strings.Contains(strings.ToLower(req.Header("Accept-Encoding")), "gzip")
}

// Gzip builds a weave.Middleware that gzip-compresses buffered response
// bodies when the client's Accept-Encoding allows it. Streamed responses
// (IsStreamed) are passed through uncompressed: compressing them would
// require buffering the whole stream first, defeating the point of
// streaming.
//
//	s.Use(compress.Gzip())
func Gzip() weave.Middleware {
	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			resp, err := next(req)
			if err != nil || resp == nil {
				return resp, err
			}
			if !clientSupportsGzip(req) || resp.IsStreamed() {
				return resp, nil
			}
			body := resp.Body()
			if len(body) == 0 {
				return resp, nil
			}

			gz := gzipWriterPool.Get().(*gzip.Writer)
			defer gzipWriterPool.Put(gz)

			var buf bytes.Buffer
			gz.Reset(&buf)
			if _, werr := gz.Write(body); werr != nil {
				return resp, nil
			}
			if cerr := gz.Close(); cerr != nil {
				return resp, nil
			}

			resp.Header().Del("Content-Length")
			resp.Set("Content-Encoding", "gzip")
			resp.Add("Vary", "Accept-Encoding")
			resp.Send(buf.Bytes())
			return resp, nil
		}
	}
}
