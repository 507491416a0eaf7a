// Package maxbody provides a per-route request body size ceiling,
// layered on top of the server-wide limit every request already gets
// from its listener's MaxBodySize config. Use this when one route
// needs a tighter cap than the rest of the server.
package maxbody

import "github.com/weaveframe/weave"

// DefaultMaxBytes is used when New is called with no explicit limit.
const DefaultMaxBytes int64 = 1024 * 1024 * 5

// New builds a weave.Middleware that rejects any request whose body
// exceeds maxBytes with a 413 Request Entity Too Large, checking both
// the declared Content-Length and (for chunked requests that don't
// declare one) the body's actual read length.
func New(maxBytes ...int64) weave.Middleware {
	limit := DefaultMaxBytes
	if len(maxBytes) > 0 {
		limit = maxBytes[0]
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if cl := req.Header("Content-Length"); cl != "" {
				if n, ok := parseContentLength(cl); ok && n > limit {
					return tooLarge(), nil
				}
			}

			body, err := req.Body()
			if err != nil {
				return tooLarge(), nil
			}
			if int64(len(body)) > limit {
				return tooLarge(), nil
			}

			return next(req)
		}
	}
}

func parseContentLength(s string) (int64, bool) {
	var n int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
	}
	return n, true
}

func tooLarge() *weave.Response {
	return weave.NewResponse(weave.StatusRequestEntityTooLarge).SendString("Request body too large")
}
