package weave

import "strconv"

// altSvcMiddleware advertises HTTP/3 availability on port via the
// Alt-Svc response header, so clients that completed this request over
// TCP know they can upgrade to QUIC for the next one. Grounded on
// chassis/server.go's altSvcMiddleware; wired here instead of standalone
// since Route.WithQUICPort is the only place that needs it.
func altSvcMiddleware(port int) Middleware {
	value := `h3=":` + strconv.Itoa(port) + `"; ma=86400`
	return func(next Next) Next {
		return func(req *Request) (*Response, error) {
			resp, err := next(req)
			if err != nil {
				return resp, err
			}
			resp.Add("Alt-Svc", value)
			return resp, nil
		}
	}
}
