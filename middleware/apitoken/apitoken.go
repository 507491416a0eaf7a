// Package apitoken provides a minimal API-key header check middleware.
//
// It compares a single configured header against a single expected
// value; unlike basicauth or jwt there is no encoding or signature to
// verify, just an exact match against a pre-shared key.
package apitoken

import "github.com/weaveframe/weave"

const errorAuthBody = `{"error": "api-key is missing or it isn't correct", "code": 401}`

// Auth builds a weave.Middleware that requires the request header
// named headerKey to equal value, rejecting every other request with a
// 401 and a JSON error body.
//
//	s.Use(apitoken.Auth("X-Api-Key", "s3cr3t-token"))
func Auth(headerKey, value string) weave.Middleware {
	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			if req.Header(headerKey) != value {
				return weave.NewResponse(weave.StatusUnauthorized).
					Set("Content-Type", "application/json").
					SendString(errorAuthBody), nil
			}
			return next(req)
		}
	}
}
