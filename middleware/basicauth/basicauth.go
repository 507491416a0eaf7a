// Package basicauth provides HTTP Basic Authentication middleware.
//
// The middleware implements RFC 7617 (Basic Authentication) to protect
// routes by requiring valid credentials in the Authorization header.
//
//	$ curl -u admin:1234 http://localhost:8080/protected
//	$ curl http://localhost:8080/protected
//
// Missing or malformed Authorization headers and wrong credentials all
// get a 401 with a WWW-Authenticate challenge; only an exact
// username/password match proceeds to the next handler.
package basicauth

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/weaveframe/weave"
)

// BasicAuth builds a weave.Middleware that enforces HTTP Basic
// Authentication against a single username/password pair.
//
//	s.Use(basicauth.BasicAuth("admin", "s3cr3t"))
func BasicAuth(username, password string) weave.Middleware {
	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			authHeader := req.Header("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Basic ") {
				return challenge(), nil
			}

			payload, err := base64.StdEncoding.DecodeString(authHeader[len("Basic "):])
			if err != nil {
				return challenge(), nil
			}

			creds := strings.SplitN(string(payload), ":", 2)
			if len(creds) != 2 || !equal(creds[0], username) || !equal(creds[1], password) {
				return challenge(), nil
			}

			return next(req)
		}
	}
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func challenge() *weave.Response {
	return weave.NewResponse(weave.StatusUnauthorized).
		Set("WWW-Authenticate", `Basic realm="Restricted"`).
		SendString("Unauthorized")
}
