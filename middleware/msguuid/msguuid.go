// Package msguuid assigns a UUID to every request that doesn't already
// carry one under the configured header, for tracking requests across
// services, logging, and debugging.
package msguuid

import (
	"github.com/google/uuid"

	"github.com/weaveframe/weave"
)

const (
	UUIDVersion1 = iota + 1
	UUIDVersion4
)

const KeyMsgUUID = "MsgUUID"

// Config controls the header name and UUID version.
type Config struct {
	Version int    // UUIDVersion1 or UUIDVersion4 (default)
	Name    string // header key name
}

var ConfigDefault = Config{
	Version: UUIDVersion4,
	Name:    KeyMsgUUID,
}

// New builds a weave.Middleware that stamps a UUID onto both the
// request and response when the request doesn't already carry one
// under cfg.Name.
func New(config ...Config) weave.Middleware {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Name == "" {
		cfg.Name = KeyMsgUUID
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			id := req.Header(cfg.Name)
			if id == "" {
				id = generate(cfg.Version)
				req.Headers.Set(cfg.Name, id)
			}

			resp, err := next(req)
			if resp != nil {
				resp.Set(cfg.Name, id)
			}
			return resp, err
		}
	}
}

func generate(version int) string {
	if version == UUIDVersion1 {
		if u, err := uuid.NewUUID(); err == nil {
			return u.String()
		}
		return ""
	}
	return uuid.NewString()
}
