// Package msgid assigns a unique message ID to every request that
// doesn't already carry one, for request tracking, logging, and
// tracing across a distributed system.
package msgid

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/weaveframe/weave"
)

// Default values for the generated message ID range.
const (
	DefaultStartConfig = 900000000
	DefaultEndConfig   = 100000000
	KeyMsgID           = "Msgid"
)

// Config controls the header name and generation strategy.
type Config struct {
	Start int
	End   int
	Name  string
	Algo  func() string // optional custom generator, overrides Start/End
}

var ConfigDefault = Config{
	Name:  KeyMsgID,
	Start: DefaultStartConfig,
	End:   DefaultEndConfig,
}

// New builds a weave.Middleware that stamps a message ID onto both the
// request and response when the request doesn't already carry one
// under cfg.Name.
func New(config ...Config) weave.Middleware {
	cfg := ConfigDefault
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Name == "" {
		cfg.Name = KeyMsgID
	}
	if cfg.Algo == nil && cfg.Start == 0 && cfg.End == 0 {
		cfg.Start, cfg.End = DefaultStartConfig, DefaultEndConfig
	}

	return func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			id := req.Header(cfg.Name)
			if id == "" {
				if cfg.Algo != nil {
					id = cfg.Algo()
				} else {
					id = AlgoDefault(cfg.Start, cfg.End)
				}
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

// AlgoDefault generates a random message ID within [start, start+end).
func AlgoDefault(start, end int) string {
	max := big.NewInt(int64(end))
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return ""
	}
	return strconv.Itoa(start + int(n.Int64()))
}
