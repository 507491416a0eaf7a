package maxbody_test

import (
	"strings"
	"testing"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/middleware/maxbody"
	"github.com/weaveframe/weave/weavetest"
)

func newServer(limit int64) *weave.Server {
	s := weave.New()
	s.Use(maxbody.New(limit))
	s.Post("/v1/upload", func(req *weave.Request) (*weave.Response, error) {
		b, _ := req.Body()
		return weave.NewResponse(200).Send(b), nil
	})
	return s
}

func TestMaxBody_WithinLimitPasses(t *testing.T) {
	s := newServer(100)
	res, err := weavetest.Do(s, weavetest.Options{
		Method: "POST",
		URI:    "/v1/upload",
		Body:   []byte("small payload"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
}

func TestMaxBody_OverLimitRejected(t *testing.T) {
	s := newServer(10)
	res, err := weavetest.Do(s, weavetest.Options{
		Method: "POST",
		URI:    "/v1/upload",
		Body:   []byte(strings.Repeat("x", 100)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(413); err != nil {
		t.Error(err)
	}
}
