package pprof_test

import (
	"strings"
	"testing"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/middleware/pprof"
	"github.com/weaveframe/weave/weavetest"
)

func newServer(cfg ...pprof.Config) *weave.Server {
	s := weave.New()
	s.Use(pprof.New(cfg...))
	s.Get("/v1/ping", func(req *weave.Request) (*weave.Response, error) {
		return weave.NewResponse(200).SendString("pong"), nil
	})
	return s
}

func TestPprof_IndexServed(t *testing.T) {
	s := newServer()
	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/debug/pprof/"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
	if !strings.Contains(res.BodyStr(), "profile") {
		t.Errorf("expected pprof index to list profiles, got %q", res.BodyStr())
	}
}

func TestPprof_UnknownSubpathRedirectsToIndex(t *testing.T) {
	s := newServer()
	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/debug/pprof/nonsense"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(302); err != nil {
		t.Error(err)
	}
	if err := res.AssertHeader("Location", "/debug/pprof/"); err != nil {
		t.Error(err)
	}
}

func TestPprof_NonMatchingPathPassesThrough(t *testing.T) {
	s := newServer()
	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/ping"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
	if res.BodyStr() != "pong" {
		t.Errorf("expected passthrough to reach handler, got %q", res.BodyStr())
	}
}

func TestPprof_NextBypassesMiddleware(t *testing.T) {
	s := newServer(pprof.Config{Next: func(req *weave.Request) bool { return true }})
	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/debug/pprof/"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(404); err != nil {
		t.Error(err)
	}
}
