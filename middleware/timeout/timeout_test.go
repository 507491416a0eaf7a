package timeout_test

import (
	"testing"
	"time"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/middleware/timeout"
	"github.com/weaveframe/weave/weavetest"
)

func TestTimeout_FastHandlerPasses(t *testing.T) {
	s := weave.New()
	s.Use(timeout.New(timeout.Options{Duration: 50 * time.Millisecond}))
	s.Get("/fast", func(req *weave.Request) (*weave.Response, error) {
		return weave.NewResponse(200).SendString("ok"), nil
	})

	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/fast"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
}

func TestTimeout_SlowHandlerGets408(t *testing.T) {
	s := weave.New()
	s.Use(timeout.New(timeout.Options{Duration: 20 * time.Millisecond}))
	s.Get("/slow", func(req *weave.Request) (*weave.Response, error) {
		time.Sleep(100 * time.Millisecond)
		return weave.NewResponse(200).SendString("too late"), nil
	})

	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/slow"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(408); err != nil {
		t.Error(err)
	}
}

func TestTimeout_NextSkips(t *testing.T) {
	s := weave.New()
	s.Use(timeout.New(timeout.Options{
		Duration: 20 * time.Millisecond,
		Next:     func(req *weave.Request) bool { return true },
	}))
	s.Get("/slow", func(req *weave.Request) (*weave.Response, error) {
		time.Sleep(50 * time.Millisecond)
		return weave.NewResponse(200).SendString("still fine"), nil
	})

	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/slow"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
}
