package trace_test

import (
	"testing"
	"time"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/middleware/trace"
	"github.com/weaveframe/weave/weavetest"
)

func TestTrace_FieldsAccessibleInHandler(t *testing.T) {
	s := weave.New()
	s.Use(trace.New(trace.Config{
		Timeout: time.Second,
		Fields: map[string]func(req *weave.Request) string{
			"X-Trace-ID": func(req *weave.Request) string { return "trace-123" },
			"env":        func(req *weave.Request) string { return "dev" },
		},
	}))
	s.Get("/v1/ping", func(req *weave.Request) (*weave.Response, error) {
		ctx := trace.Context(req)
		if trace.GetCtx(ctx, "X-Trace-ID") != "trace-123" {
			t.Error("expected trace id to propagate into handler context")
		}
		m := trace.GetCtxMap(ctx)
		if m["env"] != "dev" {
			t.Errorf("expected env=dev in context map, got %v", m)
		}
		return weave.NewResponse(200).SendString("pong"), nil
	})

	if _, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/ping"}); err != nil {
		t.Fatal(err)
	}
}

func TestTrace_NextSkipsMiddleware(t *testing.T) {
	s := weave.New()
	s.Use(trace.New(trace.Config{
		Next: func(req *weave.Request) bool { return true },
		Fields: map[string]func(req *weave.Request) string{
			"X-Trace-ID": func(req *weave.Request) string { return "trace-123" },
		},
	}))
	s.Get("/v1/ping", func(req *weave.Request) (*weave.Response, error) {
		if trace.GetCtx(trace.Context(req), "X-Trace-ID") != "" {
			t.Error("expected no trace id when middleware is skipped")
		}
		return weave.NewResponse(200).SendString("pong"), nil
	})

	if _, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/ping"}); err != nil {
		t.Fatal(err)
	}
}
