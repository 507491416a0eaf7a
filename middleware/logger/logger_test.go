package logger_test

import (
	"testing"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/middleware/logger"
	"github.com/weaveframe/weave/weavetest"
)

func TestLogger_PassesRequestThrough(t *testing.T) {
	s := weave.New()
	s.Use(logger.New(logger.Config{Format: "json"}))
	s.Get("/v1/ping", func(req *weave.Request) (*weave.Response, error) {
		return weave.NewResponse(200).SendString("pong"), nil
	})

	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/ping"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
	if err := res.AssertBodyContains("pong"); err != nil {
		t.Error(err)
	}
}

func TestLogger_SkipsOptions(t *testing.T) {
	s := weave.New()
	s.Use(logger.New())
	s.Root().Hook(func(next weave.Next) weave.Next {
		return func(req *weave.Request) (*weave.Response, error) {
			return weave.NewResponse(204), nil
		}
	})

	res, err := weavetest.Do(s, weavetest.Options{Method: "OPTIONS", URI: "/v1/anything"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(204); err != nil {
		t.Error(err)
	}
}

func TestLogger_DynamicContextData(t *testing.T) {
	s := weave.New()
	s.Use(logger.New(logger.Config{Format: "json"}))
	s.Get("/v1/annotated", func(req *weave.Request) (*weave.Response, error) {
		req.SetExtension(logger.ContextDataKey, map[string]any{"user_id": "42"})
		return weave.NewResponse(200).SendString("ok"), nil
	})

	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/annotated"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
}
