package cors_test

import (
	"testing"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/middleware/cors"
	"github.com/weaveframe/weave/weavetest"
)

func newServer(cfg cors.Config) *weave.Server {
	s := weave.New()
	s.Use(cors.New(cfg))
	s.Get("/ping", func(req *weave.Request) (*weave.Response, error) {
		return weave.NewResponse(200).SendString("pong"), nil
	})
	return s
}

func TestCORS_WildcardNoCredentials(t *testing.T) {
	s := newServer(cors.ConfigDefault)
	res, err := weavetest.Do(s, weavetest.Options{
		Method:  "GET",
		URI:     "/ping",
		Headers: map[string]string{"Origin": "http://localhost:3000"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
	if err := res.AssertHeader("Access-Control-Allow-Origin", "*"); err != nil {
		t.Error(err)
	}
}

func TestCORS_CredentialedEchoesOrigin(t *testing.T) {
	cfg := cors.ConfigDefault
	cfg.AllowCredentials = true
	s := newServer(cfg)
	res, err := weavetest.Do(s, weavetest.Options{
		Method:  "GET",
		URI:     "/ping",
		Headers: map[string]string{"Origin": "http://localhost:3000"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertHeader("Access-Control-Allow-Origin", "http://localhost:3000"); err != nil {
		t.Error(err)
	}
	if err := res.AssertHeader("Access-Control-Allow-Credentials", "true"); err != nil {
		t.Error(err)
	}
}

func TestCORS_DisallowedOriginGetsNoHeaders(t *testing.T) {
	cfg := cors.Config{AllowedOrigins: []string{"https://trusted.example"}}
	s := newServer(cfg)
	res, err := weavetest.Do(s, weavetest.Options{
		Method:  "GET",
		URI:     "/ping",
		Headers: map[string]string{"Origin": "https://evil.example"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertHeader("Access-Control-Allow-Origin", ""); err != nil {
		t.Error(err)
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	s := newServer(cors.ConfigDefault)
	res, err := weavetest.Do(s, weavetest.Options{
		Method: "OPTIONS",
		URI:    "/ping",
		Headers: map[string]string{
			"Origin":                        "http://localhost:3000",
			"Access-Control-Request-Method": "GET",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(204); err != nil {
		t.Error(err)
	}
	if res.BodyStr() != "" {
		t.Errorf("expected empty preflight body, got %q", res.BodyStr())
	}
}
