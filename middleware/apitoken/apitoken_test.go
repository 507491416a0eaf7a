package apitoken_test

import (
	"testing"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/middleware/apitoken"
	"github.com/weaveframe/weave/weavetest"
)

func newServer() *weave.Server {
	s := weave.New()
	s.Use(apitoken.Auth("X-Api-Key", "s3cr3t"))
	s.Get("/v1/protected", func(req *weave.Request) (*weave.Response, error) {
		return weave.NewResponse(200).SendString("granted"), nil
	})
	return s
}

func TestAuth_ValidKeyPasses(t *testing.T) {
	s := newServer()
	res, err := weavetest.Do(s, weavetest.Options{
		Method:  "GET",
		URI:     "/v1/protected",
		Headers: map[string]string{"X-Api-Key": "s3cr3t"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
}

func TestAuth_MissingKeyRejected(t *testing.T) {
	s := newServer()
	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/protected"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(401); err != nil {
		t.Error(err)
	}
}

func TestAuth_WrongKeyRejected(t *testing.T) {
	s := newServer()
	res, err := weavetest.Do(s, weavetest.Options{
		Method:  "GET",
		URI:     "/v1/protected",
		Headers: map[string]string{"X-Api-Key": "wrong"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(401); err != nil {
		t.Error(err)
	}
}
