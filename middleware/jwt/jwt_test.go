package jwt_test

import (
	"testing"
	"time"

	"github.com/weaveframe/weave"
	"github.com/weaveframe/weave/middleware/jwt"
	"github.com/weaveframe/weave/weavetest"
)

var testCfg = jwt.Config{
	Header:    jwt.Header{Alg: "HS256", Typ: "JWT"},
	SecretKey: "test-secret",
	ExpiresIn: time.Hour,
}

func newServer(cfg jwt.Config) *weave.Server {
	s := weave.New()
	s.Use(jwt.New(cfg))
	s.Get("/v1/protected", func(req *weave.Request) (*weave.Response, error) {
		claims, _ := req.Extension(jwt.ContextClaimsKey)
		c := claims.(jwt.Claims)
		return weave.NewResponse(200).SendString(c["login"].(string)), nil
	})
	return s
}

func TestJWT_ValidTokenPasses(t *testing.T) {
	token, err := jwt.Sign(testCfg, jwt.Claims{"login": "admin"})
	if err != nil {
		t.Fatal(err)
	}

	s := newServer(testCfg)
	res, err := weavetest.Do(s, weavetest.Options{
		Method:  "GET",
		URI:     "/v1/protected",
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(200); err != nil {
		t.Error(err)
	}
	if res.BodyStr() != "admin" {
		t.Errorf("expected claim echoed back, got %q", res.BodyStr())
	}
}

func TestJWT_MissingTokenRejected(t *testing.T) {
	s := newServer(testCfg)
	res, err := weavetest.Do(s, weavetest.Options{Method: "GET", URI: "/v1/protected"})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(401); err != nil {
		t.Error(err)
	}
}

func TestJWT_TamperedSignatureRejected(t *testing.T) {
	token, err := jwt.Sign(testCfg, jwt.Claims{"login": "admin"})
	if err != nil {
		t.Fatal(err)
	}
	tampered := token[:len(token)-2] + "xx"

	s := newServer(testCfg)
	res, err := weavetest.Do(s, weavetest.Options{
		Method:  "GET",
		URI:     "/v1/protected",
		Headers: map[string]string{"Authorization": "Bearer " + tampered},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(401); err != nil {
		t.Error(err)
	}
}

func TestJWT_ExpiredTokenRejected(t *testing.T) {
	shortCfg := testCfg
	shortCfg.ExpiresIn = -time.Second
	token, err := jwt.Sign(shortCfg, jwt.Claims{"login": "admin"})
	if err != nil {
		t.Fatal(err)
	}

	s := newServer(testCfg)
	res, err := weavetest.Do(s, weavetest.Options{
		Method:  "GET",
		URI:     "/v1/protected",
		Headers: map[string]string{"Authorization": "Bearer " + token},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.AssertStatus(401); err != nil {
		t.Error(err)
	}
}
