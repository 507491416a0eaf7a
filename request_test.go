package weave

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func newRequestWithBody(t *testing.T, method, target, body string) *Request {
	t.Helper()
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return NewRequest(r.Context(), r, PeerAddr{}, NewConfigs())
}

func TestRequest_QueryParsesAndMemoizes(t *testing.T) {
	req := newRequestWithBody(t, "GET", "/things?a=1&a=2&b=x", "")
	q := req.Query()
	if got := q["a"]; len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("expected a=[1 2], got %v", got)
	}
	if q.Get("b") != "x" {
		t.Errorf("expected b=x, got %v", q.Get("b"))
	}
	if req.Query() == nil {
		t.Fatal("expected a non-nil memoized query map")
	}
}

func TestRequest_BodyReadsOnceAndMemoizes(t *testing.T) {
	req := newRequestWithBody(t, "POST", "/", "payload")
	b, err := req.Body()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "payload" {
		t.Errorf("expected %q, got %q", "payload", b)
	}
	b2, err := req.Body()
	if err != nil {
		t.Fatal(err)
	}
	if string(b2) != "payload" {
		t.Errorf("expected memoized body %q, got %q", "payload", b2)
	}
}

func TestRequest_BodyNilReturnsEmpty(t *testing.T) {
	req := newRequestWithBody(t, "GET", "/", "")
	req.body = nil
	b, err := req.Body()
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Errorf("expected a nil body to yield nil bytes, got %v", b)
	}
}

func TestRequest_JSONUnmarshalsAndMemoizes(t *testing.T) {
	req := newRequestWithBody(t, "POST", "/", `{"name":"gopher"}`)
	var v struct {
		Name string `json:"name"`
	}
	if err := req.JSON(&v); err != nil {
		t.Fatal(err)
	}
	if v.Name != "gopher" {
		t.Errorf("expected name=gopher, got %q", v.Name)
	}

	var v2 struct {
		Name string `json:"name"`
	}
	if err := req.JSON(&v2); err != nil {
		t.Fatal(err)
	}
	if v2.Name != "gopher" {
		t.Errorf("expected the memoized decode to still work, got %q", v2.Name)
	}
}

func TestRequest_JSONMalformedReturnsParamFailure(t *testing.T) {
	req := newRequestWithBody(t, "POST", "/", `not json`)
	var v struct{}
	err := req.JSON(&v)
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
	var pe *ParamError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a *ParamError, got %T: %v", err, err)
	}
}

func TestRequest_FormParsesURLEncodedBody(t *testing.T) {
	req := newRequestWithBody(t, "POST", "/", "a=1&b=two")
	values, err := req.Form()
	if err != nil {
		t.Fatal(err)
	}
	if values.Get("a") != "1" || values.Get("b") != "two" {
		t.Errorf("unexpected form values: %v", values)
	}
}

func TestRequest_ParamAbsentReturnsFalse(t *testing.T) {
	req := newRequestWithBody(t, "GET", "/", "")
	if _, ok := req.Param("missing"); ok {
		t.Error("expected an unset param to report ok=false")
	}
	req.setParam("id", PathParam{})
	if _, ok := req.Param("id"); !ok {
		t.Error("expected a set param to report ok=true")
	}
}

func TestRequest_ExtensionRoundTrips(t *testing.T) {
	req := newRequestWithBody(t, "GET", "/", "")
	type key struct{}
	req.SetExtension(key{}, 42)
	v, ok := req.Extension(key{})
	if !ok || v != 42 {
		t.Errorf("expected (42, true), got (%v, %v)", v, ok)
	}
}

func TestRequest_StripBodyForHeadEmptiesBody(t *testing.T) {
	req := newRequestWithBody(t, "HEAD", "/", "should not be read")
	req.stripBodyForHead()
	b, err := req.Body()
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != 0 {
		t.Errorf("expected an empty body after stripBodyForHead, got %q", b)
	}
}

func TestRequest_ResetClearsState(t *testing.T) {
	req := newRequestWithBody(t, "POST", "/?x=1", "body")
	req.Query()
	req.setParam("id", PathParam{})
	req.SetExtension("k", "v")
	req.reset()

	if req.ctx != nil || req.Method != "" || req.URI != nil || req.body != nil {
		t.Error("expected reset to clear identity fields")
	}
	if len(req.params) != 0 || len(req.extensions) != 0 {
		t.Error("expected reset to clear params and extensions")
	}
	if req.queryBuilt || req.bodyRead || req.jsonBuilt || req.formBuilt {
		t.Error("expected reset to clear memoization flags")
	}
}

func TestRequest_ContextAndPathAndHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/abc", io.NopCloser(strings.NewReader("")))
	r.Header.Set("X-Test", "v")
	req := NewRequest(r.Context(), r, PeerAddr{}, NewConfigs())
	if req.Path() != "/abc" {
		t.Errorf("expected path /abc, got %q", req.Path())
	}
	if req.Header("X-Test") != "v" {
		t.Errorf("expected header value v, got %q", req.Header("X-Test"))
	}
	if req.Context() == nil {
		t.Error("expected a non-nil context")
	}
}
