package weave

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponse_SendSetsDefaultContentType(t *testing.T) {
	r := NewResponse(StatusOK).SendString("hi")
	if ct := r.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("expected a default text/plain Content-Type, got %q", ct)
	}
	if string(r.Body()) != "hi" {
		t.Errorf("expected body %q, got %q", "hi", r.Body())
	}
}

func TestResponse_SendDoesNotOverrideExplicitContentType(t *testing.T) {
	r := NewResponse(StatusOK).Set("Content-Type", "application/octet-stream").Send([]byte{1, 2, 3})
	if ct := r.Header().Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("expected the explicit Content-Type to survive, got %q", ct)
	}
}

func TestResponse_JSONSetsBodyAndContentType(t *testing.T) {
	r, err := NewResponse(StatusOK).JSON(map[string]int{"n": 1})
	if err != nil {
		t.Fatal(err)
	}
	if ct := r.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("expected a json Content-Type, got %q", ct)
	}
	if string(r.Body()) != "{\"n\":1}\n" {
		t.Errorf("unexpected JSON body: %q", r.Body())
	}
}

func TestResponse_StripBodyClearsBufferedAndStreamed(t *testing.T) {
	r := NewResponse(StatusOK).SendString("hi")
	r.StripBody()
	if len(r.Body()) != 0 {
		t.Error("expected StripBody to clear a buffered body")
	}

	r2 := NewResponse(StatusOK).Stream(func(w http.ResponseWriter) error { return nil })
	r2.StripBody()
	if r2.IsStreamed() {
		t.Error("expected StripBody to clear a streamed body")
	}
}

func TestResponse_StreamOverridesBufferedBody(t *testing.T) {
	r := NewResponse(StatusOK).SendString("buffered")
	r.Stream(func(w http.ResponseWriter) error {
		_, err := w.Write([]byte("streamed"))
		return err
	})
	if !r.IsStreamed() {
		t.Fatal("expected the response to report as streamed")
	}
	if r.Body() != nil {
		t.Error("expected Body() to return nil once streamed")
	}

	rec := httptest.NewRecorder()
	if err := r.stream(rec); err != nil {
		t.Fatal(err)
	}
	if rec.Body.String() != "streamed" {
		t.Errorf("expected the stream func's output, got %q", rec.Body.String())
	}
}

func TestResponse_UpgradeSetsStatusAndIntent(t *testing.T) {
	called := false
	r := NewResponse(StatusOK).Upgrade(101, func(w http.ResponseWriter, req *http.Request) {
		called = true
	})
	if r.Status() != 101 {
		t.Errorf("expected status 101, got %d", r.Status())
	}
	intent, ok := r.isUpgrade()
	if !ok {
		t.Fatal("expected isUpgrade to report true")
	}
	intent.onUpgrade(nil, nil)
	if !called {
		t.Error("expected the upgrade callback to run")
	}
}

func TestResponse_ExtensionRoundTrips(t *testing.T) {
	r := NewResponse(StatusOK)
	type key struct{}
	r.SetExtension(key{}, "value")
	v, ok := r.Extension(key{})
	if !ok || v != "value" {
		t.Errorf("expected extension round-trip, got (%v, %v)", v, ok)
	}
	if _, ok := r.Extension("missing"); ok {
		t.Error("expected a missing extension key to report false")
	}
}
