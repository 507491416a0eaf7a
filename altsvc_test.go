package weave

import "testing"

func TestAltSvcMiddleware_AddsHeaderOnSuccess(t *testing.T) {
	mw := altSvcMiddleware(8443)
	next := func(req *Request) (*Response, error) {
		return NewResponse(StatusOK), nil
	}
	resp, err := mw(next)(newTestRequest(MethodGet, "/"))
	if err != nil {
		t.Fatal(err)
	}
	got := resp.Header().Get("Alt-Svc")
	want := `h3=":8443"; ma=86400`
	if got != want {
		t.Errorf("expected Alt-Svc %q, got %q", want, got)
	}
}

func TestAltSvcMiddleware_SkipsHeaderOnError(t *testing.T) {
	mw := altSvcMiddleware(8443)
	next := func(req *Request) (*Response, error) {
		return nil, Business(StatusInternalServerError, "boom")
	}
	resp, err := mw(next)(newTestRequest(MethodGet, "/"))
	if err == nil {
		t.Fatal("expected the error to propagate")
	}
	if resp != nil {
		t.Errorf("expected a nil response alongside the error, got %v", resp)
	}
}
