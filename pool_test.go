package weave

import (
	"net/http/httptest"
	"testing"
)

func TestAcquireRelease_RequestRoundTrips(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?a=1", nil)
	req := acquireRequest(r.Context(), r, PeerAddr{}, NewConfigs())
	if req.Method != "GET" || req.Path() != "/x" {
		t.Errorf("unexpected acquired request: method=%q path=%q", req.Method, req.Path())
	}
	req.setParam("id", PathParam{})
	req.Query()

	releaseRequest(req)
	if req.Method != "" || req.URI != nil || len(req.params) != 0 {
		t.Error("expected releaseRequest to reset the request before returning it to the pool")
	}
}

func TestAcquireRelease_JSONBuffer(t *testing.T) {
	buf := acquireJSONBuffer()
	buf.WriteString("leftover")
	releaseJSONBuffer(buf)

	buf2 := acquireJSONBuffer()
	if buf2.Len() != 0 {
		t.Errorf("expected a reset buffer, got %q", buf2.String())
	}
	releaseJSONBuffer(buf2)
}

func TestAcquireRelease_QueryValues(t *testing.T) {
	v := acquireQueryValues()
	v.Set("a", "1")
	releaseQueryValues(v)

	if len(v) != 0 {
		t.Errorf("expected releaseQueryValues to clear the map, got %v", v)
	}
}
