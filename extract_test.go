package weave

import "testing"

func TestPathInto_DecodesTaggedFields(t *testing.T) {
	req := newTestRequest(MethodGet, "/b/alpha/42/gamma")
	req.setParam("a", PathParam{Kind: ParamStr, raw: "alpha"})
	req.setParam("b", PathParam{Kind: ParamInt, raw: "42", i: 42})
	req.setParam("c", PathParam{Kind: ParamStr, raw: "gamma"})

	var dst struct {
		A string `weave:"a"`
		B int64  `weave:"b"`
		C string `weave:"c"`
	}
	if err := PathInto(req, &dst); err != nil {
		t.Fatal(err)
	}
	if dst.A != "alpha" || dst.B != 42 || dst.C != "gamma" {
		t.Errorf("unexpected decode: %+v", dst)
	}
}

func TestQueryInto_AbsentKeysLeaveZeroValue(t *testing.T) {
	req := newTestRequest(MethodGet, "/?q1=x&q3=7")

	var dst struct {
		Q1 *string `weave:"q1"`
		Q2 *string `weave:"q2"`
		Q3 *int64  `weave:"q3"`
	}
	if err := QueryInto(req, &dst); err != nil {
		t.Fatal(err)
	}
	if dst.Q1 == nil || *dst.Q1 != "x" {
		t.Errorf("expected q1=x, got %v", dst.Q1)
	}
	if dst.Q2 != nil {
		t.Errorf("expected q2 to stay nil, got %v", *dst.Q2)
	}
	if dst.Q3 == nil || *dst.Q3 != 7 {
		t.Errorf("expected q3=7, got %v", dst.Q3)
	}
}

func TestQueryInto_MalformedValueShortCircuits(t *testing.T) {
	req := newTestRequest(MethodGet, "/?n=not-a-number")
	var dst struct {
		N int `weave:"n"`
	}
	if err := QueryInto(req, &dst); err == nil {
		t.Fatal("expected a parse failure for a non-numeric int field")
	}
}

func TestHeaderInto_DecodesFieldsByNameFallback(t *testing.T) {
	req := newTestRequest(MethodGet, "/")
	req.Headers.Set("Token", "abc123")

	var dst struct {
		Token string
	}
	if err := HeaderInto(req, &dst); err != nil {
		t.Fatal(err)
	}
	if dst.Token != "abc123" {
		t.Errorf("expected Token=abc123, got %q", dst.Token)
	}
}

func TestDecodeFields_RejectsNonStructPointer(t *testing.T) {
	var n int
	if err := decodeFields(&n, func(string) (string, bool) { return "", false }); err == nil {
		t.Fatal("expected an error for a non-struct destination")
	}
	if err := decodeFields(n, func(string) (string, bool) { return "", false }); err == nil {
		t.Fatal("expected an error for a non-pointer destination")
	}
}

func TestConfigFrom_DelegatesToConfigOf(t *testing.T) {
	req := newTestRequest(MethodGet, "/")
	type dbHandle struct{ name string }
	Provide(req.Configs(), dbHandle{name: "primary"})

	h, ok := ConfigFrom[dbHandle](req)
	if !ok || h.name != "primary" {
		t.Errorf("expected (dbHandle{primary}, true), got (%v, %v)", h, ok)
	}
}

func TestExtensionInto_MissingAndWrongType(t *testing.T) {
	req := newTestRequest(MethodGet, "/")
	type key struct{}

	if _, err := ExtensionInto[string](req, key{}); err == nil {
		t.Error("expected an error for a missing extension")
	}

	req.SetExtension(key{}, 42)
	if _, err := ExtensionInto[string](req, key{}); err == nil {
		t.Error("expected an error for a wrong-type extension")
	}

	v, err := ExtensionInto[int](req, key{})
	if err != nil || v != 42 {
		t.Errorf("expected (42, nil), got (%v, %v)", v, err)
	}
}

func TestExtractInto_MixesSourcesAcrossOneDestination(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}
	req := newRequestWithBody(t, MethodPost, "/orders/7?verbose=true", `{"name":"widget"}`)
	req.setParam("id", PathParam{Kind: ParamInt, raw: "7", i: 7})
	req.Headers.Set("X-Request-Id", "req-1")
	type dbHandle struct{ name string }
	Provide(req.Configs(), dbHandle{name: "primary"})
	req.SetExtension("traceKey", "trace-abc")

	var args struct {
		ID int64 `weave:"path=id"`
		Verbose bool `weave:"query=verbose"`
		RequestID string `weave:"header=X-Request-Id"`
		Body body `weave:"json"`
		DB dbHandle `weave:"config"`
		Trace string `weave:"extension=traceKey"`
		Untagged string
	}

	if err := ExtractInto(req, &args); err != nil {
		t.Fatal(err)
	}
	if args.ID != 7 {
		t.Errorf("expected ID=7, got %d", args.ID)
	}
	if !args.Verbose {
		t.Error("expected Verbose=true")
	}
	if args.RequestID != "req-1" {
		t.Errorf("expected RequestID=req-1, got %q", args.RequestID)
	}
	if args.Body.Name != "widget" {
		t.Errorf("expected Body.Name=widget, got %q", args.Body.Name)
	}
	if args.DB.name != "primary" {
		t.Errorf("expected DB.name=primary, got %q", args.DB.name)
	}
	if args.Trace != "trace-abc" {
		t.Errorf("expected Trace=trace-abc, got %q", args.Trace)
	}
	if args.Untagged != "" {
		t.Errorf("expected an untagged field to stay zero, got %q", args.Untagged)
	}
}

func TestExtractInto_UnknownSourceErrors(t *testing.T) {
	req := newTestRequest(MethodGet, "/")
	var dst struct {
		X string `weave:"bogus=x"`
	}
	if err := ExtractInto(req, &dst); err == nil {
		t.Error("expected an error for an unrecognized extractor source")
	}
}

func TestHandlerFromExtractor_BuildsAHandlerFromACompositeArgument(t *testing.T) {
	req := newTestRequest(MethodGet, "/widgets/9")
	req.setParam("id", PathParam{Kind: ParamInt, raw: "9", i: 9})

	type args struct {
		ID int64 `weave:"path=id"`
	}
	h := HandlerFromExtractor(func(req *Request, a args) (*Response, error) {
		return NewResponse(StatusOK).SendString("ok"), nil
	})

	resp, err := h(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status() != StatusOK {
		t.Errorf("expected 200, got %d", resp.Status())
	}
}

func TestHandlerFromExtractor_ShortCircuitsOnExtractionFailure(t *testing.T) {
	req := newTestRequest(MethodGet, "/widgets?page=not-a-number")

	type args struct {
		Page int `weave:"query=page"`
	}
	called := false
	h := HandlerFromExtractor(func(req *Request, a args) (*Response, error) {
		called = true
		return NewResponse(StatusOK), nil
	})

	if _, err := h(req); err == nil {
		t.Fatal("expected a parse failure on the query field to short-circuit before fn runs")
	}
	if called {
		t.Error("expected fn not to run once extraction failed")
	}
}
