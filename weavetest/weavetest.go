// Package weavetest provides a weave.Server-aware HTTP test helper, the
// same role the framework's Qtest/QuickTestOptions pairing plays:
// construct a request, run it through the server's handler with
// httptest, and assert on the result without standing up a real
// listener.
package weavetest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/weaveframe/weave"
)

// Options configures a single test request.
type Options struct {
	Method string
	URI string
	Headers map[string]string
	QueryParams map[string]string
	Body []byte
	Cookies []*http.Cookie
	LogDetails bool

	// RemoteAddr overrides the simulated socket peer address (host:port).
	// Defaults to net/http's own test default when empty.
	RemoteAddr string
}

// Result is the response returned by Do, with assertion helpers mirroring
// the ones handlers' own tests use throughout this module.
type Result struct {
	body []byte
	bodyStr string
	statusCode int
	response *http.Response
}

func (r *Result) Body() []byte { return r.body }
func (r *Result) BodyStr() string { return r.bodyStr }
func (r *Result) StatusCode() int { return r.statusCode }
func (r *Result) Response() *http.Response { return r.response }

// AssertStatus fails if the response status does not equal expected.
func (r *Result) AssertStatus(expected int) error {
	if r.statusCode != expected {
		return fmt.Errorf("expected status %d but got %d", expected, r.statusCode)
	}
	return nil
}

// AssertHeader fails if header key is not exactly expectedValue.
func (r *Result) AssertHeader(key, expectedValue string) error {
	value := r.response.Header.Get(key)
	if value != expectedValue {
		return fmt.Errorf("expected header %q to be %q but got %q", key, expectedValue, value)
	}
	return nil
}

// AssertBodyContains fails if the body doesn't contain expected. A
// non-string expected value is JSON-marshaled first.
func (r *Result) AssertBodyContains(expected any) error {
	var expectedStr string
	switch v := expected.(type) {
	case string:
		expectedStr = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal expected value: %w", err)
		}
		expectedStr = string(b)
	}
	if !strings.Contains(r.bodyStr, expectedStr) {
		return fmt.Errorf("expected body to contain %q but got %q", expectedStr, r.bodyStr)
	}
	return nil
}

// Do runs a single simulated request against server's handler, built
// fresh by Server.Handler() (route tree already final, but no listener
// bound).
func Do(server *weave.Server, opts Options) (*Result, error) {
	uri, err := attachQueryParams(opts.URI, opts.QueryParams)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(opts.Method, uri, bytes.NewReader(opts.Body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	for _, c := range opts.Cookies {
		req.AddCookie(c)
	}
	if opts.RemoteAddr != "" {
		req.RemoteAddr = opts.RemoteAddr
	}

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	resp := rec.Result()
	body, err := readAndResetBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if opts.LogDetails {
		logDetails(opts, resp, body)
	}

	return &Result{
		body: body,
		bodyStr: string(body),
		statusCode: resp.StatusCode,
		response: resp,
	}, nil
}

func attachQueryParams(uri string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func readAndResetBody(resp *http.Response) ([]byte, error) {
	if resp.Body == nil {
		return nil, nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func logDetails(opts Options, resp *http.Response, body []byte) {
	fmt.Println("----------------------------------------")
	fmt.Printf("request: %s %s\n", opts.Method, opts.URI)
	fmt.Printf("request body: %s\n", string(opts.Body))
	fmt.Printf("status: %d\n", resp.StatusCode)
	fmt.Printf("headers: %+v\n", resp.Header)
	fmt.Printf("response body: %s\n", string(body))
	fmt.Println("----------------------------------------")
}
