package weave

// notFoundStub is the synthetic endpoint invariant 3 requires: when
// matching fails, only root-level middleware runs, wrapping a handler
// that always returns 404.
func notFoundStub(req *Request) (*Response, error) {
	return nil, errNotFound()
}

// Dispatch runs the full C5 pipeline for one request against tree:
// match, resolve the method (with HEAD→GET fallback and 405), build the
// onion chain from the matched ancestry, and invoke it. The returned
// error is nil whenever a Response was produced, including error
// responses already converted by errorToResponse — callers that need the
// raw Response always get one.
func Dispatch(tree *RouteTree, req *Request) *Response {
	result := tree.match(req.Path())
	if result == nil {
		resp, err := chainHandler(tree.RootHooks(), notFoundStub)(req)
		return finalize(resp, err)
	}

	h, stripBody, matchErr := resolveMethod(result.node, req.Method)
	if matchErr != nil {
		stub := func(req *Request) (*Response, error) { return nil, matchErr }
		resp, err := chainHandler(result.ancestry, stub)(req)
		return finalize(resp, err)
	}

	for name, p := range result.params {
		req.setParam(name, p)
	}
	if stripBody {
		req.stripBodyForHead()
	}

	resp, err := chainHandler(result.ancestry, h)(req)
	resp = finalize(resp, err)
	if stripBody {
		resp.StripBody()
	}
	return resp
}

// resolveMethod implements "Endpoint resolution": exact
// method hit, HEAD falling back to GET with body stripped, 405 when the
// node has handlers but not for this method, 404 when it's a purely
// structural node.
func resolveMethod(n *node, method string) (h Handler, stripBody bool, err error) {
	if h, ok := n.handlers[method]; ok {
		return h, false, nil
	}
	if len(n.handlers) == 0 {
		return nil, false, errNotFound()
	}
	if method == MethodHead {
		if h, ok := n.handlers[MethodGet]; ok {
			return h, true, nil
		}
	}
	return nil, false, errMethodNotAllowed()
}

// finalize converts a handler/middleware error into a Response via the
// terminal adapter, and guarantees a non-nil Response either way.
func finalize(resp *Response, err error) *Response {
	if err != nil {
		return errorToResponse(err)
	}
	if resp == nil {
		return NewResponse(StatusOK)
	}
	return resp
}
