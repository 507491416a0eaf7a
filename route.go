package weave

import "path"

// Route is the builder-time tree node /§4.C4 describes: a path
// segment, a method→handler map, local middleware, and child routes.
// Route values are constructed at program start and frozen into a
// RouteTree by NewRouteTree; nothing here is safe for concurrent mutation
// once a Server has started.
type Route struct {
	pattern string
	handlers map[string]Handler
	hooks []*Hook
	children []*Route
	operationID string
	staticDir string
	quicPort int
}

// NewRoute creates a Route for the given path segment (relative to its
// eventual parent; "/" for the tree root).
func NewRoute(pattern string) *Route {
	return &Route{pattern: pattern, handlers: make(map[string]Handler)}
}

// Append adds child as a direct descendant and returns the Route itself,
// for chained construction.
func (r *Route) Append(child *Route) *Route {
	r.children = append(r.children, child)
	return r
}

// Extend is Append's plural form: adds every child in children.
func (r *Route) Extend(children ...*Route) *Route {
	r.children = append(r.children, children...)
	return r
}

func (r *Route) method(method string, h Handler) *Route {
	r.handlers[method] = h
	return r
}

func (r *Route) Get(h Handler) *Route { return r.method(MethodGet, h) }
func (r *Route) Post(h Handler) *Route { return r.method(MethodPost, h) }
func (r *Route) Put(h Handler) *Route { return r.method(MethodPut, h) }
func (r *Route) Delete(h Handler) *Route { return r.method(MethodDelete, h) }
func (r *Route) Patch(h Handler) *Route { return r.method(MethodPatch, h) }
func (r *Route) Options(h Handler) *Route { return r.method(MethodOptions, h) }

// Hook appends mw to this node's local middleware, applied around
// everything this node and its descendants match.
func (r *Route) Hook(mw Middleware) *Route {
	r.hooks = append(r.hooks, alwaysHook(mw))
	return r
}

// HookIf appends mw guarded by a capability query: applies is consulted
// per request, and a "no" skips this middleware without skipping the
// rest of the chain.
func (r *Route) HookIf(mw Middleware, applies func(req *Request) bool) *Route {
	r.hooks = append(r.hooks, &Hook{Middleware: mw, Applies: applies})
	return r
}

// OperationID sets a stable identifier for this route's endpoint. The
// core never reads it; it exists only as an attachment point for an
// external OpenAPI generator (out of scope for this package).
func (r *Route) OperationID(id string) *Route {
	r.operationID = id
	return r
}

// WithStatic marks this node as a static-file root served from dir. The
// actual file serving is delegated to the file/static-asset handler
// collaborator (out of scope for this package); this only records the
// mapping so a Server wiring one in knows which directory to use.
func (r *Route) WithStatic(dir string) *Route {
	r.staticDir = dir
	return r
}

// StaticDir returns the directory set by WithStatic, or "" if none.
func (r *Route) StaticDir() string { return r.staticDir }

// WithQUICPort records the port C1's QUIC listener binds to and injects
// the Alt-Svc advertisement middleware at this node.
func (r *Route) WithQUICPort(port int) *Route {
	r.quicPort = port
	r.Hook(altSvcMiddleware(port))
	return r
}

// Join is a small path-joining helper routes built programmatically (e.g.
// cmd/weaveserve's scenario wiring) can use instead of hand-concatenating
// slashes.
func Join(elems ...string) string {
	return path.Join(elems...)
}
