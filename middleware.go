package weave

// Handler processes a Request and produces a Response or an error. A
// BusinessError returned here is converted to a Response with its own
// status; any other error maps to a sanitized 500.
type Handler func(req *Request) (*Response, error)

// Next is the opaque handle a Middleware calls to advance to the next
// link in the chain — the terminal handler, or the next middleware
// wrapping it. Middleware may short-circuit by never calling Next.
type Next func(req *Request) (*Response, error)

// Middleware wraps a Handler. It may mutate the Request before calling
// next, short-circuit by returning without calling next, or observe and
// mutate the Response next returns.
type Middleware func(next Next) Next

// Hook pairs a Middleware with an optional capability query: "does this
// middleware apply to this request?". A nil Applies defaults to "yes".
type Hook struct {
	Middleware Middleware
	Applies func(req *Request) bool
}

func alwaysHook(mw Middleware) *Hook { return &Hook{Middleware: mw} }

// chainHandler builds the onion chain `[hooks[0], hooks[1], ..., h]` —
// the first hook is outermost and runs first, matching the framework's
// mwWrapper (last-added wraps innermost) generalized from a single flat
// stack to the route tree's per-node accumulation. Each hook's capability
// query is evaluated per request, immediately before it would run.
func chainHandler(hooks []*Hook, h Handler) Handler {
	next := Next(h)
	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		downstream := next
		next = func(req *Request) (*Response, error) {
			if hook.Applies != nil && !hook.Applies(req) {
				return downstream(req)
			}
			return hook.Middleware(downstream)(req)
		}
	}
	return Handler(next)
}
