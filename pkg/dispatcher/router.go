// Package dispatcher provides a small router associating paths
// and `HTTP` verbs to handlers.
package dispatcher

import (
	"net/http"

	"grafik/pkg/logger"
)

// Router :
// Dispatches the requests to the registered routes.
//
// The `notFoundHandler` is used when no route matches the path
// of a request.
//
// The `methodNotAllowedHandler` is used when a route matches
// the path of a request but not its method.
//
// The `routes` are tried in registration order.
//
// The `log` is passed on to the routes and default handlers.
type Router struct {
	notFoundHandler         http.Handler
	methodNotAllowedHandler http.Handler
	routes                  []*Route
	log                     logger.Logger
}

// NewRouter :
// Creates a router with no route and the default handlers for
// not found and method not allowed.
func NewRouter(log logger.Logger) *Router {
	if log == nil {
		log = logger.Discard
	}

	return &Router{
		notFoundHandler:         NotFound(log),
		methodNotAllowedHandler: NotAllowed(log),
		routes:                  make([]*Route, 0),
		log:                     log,
	}
}

// addRoute :
// Registers a new route with no method for the input path. An
// empty path is replaced by `/`.
func (r *Router) addRoute(path string) *Route {
	if len(path) == 0 {
		path = "/"
	}

	route := NewRoute(path, r.log)
	r.routes = append(r.routes, route)

	return route
}

// HandleFunc :
// Registers a new route with the input path and handler. Note
// that the route is still registered in case another route with
// the same path exists.
//
// Returns the created route.
func (r *Router) HandleFunc(path string, f func(http.ResponseWriter, *http.Request)) *Route {
	return r.addRoute(path).HandlerFunc(f)
}

// Handle is the `http.Handler` version of `HandleFunc`.
func (r *Router) Handle(path string, h http.Handler) *Route {
	return r.addRoute(path).Handle(h)
}

// ServeHTTP :
// Dispatches the request to the first matching route, or to
// the not found or not allowed handlers.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.match(req).ServeHTTP(w, req)
}

// match :
// Returns the handler to use for the input request. When some
// route matches the path but none accepts the method, the not
// allowed handler is selected.
func (r *Router) match(req *http.Request) http.Handler {
	allowed := true

	for _, route := range r.routes {
		switch route.match(req) {
		case matched:
			return route.Handler()
		case methodNotAllowed:
			allowed = false
		}
	}

	if !allowed {
		return r.methodNotAllowedHandler
	}

	return r.notFoundHandler
}
