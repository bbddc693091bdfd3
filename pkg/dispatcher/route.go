package dispatcher

import (
	"net/http"
	"strings"

	"grafik/pkg/logger"
)

// matching describes how well a route matches a request.
type matching int

// Definition of the possible match state for a route.
const (
	notFound matching = iota
	methodNotAllowed
	matched
)

// Route :
// Defines a path of the server along with the `HTTP` verbs
// it accepts and the handler processing the requests.
//
// The `methods` defines the `HTTP` verbs associated to this
// route. Requests with another verb are not served by it.
//
// The `name` of the route is the absolute path to target to
// reach the route.
//
// The `handler` defines the processing to call in case the
// route is triggered. It is initialized with a `NoOp` one.
//
// The `log` is used to notify about invalid configuration.
type Route struct {
	methods map[string]bool
	name    string
	handler http.Handler
	log     logger.Logger
}

// NewRoute :
// Creates a route with no associated methods and the input
// path.
func NewRoute(path string, log logger.Logger) *Route {
	return &Route{
		methods: make(map[string]bool),
		name:    path,
		handler: NoOp(log),
		log:     log,
	}
}

// Handler returns the processing handler for this route.
func (r *Route) Handler() http.Handler {
	return r.handler
}

// Methods :
// Registers the input verbs as valid methods for this route.
// Verbs are case insensitive and invalid ones are ignored.
//
// Returns this route to allow chain calls.
func (r *Route) Methods(methods ...string) *Route {
	for method := range filterMethods(methods, r.log) {
		r.methods[method] = true
	}

	return r
}

// HandlerFunc :
// Registers the input function as the processing unit of this
// route.
//
// Returns this route to allow chain calls.
func (r *Route) HandlerFunc(f func(http.ResponseWriter, *http.Request)) *Route {
	r.handler = http.HandlerFunc(f)

	return r
}

// Handle is the `http.Handler` version of `HandlerFunc`.
func (r *Route) Handle(h http.Handler) *Route {
	r.handler = h

	return r
}

// match :
// Checks whether the path and the method of the request
// correspond to this route.
func (r *Route) match(req *http.Request) matching {
	if !r.matchName(req.URL.Path) {
		return notFound
	}

	if !r.methods[req.Method] {
		return methodNotAllowed
	}

	return matched
}

// matchName :
// Determines whether the input `uri` targets this route or one
// of its sub-paths. A route `/path/to/route` matches the uri
// `/path/to/route/1` but not `/path/to/routeeee`.
func (r *Route) matchName(uri string) bool {
	if !strings.HasPrefix(uri, r.name) {
		return false
	}

	routeElems := strings.Split(r.name, "/")
	uriElems := strings.Split(uri, "/")

	if len(routeElems) > len(uriElems) {
		return false
	}

	return routeElems[len(routeElems)-1] == uriElems[len(routeElems)-1]
}
