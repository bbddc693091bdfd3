package dispatcher

import (
	"net/http"

	"grafik/pkg/logger"
)

// NotFound :
// Describes a `HTTP` handler which logs the request and answers
// with a `404` code.
//
// The `log` represents the logger object to use to notify of any
// request reaching this handler.
func NotFound(log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Warn("[dispatcher] Handling request from \"%v\" in not found handler", r.URL)

		http.NotFound(w, r)
	}
}

// NotAllowed :
// Describes a `HTTP` handler used when a route exists but does
// not accept the method of the request. It answers with a `405`
// code.
//
// The `log` represents the logger object to use to notify of any
// request reaching this handler.
func NotAllowed(log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Warn("[dispatcher] Handling request from \"%v\" in not allowed handler", r.URL)

		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// NoOp :
// Describes a `HTTP` handler answering with a `200` code and no
// content. It is the handler of a route until one is assigned.
func NoOp(log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("[dispatcher] Handling request from \"%v\" in no op handler", r.URL)
	}
}
