// Package admin exposes the operational end points of the logger:
// metrics, runtime level control and a status report.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"

	"grafik/pkg/arguments"
	"grafik/pkg/dispatcher"
	"grafik/pkg/logger"
	"grafik/pkg/metrics"
)

// shutdownTimeout bounds the time given to in-flight requests
// once the server is asked to stop.
const shutdownTimeout = 5 * time.Second

// DropCounter :
// Implemented by the buffered loggers which may lose records
// when their buffer overflows.
type DropCounter interface {
	Dropped() uint64
}

// Options :
// Gathers the elements the server reports on or controls.
//
// The `AppName` and `Metadata` describe the running instance.
//
// The `Level` controls the minimum severity of the console
// logger. When it is `nil` the level cannot be changed.
//
// The `Journals` are the buffered loggers whose losses are
// reported in the status.
//
// The `Gatherer` provides the metrics. The default registry
// is used when it is `nil`.
type Options struct {
	AppName  string
	Metadata arguments.AppMetadata
	Level    logger.Leveler
	Journals []DropCounter
	Gatherer prometheus.Gatherer
}

// Server :
// Serves the admin routes. Inspired from the approach described
// in the following article:
// https://pace.dev/blog/2018/05/09/how-I-write-http-services-after-eight-years
//
// The `port` is the port to listen to, taken from the metadata.
//
// The `options` hold the reported elements.
//
// The `started` is the time the server was created, used to
// compute the uptime.
//
// The `log` notifies of the activity of the server.
type Server struct {
	port    int
	options Options
	started time.Time
	log     logger.Logger
}

// NewServer :
// Creates a server from the input options. The `log` is used to
// report the changes of level and the failures to answer.
func NewServer(options Options, log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard
	}
	if options.Gatherer == nil {
		options.Gatherer = prometheus.DefaultGatherer
	}

	return &Server{
		port:    options.Metadata.Port,
		options: options,
		started: time.Now(),
		log:     log,
	}
}

// recoveryLogger forwards the panics caught while serving a
// request to the critical severity.
type recoveryLogger struct {
	log logger.Logger
}

func (r recoveryLogger) Println(args ...interface{}) {
	r.log.Critical("[admin] Recovered from panic while serving request (err: %s)", fmt.Sprint(args...))
}

// routes :
// Registers the admin routes in a new router.
func (s *Server) routes() *dispatcher.Router {
	router := dispatcher.NewRouter(s.log)

	router.Handle("/metrics", metrics.Handler(s.options.Gatherer)).Methods("GET")
	router.HandleFunc("/level", s.getLevel()).Methods("GET")
	router.HandleFunc("/level", s.setLevel()).Methods("PUT")
	router.HandleFunc("/status", s.status()).Methods("GET")

	return router
}

// Handler :
// Returns the handler serving the admin routes. Requests are
// written to the access log at the info severity and panics are
// recovered with an internal error answer.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.routes()

	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.log}),
		handlers.PrintRecoveryStack(false),
	)(h)

	return handlers.CombinedLoggingHandler(logger.Writer(logger.InfoLevel), h)
}

// Serve :
// Listens on the configured port and serves the admin routes until
// the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(s.port))
	if err != nil {
		return fmt.Errorf("could not listen on port %d (err: %w)", s.port, err)
	}

	return s.ServeListener(ctx, listener)
}

// ServeListener :
// Serves the admin routes on the input listener until the context
// is cancelled. The server is then shut down gracefully: pending
// requests are given some time to complete.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.Serve(listener)
	}()

	s.log.Info("[admin] Serving on %s", listener.Addr())

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shut down admin server (err: %w)", err)
	}

	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.log.Info("[admin] Stopped serving on %s", listener.Addr())

	return nil
}
