// Package api serves tower-set counts over HTTP.
//
// Routes:
//
//	GET /healthz                      liveness check
//	GET /v1/sequence?n=N&sizes=1,2    counts for 0..N
//	GET /v1/sequence/{n}?sizes=1,2    the count for n
//	GET /v1/verify?n=N&sizes=1,2      counts cross-checked against partitions
//
// Counts are returned as decimal strings. Errors are JSON objects with a
// code and a message; invalid input is 400, a request cancelled mid
// computation or turned away by the concurrency limit is 503, everything
// else 500.
//
// A request for n builds an (n+1)^3 table of big integers; n=120 needs a few
// hundred MB while it runs and n=200 several GB of allocation, so MaxN and
// MaxConcurrent together bound the server's memory.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/towersets/pkg/pipeline"
)

// Defaults for unset Options fields.
const (
	DefaultMaxN          = 120
	DefaultMaxConcurrent = 4
	DefaultBacklog       = 16
	DefaultBacklogWait   = 30 * time.Second
)

// Options configures a Server.
type Options struct {
	// MaxN is the largest n a request may ask for.
	MaxN int

	// LevelSizes apply when a request has no sizes parameter.
	LevelSizes []int

	// Workers is passed through to the counting stages.
	Workers int

	// MaxConcurrent bounds the /v1 requests computing at once. Up to Backlog
	// more wait at most BacklogWait for a slot; the rest get 503. A negative
	// Backlog turns waiting off.
	MaxConcurrent int
	Backlog       int
	BacklogWait   time.Duration

	Logger *log.Logger
}

// Server is an http.Handler over a pipeline.Runner.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	router chi.Router
}

// New builds the router.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.MaxN <= 0 {
		opts.MaxN = DefaultMaxN
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Backlog < 0 {
		opts.Backlog = 0
	} else if opts.Backlog == 0 {
		opts.Backlog = DefaultBacklog
	}
	if opts.BacklogWait <= 0 {
		opts.BacklogWait = DefaultBacklogWait
	}
	if opts.Logger == nil {
		opts.Logger = runner.Logger
	}
	s := &Server{runner: runner, opts: opts}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(opts.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ThrottleWithOpts(middleware.ThrottleOpts{
			Limit:          opts.MaxConcurrent,
			BacklogLimit:   opts.Backlog,
			BacklogTimeout: opts.BacklogWait,
			StatusCode:     http.StatusServiceUnavailable,
			RetryAfterFn:   func(bool) time.Duration { return 5 * time.Second },
		}))
		r.Get("/sequence", s.handleSequence)
		r.Get("/sequence/{n}", s.handleValue)
		r.Get("/verify", s.handleVerify)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.opts.Logger.Info("listening", "addr", ln.Addr().String(), "max_n", s.opts.MaxN, "max_concurrent", s.opts.MaxConcurrent)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
