package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MacroPower/csvdash/pkg/config"
	"github.com/MacroPower/csvdash/pkg/dataset"
	"github.com/MacroPower/csvdash/pkg/session"
)

const (
	shutdownTimeout = 10 * time.Second
	maxUploadSize   = 32 << 20
)

var (
	//go:embed templates/*.html
	templateFS embed.FS

	//go:embed static
	staticFS embed.FS
)

// ErrServe indicates the HTTP server stopped unexpectedly.
var ErrServe = errors.New("serve")

// Server is the dashboard HTTP server.
type Server struct {
	cfg     *config.Config
	loader  *dataset.Loader
	store   *session.Store
	tmpl    *template.Template
	rand    func() *rand.Rand
	handler http.Handler
	sweep   time.Duration
}

type ServerOpt func(*Server)

// WithStore replaces the session store.
func WithStore(s *session.Store) ServerOpt {
	return func(srv *Server) {
		srv.store = s
	}
}

// WithRand sets the source of random numbers used to generate datasets.
func WithRand(fn func() *rand.Rand) ServerOpt {
	return func(srv *Server) {
		srv.rand = fn
	}
}

// WithSweepInterval sets how often expired sessions are removed while
// running.
func WithSweepInterval(d time.Duration) ServerOpt {
	return func(srv *Server) {
		srv.sweep = d
	}
}

// NewServer creates a [Server] serving the CSV files described by cfg.
func NewServer(cfg *config.Config, opts ...ServerOpt) (*Server, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	srv := &Server{
		cfg:    cfg,
		loader: cfg.Loader(),
		store:  session.NewStore(cfg.SessionTTL),
		tmpl:   tmpl,
		rand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Demo data.
		},
		sweep: time.Minute,
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.handler = srv.routes()

	return srv, nil
}

func (s *Server) routes() http.Handler {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/files", s.handleAPIFiles)
	mux.HandleFunc("GET /api/files/{name}", s.handleAPIFile)

	mux.Handle("GET /{$}", s.withSession(s.handleDashboard))
	mux.Handle("POST /select", s.withSession(s.handleSelect))
	mux.Handle("POST /upload", s.withSession(s.handleUpload))
	mux.Handle("POST /generate", s.withSession(s.handleGenerate))
	mux.Handle("POST /clear", s.withSession(s.handleClear))
	mux.Handle("GET /chart/box.svg", s.withSession(s.handleBoxChart))
	mux.Handle("GET /chart/top.svg", s.withSession(s.handleTopChart))
	mux.Handle("GET /download.csv", s.withSession(s.handleDownload))

	return recoverPanics(logRequests(compress(mux)))
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrServe, err)
	}

	return s.Serve(ctx, ln)
}

// Serve is like [Server.Run], but accepts connections on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		slog.Info("serving dashboard",
			slog.String("addr", ln.Addr().String()),
			slog.String("data_dir", s.loader.Dir()),
		)

		err := hs.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("%w: %w", ErrServe, err)
	})

	eg.Go(func() error {
		s.sweepSessions(ctx)

		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()

		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := hs.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		return nil
	})

	return eg.Wait() //nolint:wrapcheck // Errors are wrapped above.
}

func (s *Server) sweepSessions(ctx context.Context) {
	if s.sweep <= 0 {
		return
	}

	t := time.NewTicker(s.sweep)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.store.Sweep()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}
