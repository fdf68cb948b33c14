// Package server runs the static dev server for the built site. It serves
// the workspace (or dist/) tree over chi and, in watch mode, re-runs the
// dataset join whenever a source file under data/ changes so a browser
// reload always sees fresh map data.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"powermap/internal/logging"
)

// Options configures the dev server.
type Options struct {
	Addr    string
	Root    string // directory served at /
	DataDir string // watched in watch mode
	Logger  *zap.Logger
}

// Server is the static dev server.
type Server struct {
	opts Options
	http *http.Server
}

// New builds the server and its router.
func New(opts Options) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(accessLog(opts.Logger))
	r.Use(middleware.NoCache)

	fileServer := http.FileServer(http.Dir(opts.Root))
	r.Handle("/*", fileServer)

	return &Server{
		opts: opts,
		http: &http.Server{Addr: opts.Addr, Handler: r},
	}
}

// accessLog emits one structured line per request.
func accessLog(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if log != nil {
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)))
			}
		})
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	log := logging.Get(logging.CategoryServe)

	errCh := make(chan error, 1)
	go func() {
		log.Info("serving %s on %s", s.opts.Root, s.opts.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// ValidateRoot checks the served directory exists and contains a built
// index.html.
func ValidateRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}
	if _, err := os.Stat(filepath.Join(root, "index.html")); err != nil {
		return fmt.Errorf("root %s has no index.html (build first?)", root)
	}
	return nil
}

// isSourcePath reports whether a changed path should trigger a rebuild:
// files under data/ that are not themselves pipeline outputs of the
// rebuild (map-data.json), debug droppings, or editor temp files.
func isSourcePath(path string) bool {
	base := filepath.Base(path)
	switch {
	case base == "map-data.json":
		return false
	case strings.HasPrefix(base, "_debug_"):
		return false
	case strings.HasPrefix(base, "."), strings.HasSuffix(base, "~"):
		return false
	}
	ext := filepath.Ext(base)
	return ext == ".json" || ext == ".csv" || ext == ".geojson"
}
