// Package serve serves a built photo wall, answering deep links with the
// page of the gallery they point into.
package serve

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/tstromberg/bildvagg/pkg/urlpath"
)

// Server serves a gallery output tree.
type Server struct {
	dir   string
	files http.Handler
}

// New creates a new server for the tree at dir.
func New(dir string) *Server {
	return &Server{
		dir:   dir,
		files: http.FileServer(http.Dir(dir)),
	}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/healthz", HealthHandler())
	mux.Handle("/", s)
	return mux
}

// ServeHTTP serves static files, and the gallery page for deep links.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	if base, name, ok := urlpath.ParseDeepLink(p); ok {
		page := filepath.Join(s.dir, filepath.FromSlash(path.Clean(base)), "index.html")
		if f, err := os.Open(page); err == nil {
			defer f.Close()
			klog.V(1).Infof("deep link %q -> %s", name, page)
			st, err := f.Stat()
			if err != nil {
				http.Error(w, "stat failed", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			http.ServeContent(w, r, "index.html", st.ModTime(), f)
			return
		}
		klog.V(1).Infof("deep link %s has no gallery page", p)
	}

	s.files.ServeHTTP(w, r)
}

// HealthHandler returns a simple health check endpoint.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"status":"ok"}`)
	})
}

// ListenAndServe serves s on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		klog.Infof("Listening on %s...", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	klog.Infof("shutting down %s", addr)
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		klog.Warningf("graceful shutdown failed: %v", err)
		return srv.Close()
	}
	return nil
}
