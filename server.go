package arcade

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server hands out the catalog, launch scripts and archives produced by
// previous runs so cabinets can pull them.
type Server struct {
	cfg  Config
	addr string
}

func NewServer(cfg Config, addr string) *Server {
	return &Server{
		cfg:  cfg,
		addr: addr,
	}
}

// ArchiveInfo describes one archive on disk.
type ArchiveInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

func (s *Server) archiveDir() (string, error) {
	root, err := filepath.Abs(s.cfg.WorkDir)
	if err != nil {
		return "", err
	}
	return filepath.Dir(root), nil
}

func (s *Server) archivePattern() string {
	prefix := s.cfg.ArchivePrefix
	if prefix == "" {
		prefix = DefaultArchivePrefix
	}
	return prefix + "-*.tar.gz"
}

// Archives lists the archives next to the work dir, newest name first.
func (s *Server) Archives() ([]ArchiveInfo, error) {
	dir, err := s.archiveDir()
	if err != nil {
		return nil, err
	}
	names, err := doublestar.Glob(os.DirFS(dir), s.archivePattern(), doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	out := make([]ArchiveInfo, 0, len(names))
	for _, n := range names {
		fi, err := os.Stat(filepath.Join(dir, n))
		if err != nil {
			return nil, err
		}
		out = append(out, ArchiveInfo{Name: n, Size: fi.Size(), ModTime: fi.ModTime()})
	}
	return out, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/gamelist.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		http.ServeFile(w, r, s.cfg.CatalogPath())
	})
	r.Get("/report", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, s.cfg.ReportPath())
	})
	r.Get("/archives", func(w http.ResponseWriter, r *http.Request) {
		archives, err := s.Archives()
		if err != nil {
			s.cfg.logger().Error("list archives", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(archives); err != nil {
			s.cfg.logger().Error("encode archives", "err", err)
		}
	})
	r.Get("/archives/{file}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "file")
		if ok, _ := doublestar.Match(s.archivePattern(), name); !ok || strings.ContainsAny(name, `/\`) {
			http.NotFound(w, r)
			return
		}
		dir, err := s.archiveDir()
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/gzip")
		http.ServeFile(w, r, filepath.Join(dir, name))
	})
	r.Get("/scripts/{file}", func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "file")
		if filepath.Ext(name) != ".sh" || strings.ContainsAny(name, `/\`) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/x-shellscript")
		http.ServeFile(w, r, filepath.Join(s.cfg.WorkDir, s.cfg.ScriptsDir, name))
	})
	return r
}

// Serve listens until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.cfg.logger().Info("serving", "addr", s.addr, "root", s.cfg.WorkDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
