// Package server exposes editing sessions over HTTP.
//
// Each session owns one Editor. Routes live under /api/documents:
//
//	POST   /api/documents                 load a document (JSON) or upload one (multipart)
//	GET    /api/documents/{id}            current version
//	DELETE /api/documents/{id}            end the session
//	GET    /api/documents/{id}/preview    read-only HTML
//	POST   /api/documents/{id}/format     {"command": "bold", "value": ""}
//	POST   /api/documents/{id}/select     {"start": 0, "end": 5}
//	POST   /api/documents/{id}/checkbox
//	POST   /api/documents/{id}/image      multipart "file"
//	POST   /api/documents/{id}/signature  multipart "file"
//	POST   /api/documents/{id}/toggle
//	PUT    /api/documents/{id}/content    {"html": "..."}
//	POST   /api/documents/{id}/sync
//	POST   /api/documents/{id}/undo
//	POST   /api/documents/{id}/reset
//	GET    /api/documents/{id}/export.pdf
//	GET    /api/documents/{id}/export.md
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/salhakar/doceditor"
)

// Server limits.
const (
	DefaultMaxUploadBytes = 10 << 20
	DefaultMaxSessions    = 256

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// ErrSessionNotFound is returned for unknown or closed session ids.
var ErrSessionNotFound = errors.New("session not found")

// ErrTooManySessions is returned when the session limit is reached.
var ErrTooManySessions = errors.New("too many open sessions")

// ErrLocalPathRefused is returned when a client asks for a local file and
// local files are not allowed.
var ErrLocalPathRefused = errors.New("local document paths are not allowed")

// Config wires the server to the library.
type Config struct {
	Addr            string
	MaxUploadBytes  int64
	MaxSessions     int
	AllowLocalFiles bool // let clients load paths on the server's filesystem

	Loader    *doceditor.Loader
	Exporters *doceditor.ExporterPool

	// NewExecutor builds the surface for each session. Defaults to the
	// in-memory DOM.
	NewExecutor func() doceditor.RichTextCommandExecutor

	EditorOptions []doceditor.EditorOption
	Logger        *slog.Logger
}

// Server serves editing sessions.
type Server struct {
	cfg    Config
	logger *slog.Logger
	router *chi.Mux

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// session is one open editor.
type session struct {
	id      uuid.UUID
	editor  *doceditor.Editor
	created time.Time
}

// New returns a server for cfg. Loader and Exporters are required.
func New(cfg Config) (*Server, error) {
	if cfg.Loader == nil {
		return nil, errors.New("server: loader is required")
	}
	if cfg.Exporters == nil {
		return nil, errors.New("server: exporter pool is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.NewExecutor == nil {
		cfg.NewExecutor = doceditor.NewDOMExecutor
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		logger:   cfg.Logger,
		sessions: make(map[uuid.UUID]*session),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/documents", func(r chi.Router) {
		r.Post("/", s.handleCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.withEditor(s.handleGet))
			r.Delete("/", s.handleDelete)
			r.Get("/preview", s.withEditor(s.handlePreview))
			r.Post("/format", s.withEditor(s.handleFormat))
			r.Post("/select", s.withEditor(s.handleSelect))
			r.Post("/checkbox", s.withEditor(s.handleCheckbox))
			r.Post("/image", s.withEditor(s.handleImage))
			r.Post("/signature", s.withEditor(s.handleSignature))
			r.Post("/toggle", s.withEditor(s.handleToggle))
			r.Put("/content", s.withEditor(s.handleInput))
			r.Post("/sync", s.withEditor(s.handleSync))
			r.Post("/undo", s.withEditor(s.handleUndo))
			r.Post("/reset", s.withEditor(s.handleReset))
			r.Get("/export.pdf", s.withEditor(s.handleExportPDF))
			r.Get("/export.md", s.withEditor(s.handleExportMarkdown))
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// and closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return s.Close()
		}
		_ = s.Close()
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	return errors.Join(err, s.Close())
}

// Close ends every open session.
func (s *Server) Close() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uuid.UUID]*session)
	s.mu.Unlock()

	var errs []error
	for _, sess := range sessions {
		if err := sess.editor.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// open creates a session for doc.
func (s *Server) open(ctx context.Context, doc *doceditor.Document) (*session, error) {
	s.mu.RLock()
	full := len(s.sessions) >= s.cfg.MaxSessions
	s.mu.RUnlock()
	if full {
		return nil, ErrTooManySessions
	}

	opts := append([]doceditor.EditorOption{
		doceditor.WithExecutor(s.cfg.NewExecutor()),
		doceditor.WithEditorLogger(s.logger),
	}, s.cfg.EditorOptions...)
	ed, err := doceditor.NewEditor(ctx, doc, opts...)
	if err != nil {
		return nil, err
	}

	sess := &session{id: uuid.New(), editor: ed, created: time.Now()}
	s.mu.Lock()
	// Other requests may have filled the table while the editor was built.
	if len(s.sessions) >= s.cfg.MaxSessions {
		s.mu.Unlock()
		_ = ed.Close()
		return nil, ErrTooManySessions
	}
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.logger.Info("session opened", "session", sess.id.String(), "title", doc.Title, "source", doc.Source)
	return sess, nil
}

// lookup finds the session named by the {id} URL parameter.
func (s *Server) lookup(r *http.Request) (*session, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// remove drops and closes the session named by the {id} URL parameter.
func (s *Server) remove(r *http.Request) error {
	sess, err := s.lookup(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()

	s.logger.Info("session closed", "session", sess.id.String(), "age", time.Since(sess.created).Round(time.Millisecond))
	return sess.editor.Close()
}
