// Package server exposes editing sessions over HTTP and websockets so a
// browser front end can drive the annotation engine remotely.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/example/photomark/internal/editor"
	"github.com/example/photomark/internal/export"
	"github.com/example/photomark/internal/notify"
	"github.com/example/photomark/internal/store/memory"
)

// Options configures a Server.
type Options struct {
	// Session returns the options every new session is created with.
	Session []editor.Option
	Store   export.Store
	// Notifier reports stored exports; nil disables notifications.
	Notifier *notify.Notifier
	// AllowedOrigins for CORS and websocket upgrades. Empty allows
	// localhost only.
	AllowedOrigins []string
	// PublicURL prefixes export links. Empty yields relative links.
	PublicURL string
	// SessionTTL cancels sessions left idle for longer. Zero keeps them
	// until shutdown.
	SessionTTL time.Duration
	Log        *logrus.Entry
}

// Server owns the live sessions.
type Server struct {
	opts     Options
	log      *logrus.Entry
	sessions *registry
	router   chi.Router
}

// New creates a Server and its router.
func New(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	if opts.Store == nil {
		opts.Store = memory.NewStore()
	}
	opts.PublicURL = strings.TrimRight(opts.PublicURL, "/")
	s := &Server{
		opts:     opts,
		log:      opts.Log.WithField("component", "server"),
		sessions: newRegistry(),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) origins() []string {
	if len(s.opts.AllowedOrigins) > 0 {
		return s.opts.AllowedOrigins
	}
	return []string{"http://localhost:*", "http://127.0.0.1:*"}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins(),
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/favicon.ico", handleFavicon)
	r.Get("/icon.svg", handleIconSVG)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(s.sessionCtx)
				r.Get("/", s.handleState)
				r.Delete("/", s.handleCancel)
				r.Get("/snapshot", s.handleSnapshot)
				r.Get("/objects", s.handleObjects)
				r.Get("/preview.png", s.handlePreview)
				r.Post("/tool", s.handleTool)
				r.Post("/pointer", s.handlePointer)
				r.Post("/commands", s.handleCommands)
				r.Post("/undo", s.handleUndo)
				r.Post("/redo", s.handleRedo)
				r.Post("/delete", s.handleDelete)
				r.Post("/save", s.handleSave)
				r.Get("/ws", s.handleWebsocket)
			})
		})
		r.Route("/exports", func(r chi.Router) {
			r.Get("/", s.handleListExports)
			r.Get("/{id}", s.handleGetExport)
			r.Delete("/{id}", s.handleDeleteExport)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and cancels every open session.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	expireCtx, stopExpire := context.WithCancel(ctx)
	defer stopExpire()
	go s.expireLoop(expireCtx)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close cancels all live sessions.
func (s *Server) Close() {
	for _, sess := range s.sessions.drain() {
		if err := sess.Cancel(); err != nil && !errors.Is(err, editor.ErrClosed) {
			s.log.WithError(err).WithField("session", sess.ID()).Warn("cancel on shutdown")
		}
	}
}

// ExpireIdle cancels every session idle for longer than the configured TTL
// and returns how many it closed.
func (s *Server) ExpireIdle() int {
	if s.opts.SessionTTL <= 0 {
		return 0
	}
	expired := s.sessions.expire(s.opts.SessionTTL)
	for _, sess := range expired {
		log := s.log.WithField("session", sess.ID())
		if err := sess.Cancel(); err != nil && !errors.Is(err, editor.ErrClosed) {
			log.WithError(err).Warn("cancel idle session")
			continue
		}
		log.Info("idle session expired")
	}
	return len(expired)
}

func (s *Server) expireLoop(ctx context.Context) {
	if s.opts.SessionTTL <= 0 {
		return
	}
	interval := s.opts.SessionTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ExpireIdle()
		}
	}
}

// requestLogger logs one line per request through logrus.
func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Debug("request")
		})
	}
}
