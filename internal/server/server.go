package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"meetscribe/internal/logger"
	"meetscribe/internal/ports"
)

const maxUploadBytes = 64 << 20

// Deps are the pipeline components the gateway exposes.
type Deps struct {
	Summarizer  ports.Summarizer
	Transcriber ports.Transcriber
	Speech      ports.SpeechSynthesizer
	Log         *slog.Logger
}

// Server is the HTTP/JSON gateway for browser clients.
type Server struct {
	deps     Deps
	sessions *sessionStore
	origins  []string
}

func New(deps Deps, allowedOrigins []string) *Server {
	if deps.Log == nil {
		deps.Log = logger.Default()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Server{
		deps:     deps,
		sessions: newSessionStore(deps.Summarizer),
		origins:  allowedOrigins,
	}
}

func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(s.requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/sessions", func(sessions chi.Router) {
			sessions.Post("/", s.createSession)
			sessions.Route("/{id}", func(session chi.Router) {
				session.Get("/", s.getSession)
				session.Delete("/", s.deleteSession)
				session.Put("/transcript", s.setTranscript)
				session.Put("/title", s.setTitle)
				session.Put("/filter", s.setFilter)
				session.Post("/upload", s.uploadTranscript)
				session.Post("/audio", s.transcribeAudio)
				session.Post("/summarize", s.summarize)
				session.Post("/clear", s.clear)
				session.Get("/export.md", s.exportMarkdown)
				session.Get("/export.docx", s.exportDocx)
				session.Get("/notification", s.notification)
			})
		})
		api.Post("/speech", s.speech)
	})

	return router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Log.Info("http gateway listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logger.WithContext(r.Context(), s.deps.Log.With("request_id", middleware.GetReqID(r.Context())))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))
		logger.Info(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
