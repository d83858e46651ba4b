// Package server is the transport layer: it parses client hints from the
// request, fetches the origin image, hands it to the compression pipeline,
// and writes either the re-encoded payload or an origin-fallback redirect.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/imgpress/imgpress/internal/codec"
	"github.com/imgpress/imgpress/internal/config"
	"github.com/imgpress/imgpress/internal/pipeline"
)

// App wires the HTTP handlers to the compression pipeline.
type App struct {
	cfg    *config.Config
	log    zerolog.Logger
	orch   *pipeline.Orchestrator
	client *http.Client

	// encodes bounds concurrent libvips work; everything else about a
	// request is cheap.
	encodes *semaphore.Weighted
}

// NewApp builds the application on the given codec.
func NewApp(cfg *config.Config, log zerolog.Logger, c codec.Codec) *App {
	return &App{
		cfg:  cfg,
		log:  log,
		orch: pipeline.New(cfg.Tunables, c, log),
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		encodes: semaphore.NewWeighted(int64(cfg.MaxConcurrentEncodes)),
	}
}

// Router assembles the chi route table.
func (a *App) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/", a.handleCompress)
	r.Get("/healthz", a.handleHealth)
	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      a.Router(),
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	a.log.Info().Str("addr", srv.Addr).Msg("listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogger attaches a request-scoped logger (with a request id) to the
// context. Clients may supply their own id via X-Request-ID.
func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		log := a.log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(log.WithContext(r.Context())))
	})
}

func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
