package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/glimpse-data/glimpse/internal/insight"
	"github.com/glimpse-data/glimpse/internal/model"
	"github.com/glimpse-data/glimpse/internal/pipeline"
)

// WebAPI is the HTTP dashboard: upload a CSV, run analyses against it, fetch
// charts. Datasets live in an in-memory TTL store; nothing persists.
type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
	config model.Config
}

// New builds the dashboard server. The explainer powers per-analysis AI
// insights and may be unconfigured.
func New(logger zerolog.Logger, cfg *model.Config, explainer *insight.Explainer) *WebAPI {
	h := &handler{
		store:     NewStore(cfg.Server.DatasetTTL),
		pipeline:  pipeline.New(explainer, cfg),
		explainer: explainer,
		config:    cfg,
	}

	router := chi.NewRouter()
	router.Use(requestLogger(&logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/datasets", h.uploadDataset)
		r.Get("/datasets/{id}/summary", h.getSummary)
		r.Get("/datasets/{id}/correlation", h.getCorrelation)
		r.Get("/datasets/{id}/forecast", h.getForecast)
		r.Get("/datasets/{id}/outliers", h.getOutliers)
		r.Get("/datasets/{id}/insights", h.getInsights)
		r.Get("/datasets/{id}/report", h.getReport)
		r.Delete("/datasets/{id}", h.deleteDataset)
	})
	router.Get("/charts/{id}/correlation", h.correlationChart)
	router.Get("/charts/{id}/forecast", h.forecastChart)

	return &WebAPI{
		router: router,
		logger: &logger,
		config: *cfg,
		server: &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: router,
		},
	}
}

// Handler exposes the router, for tests.
func (w *WebAPI) Handler() http.Handler { return w.router }

// Start runs the server until an error or a shutdown signal.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.config.Server.ShutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

// requestLogger attaches a request-scoped logger to the context.
func requestLogger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqLogger := logger.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", req.RemoteAddr).
				Logger()

			ctx := reqLogger.WithContext(req.Context())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
