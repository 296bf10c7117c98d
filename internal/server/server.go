// Package server exposes the eligibility engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/scholarship-matcher/internal/catalog"
	"github.com/spigell/scholarship-matcher/internal/eligibility"
	"github.com/spigell/scholarship-matcher/internal/intake"
	"github.com/spigell/scholarship-matcher/internal/logger"
	"github.com/spigell/scholarship-matcher/internal/report"
)

const (
	// PassIDHeader carries the id of the evaluation pass in responses.
	PassIDHeader = "X-Pass-ID"

	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Config holds listener settings.
type Config struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
}

// Server serves eligibility passes against a fixed catalog. Requests may bring
// their own catalog instead.
type Server struct {
	engine   *eligibility.Engine
	catalog  *catalog.Catalog
	logger   *zap.Logger
	metrics  *Metrics
	registry *prometheus.Registry
}

func New(engine *eligibility.Engine, c *catalog.Catalog, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	registry := prometheus.NewRegistry()
	return &Server{
		engine:   engine,
		catalog:  c,
		logger:   log,
		metrics:  NewMetrics(registry),
		registry: registry,
	}
}

// EligibilityRequest is the body of POST /api/v1/eligibility.
type EligibilityRequest struct {
	Profile      intake.ProfileInput `json:"profile"`
	Scholarships json.RawMessage     `json:"scholarships,omitempty"`
}

// ScholarshipRequest is the body of POST /api/v1/scholarships/{id}/eligibility.
type ScholarshipRequest struct {
	Profile intake.ProfileInput `json:"profile"`
}

// EligibilityResponse is the reply to a successful pass.
type EligibilityResponse struct {
	PassID   string                    `json:"passId"`
	Catalog  string                    `json:"catalog"`
	Summary  report.Summary            `json:"summary"`
	Results  []eligibility.MatchResult `json:"results"`
	Skipped  []eligibility.Diagnostic  `json:"skipped,omitempty"`
	Failed   []eligibility.Diagnostic  `json:"failed,omitempty"`
	Rejected []catalog.Rejection       `json:"rejected,omitempty"`
}

// Routes returns the router with every endpoint mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/eligibility", s.evaluate)
		r.Get("/scholarships", s.listScholarships)
		r.Get("/scholarships/{id}", s.getScholarship)
		r.Post("/scholarships/{id}/eligibility", s.evaluateScholarship)
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": StatusOK})
}

func (s *Server) listScholarships(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, s.catalog)
}

func (s *Server) getScholarship(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := s.catalog.FindByID(id)
	if !ok {
		_ = WriteJSON(w, http.StatusNotFound, GeneralError(fmt.Errorf("scholarship %q not found", id)))
		return
	}
	_ = WriteJSON(w, http.StatusOK, item)
}

func (s *Server) evaluateScholarship(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := s.catalog.FindByID(id)
	if !ok {
		_ = WriteJSON(w, http.StatusNotFound, GeneralError(fmt.Errorf("scholarship %q not found", id)))
		return
	}

	var req ScholarshipRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		_ = WriteJSON(w, http.StatusBadRequest, GeneralError(fmt.Errorf("decode request: %w", err)))
		return
	}

	profile, err := req.Profile.Profile()
	if err == nil {
		err = eligibility.ValidateProfile(profile)
	}
	if err != nil {
		_ = WriteJSON(w, http.StatusBadRequest, ValidationError(err))
		return
	}

	_ = WriteJSON(w, http.StatusOK, s.engine.EvaluateOne(*profile, item))
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	passID := uuid.NewString()
	w.Header().Set(PassIDHeader, passID)

	var req EligibilityRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		_ = WriteJSON(w, http.StatusBadRequest, GeneralError(fmt.Errorf("decode request: %w", err)))
		return
	}

	profile, err := req.Profile.Profile()
	if err != nil {
		_ = WriteJSON(w, http.StatusBadRequest, ValidationError(err))
		return
	}

	offers := s.catalog
	if len(req.Scholarships) > 0 && string(req.Scholarships) != "null" {
		offers, err = catalog.Parse(req.Scholarships, "request")
		if err != nil {
			_ = WriteJSON(w, http.StatusBadRequest, GeneralError(err))
			return
		}
	}

	log := logger.WithPass(s.logger, passID, offers.Source)
	started := time.Now()
	pass, err := s.engine.WithLogger(log).Run(r.Context(), profile, offers.Items)
	s.metrics.observePass(pass, err, time.Since(started))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, eligibility.ErrInvalidProfile) || errors.Is(err, eligibility.ErrNilProfile) {
			status = http.StatusBadRequest
		}
		log.Error("evaluation pass failed", zap.Error(err))
		_ = WriteJSON(w, status, GeneralError(err))
		return
	}

	_ = WriteJSON(w, http.StatusOK, EligibilityResponse{
		PassID:   passID,
		Catalog:  offers.Source,
		Summary:  report.Summarize(pass.Results),
		Results:  pass.Results,
		Skipped:  pass.Skipped,
		Failed:   pass.Failed,
		Rejected: offers.Rejected,
	})
}

// ListenAndServe runs the server until ctx is cancelled, then shuts it down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg Config) error {
	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", zap.String("address", cfg.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return <-errCh
}
