package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/wildlife-park-etl/internal/dashboard"
	"github.com/couchcryptid/wildlife-park-etl/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReportSource hands out the latest analysis report, nil until one exists.
type ReportSource interface {
	ReadinessChecker
	Report() *domain.Report
}

// Renderer draws the dashboard page and its chart images.
type Renderer interface {
	Chart(r *domain.Report, id string) ([]byte, error)
	WritePage(w io.Writer, r *domain.Report) error
}

// Server exposes the dashboard, the JSON tables and the health, readiness
// and metrics endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	reports    ReportSource
	dash       Renderer
}

// NewServer creates an HTTP server with the dashboard and operational routes.
func NewServer(addr string, reports ReportSource, dash Renderer, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:  logger,
		reports: reports,
		dash:    dash,
	}

	router.Get("/healthz", s.handleHealth)
	router.Get("/readyz", handleReady(reports))
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Get("/", s.handlePage)
	router.Get("/charts/{chartID}", s.handleChart)
	router.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/summary", s.handleSummary)
		r.Get("/views/{view}", s.handleView)
		r.Get("/correlations/{view}", s.handleCorrelation)
	})

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		render.JSON(w, r, map[string]string{"status": "ready"})
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	report, ok := s.report(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.dash.WritePage(&buf, report); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	report, ok := s.report(w, r)
	if !ok {
		return
	}

	svg, err := s.dash.Chart(report, chi.URLParam(r, "chartID"))
	switch {
	case errors.Is(err, dashboard.ErrUnknownChart):
		s.fail(w, r, http.StatusNotFound, err)
		return
	case errors.Is(err, dashboard.ErrInsufficientData):
		s.fail(w, r, http.StatusUnprocessableEntity, err)
		return
	case err != nil:
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg) //nolint:errcheck // client went away
}

type summaryResponse struct {
	Variant     string               `json:"variant"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Input       domain.SeriesSummary `json:"input"`
	Views       []string             `json:"views"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	report, ok := s.report(w, r)
	if !ok {
		return
	}

	resp := summaryResponse{
		Variant:     report.Variant,
		GeneratedAt: report.GeneratedAt,
		Input:       report.Summary,
		Views:       make([]string, 0, len(report.Views)),
	}
	for _, v := range report.Views {
		resp.Views = append(resp.Views, v.Name())
	}
	render.JSON(w, r, resp)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	report, ok := s.report(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "view")
	table, found := report.View(name)
	if !found {
		s.fail(w, r, http.StatusNotFound, errors.New("unknown view "+name))
		return
	}
	render.JSON(w, r, table)
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	report, ok := s.report(w, r)
	if !ok {
		return
	}

	name := chi.URLParam(r, "view")
	m, found := report.Correlation(name)
	if !found {
		s.fail(w, r, http.StatusNotFound, errors.New("no correlation matrix for view "+name))
		return
	}
	render.JSON(w, r, m)
}

// report fetches the current report or answers 503 when there is none yet.
func (s *Server) report(w http.ResponseWriter, r *http.Request) (*domain.Report, bool) {
	report := s.reports.Report()
	if report == nil {
		s.fail(w, r, http.StatusServiceUnavailable, errors.New("no report available yet"))
		return nil, false
	}
	return report, true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": err.Error()})
}
