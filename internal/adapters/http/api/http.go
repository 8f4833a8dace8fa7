// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/swimchamps/internal/adapters/http/swagger"
	"github.com/okian/swimchamps/internal/adapters/repository"
	service "github.com/okian/swimchamps/internal/app"
	"github.com/okian/swimchamps/internal/domain/leaderboard"
	"github.com/okian/swimchamps/internal/domain/model"
	"github.com/okian/swimchamps/internal/domain/types"
)

const defaultMaxLimit = 500

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	StatsProvider

	PutRecords(ctx context.Context, meetID, name string, records []model.PerformanceRecord) (repository.SnapshotInfo, error)
	Meets(ctx context.Context) ([]repository.SnapshotInfo, error)

	Leaderboard(ctx context.Context, meetID string, f leaderboard.Filter) ([]types.LeaderboardEntry, error)
	Swimmer(ctx context.Context, meetID, name string) (types.SwimmerReport, error)
	Winners(ctx context.Context, meetID string) ([]types.LeaderboardEntry, error)
	CategoryLeaders(ctx context.Context, meetID string) ([]types.CategoryLeader, error)
	StrokeSpecialists(ctx context.Context, meetID string) ([]types.StrokeSpecialist, error)
	Summary(ctx context.Context, meetID string) ([]types.GroupSummary, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	meetsHandler  *MeetsHandler
	corsOrigins   []string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMaxLimit caps the leaderboard limit query parameter.
func WithMaxLimit(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.meetsHandler.maxLimit = n
		}
	}
}

// WithCORSOrigins sets the browser origins allowed to call the API.
func WithCORSOrigins(origins []string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		meetsHandler:  NewMeetsHandler(deps, defaultMaxLimit),
		corsOrigins:   []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns a chi router with every route and middleware attached.
func (s *Server) Router(ctx context.Context) chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.Register(ctx, r)
	return r
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(ctx context.Context, r chi.Router) {
	h := s.meetsHandler
	swagger.Register(ctx, r)
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/meets", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(h.HandleListMeets, "meets"))
		r.Route("/{meetID}", func(r chi.Router) {
			r.Put("/records", MetricsMiddleware(h.HandlePutRecords, "records"))
			r.Get("/leaderboard", MetricsMiddleware(h.HandleGetLeaderboard, "leaderboard"))
			r.Get("/swimmers/{name}", MetricsMiddleware(h.HandleGetSwimmer, "swimmer"))
			r.Get("/winners", MetricsMiddleware(h.HandleGetWinners, "winners"))
			r.Get("/category-leaders", MetricsMiddleware(h.HandleGetCategoryLeaders, "category_leaders"))
			r.Get("/stroke-specialists", MetricsMiddleware(h.HandleGetStrokeSpecialists, "stroke_specialists"))
			r.Get("/summary", MetricsMiddleware(h.HandleGetSummary, "summary"))
		})
	})
}

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details []recordDetail `json:"details,omitempty"`
}

type recordDetail struct {
	SwimmerName string `json:"swimmer_name"`
	EventID     string `json:"event_id"`
	Field       string `json:"field"`
	Reason      string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and repository errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrMalformedRecord):
		resp := errorResponse{Code: "malformed_records", Message: ErrBadRequest.Error()}
		for _, m := range model.MalformedRecords(err) {
			resp.Details = append(resp.Details, recordDetail{
				SwimmerName: m.SwimmerName,
				EventID:     m.EventID,
				Field:       m.Field,
				Reason:      m.Reason,
			})
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "meet_not_found", err)
	case errors.Is(err, service.ErrSwimmerNotFound):
		writeError(w, http.StatusNotFound, "swimmer_not_found", err)
	case errors.Is(err, service.ErrInvalidMeetID),
		errors.Is(err, service.ErrEmptyMeet),
		errors.Is(err, leaderboard.ErrUnknownAgeBucket),
		errors.Is(err, leaderboard.ErrInvalidLimit),
		errors.Is(err, leaderboard.ErrInvalidMinimum):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
