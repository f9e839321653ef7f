// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/DrOst98/fc-koeln-dashboard/internal/app"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/cascade"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/features"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/similarity"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/tiers"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict runs the full pipeline for one transfer description.
	Predict(ctx context.Context, raw features.RawInput, topN int) (service.Outcome, error)

	// FindSimilar retrieves comparable historical transfers.
	FindSimilar(ctx context.Context, q similarity.Query, topN int) ([]similarity.Match, error)

	// Meta describes the valid input space.
	Meta(ctx context.Context) service.Meta

	// Stats returns service counters.
	Stats() service.Stats
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	similarHandler *SimilarHandler
	metaHandler    *MetaHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		predictHandler: NewPredictHandler(deps),
		similarHandler: NewSimilarHandler(deps),
		metaHandler:    NewMetaHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(RequestIDMiddleware(s.predictHandler.HandlePredict), "predict"))
	mux.HandleFunc("/similar", MetricsMiddleware(RequestIDMiddleware(s.similarHandler.HandleSimilar), "similar"))
	mux.HandleFunc("/meta", MetricsMiddleware(s.metaHandler.HandleMeta, "meta"))
}

// matchResponse mirrors the displayed neighbor row.
type matchResponse struct {
	PlayerName   string  `json:"player_name"`
	MainPosition string  `json:"main_position"`
	Season       int     `json:"season"`
	PlayingPct   float64 `json:"playing_pct"`
	Distance     float64 `json:"distance"`
}

func toMatchResponses(matches []similarity.Match) []matchResponse {
	out := make([]matchResponse, len(matches))
	for i, m := range matches {
		out[i] = matchResponse{
			PlayerName:   m.Record.PlayerName,
			MainPosition: m.Record.MainPosition,
			Season:       m.Record.Season,
			PlayingPct:   m.Record.PlayingPct,
			Distance:     m.Distance,
		}
	}
	return out
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// writeDomainError translates domain failures to their HTTP shape.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, features.ErrUnknownCategory):
		writeError(w, http.StatusBadRequest, "unknown_category", err)
	case errors.Is(err, similarity.ErrDegenerateQuery):
		writeError(w, http.StatusUnprocessableEntity, "degenerate_query", err)
	case errors.Is(err, cascade.ErrInference):
		writeError(w, http.StatusInternalServerError, "model_inference", err)
	case errors.Is(err, tiers.ErrInvalidScore):
		writeError(w, http.StatusInternalServerError, "invalid_score", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
