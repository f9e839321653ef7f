package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/similarity"
)

const millions = 1_000_000

// similarRequest mirrors the similarity query shape. Team values are
// entered in millions EUR, like the prediction form.
type similarRequest struct {
	MainPosition     string  `json:"main_position"`
	PositionGroup    string  `json:"position_group"`
	TransferAge      int     `json:"transfer_age"`
	MarketValue      float64 `json:"market_value"`
	FromTeamValue    float64 `json:"from_team_market_value"`
	ToTeamValue      float64 `json:"to_team_market_value"`
	PlayedBeforePct  float64 `json:"played_before_pct"`
	ScorerGroup      string  `json:"scorer_group"`
	CleanSheetsGroup string  `json:"clean_sheets_group"`
	FromArea         string  `json:"from_area"`
	ToArea           string  `json:"to_area"`
	FromLevel        int     `json:"from_level"`
	ToLevel          int     `json:"to_level"`
	TopN             int     `json:"top_n"`
}

func (s similarRequest) validate() error {
	switch {
	case s.MainPosition == "":
		return fmt.Errorf("missing main_position")
	case s.FromLevel < 1 || s.FromLevel > maxLevel:
		return fmt.Errorf("from_level must be between 1 and %d", maxLevel)
	case s.ToLevel < 1 || s.ToLevel > maxLevel:
		return fmt.Errorf("to_level must be between 1 and %d", maxLevel)
	case s.TopN < 0:
		return fmt.Errorf("top_n must not be negative")
	}
	return nil
}

func (s similarRequest) query() similarity.Query {
	rel := 0.0
	if s.FromTeamValue > 0 {
		rel = s.ToTeamValue / s.FromTeamValue
	}
	return similarity.Query{
		MainPosition:     s.MainPosition,
		PositionGroup:    s.PositionGroup,
		TransferAge:      float64(s.TransferAge),
		MarketValue:      s.MarketValue,
		FromTeamValue:    s.FromTeamValue * millions,
		ToTeamValue:      s.ToTeamValue * millions,
		PlayedBeforePct:  s.PlayedBeforePct,
		ScorerGroup:      s.ScorerGroup,
		CleanSheetsGroup: s.CleanSheetsGroup,
		FromArea:         s.FromArea,
		ToArea:           s.ToArea,
		FromLevel:        float64(s.FromLevel),
		ToLevel:          float64(s.ToLevel),
		TeamValueRel:     rel,
	}
}

type similarResponse struct {
	Matches []matchResponse `json:"matches"`
}

// SimilarHandler handles similarity search requests.
type SimilarHandler struct {
	deps Dependencies
}

// NewSimilarHandler creates a new similar handler.
func NewSimilarHandler(deps Dependencies) *SimilarHandler {
	return &SimilarHandler{deps: deps}
}

// HandleSimilar handles POST /similar requests. An empty match list is
// a valid response: no comparable transfers exist.
func (h *SimilarHandler) HandleSimilar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req similarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	matches, err := h.deps.FindSimilar(r.Context(), req.query(), req.TopN)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, similarResponse{Matches: toMatchResponses(matches)})
}
