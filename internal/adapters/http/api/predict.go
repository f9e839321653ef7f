package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/features"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/tiers"
)

// Input range bounds enforced at the boundary. The builder itself only
// validates types and categories.
const (
	minHeight      = 150
	maxHeight      = 220
	minTransferAge = 16
	maxTransferAge = 40
	maxPlayerValue = 200  // millions EUR
	maxTeamValue   = 1400 // millions EUR
	maxLevel       = 4
	resultAlpha    = 0.6
)

// predictRequest mirrors the dashboard form.
type predictRequest struct {
	Height           float64 `json:"height"`
	TransferAge      int     `json:"transfer_age"`
	PositionGroup    string  `json:"position_group"`
	MainPosition     string  `json:"main_position"`
	Foot             string  `json:"foot"`
	MarketValue      float64 `json:"market_value"`
	PlayedBeforePct  float64 `json:"played_before_pct"`
	ScorerGroup      string  `json:"scorer_group"`
	CleanSheetsGroup string  `json:"clean_sheets_group"`
	FromTeamValue    float64 `json:"from_team_market_value"`
	ToTeamValue      float64 `json:"to_team_market_value"`
	FromArea         string  `json:"from_area"`
	FromLevel        int     `json:"from_level"`
	ToArea           string  `json:"to_area"`
	ToLevel          int     `json:"to_level"`
	IsLoan           bool    `json:"is_loan"`
	WasLoan          bool    `json:"was_loan"`
	WasJoker         bool    `json:"was_joker"`
	TopN             int     `json:"top_n"`
}

func (p predictRequest) validate() error {
	switch {
	case p.Height < minHeight || p.Height > maxHeight:
		return fmt.Errorf("height must be between %d and %d", minHeight, maxHeight)
	case p.TransferAge < minTransferAge || p.TransferAge > maxTransferAge:
		return fmt.Errorf("transfer_age must be between %d and %d", minTransferAge, maxTransferAge)
	case p.MarketValue < 0 || p.MarketValue > maxPlayerValue:
		return fmt.Errorf("market_value must be between 0 and %d", maxPlayerValue)
	case p.FromTeamValue < 0 || p.FromTeamValue > maxTeamValue:
		return fmt.Errorf("from_team_market_value must be between 0 and %d", maxTeamValue)
	case p.ToTeamValue < 0 || p.ToTeamValue > maxTeamValue:
		return fmt.Errorf("to_team_market_value must be between 0 and %d", maxTeamValue)
	case p.PlayedBeforePct < 0 || p.PlayedBeforePct > 100:
		return fmt.Errorf("played_before_pct must be between 0 and 100")
	case p.FromLevel < 1 || p.FromLevel > maxLevel:
		return fmt.Errorf("from_level must be between 1 and %d", maxLevel)
	case p.ToLevel < 1 || p.ToLevel > maxLevel:
		return fmt.Errorf("to_level must be between 1 and %d", maxLevel)
	case p.TopN < 0:
		return fmt.Errorf("top_n must not be negative")
	}
	return nil
}

func (p predictRequest) rawInput() features.RawInput {
	return features.RawInput{
		Height:           p.Height,
		TransferAge:      p.TransferAge,
		PositionGroup:    p.PositionGroup,
		MainPosition:     p.MainPosition,
		Foot:             p.Foot,
		MarketValue:      p.MarketValue,
		PlayedBeforePct:  p.PlayedBeforePct,
		ScorerGroup:      p.ScorerGroup,
		CleanSheetsGroup: p.CleanSheetsGroup,
		FromTeamValueM:   p.FromTeamValue,
		ToTeamValueM:     p.ToTeamValue,
		FromArea:         p.FromArea,
		FromLevel:        p.FromLevel,
		ToArea:           p.ToArea,
		ToLevel:          p.ToLevel,
		IsLoan:           p.IsLoan,
		WasLoan:          p.WasLoan,
		WasJoker:         p.WasJoker,
	}
}

type predictResponse struct {
	RawScore        float64         `json:"raw_score"`
	CalibratedScore float64         `json:"calibrated_score"`
	Tier            string          `json:"tier"`
	Color           string          `json:"color"`
	ColorRGBA       string          `json:"color_rgba,omitempty"`
	Similar         []matchResponse `json:"similar"`
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps Dependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	outcome, err := h.deps.Predict(r.Context(), req.rawInput(), req.TopN)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := predictResponse{
		RawScore:        outcome.RawScore,
		CalibratedScore: outcome.CalibratedScore,
		Tier:            outcome.Tier.Label,
		Color:           outcome.Tier.Color,
		Similar:         toMatchResponses(outcome.Similar),
	}
	if rgba, err := tiers.RGBA(outcome.Tier.Color, resultAlpha); err == nil {
		resp.ColorRGBA = rgba
	}
	writeJSON(w, http.StatusOK, resp)
}
