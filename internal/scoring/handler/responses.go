package handler

import (
	"time"

	"github.com/aadya-khanna/OpenScore/internal/scoring"
	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
	"github.com/aadya-khanna/OpenScore/internal/scoring/service"
)

// CalculateResponse is the HTTP response for POST /score/calculate.
type CalculateResponse struct {
	ScoreID string `json:"score_id"`
	scoring.CreditScoreBreakdown
	NeutralFallbacks []string  `json:"neutral_fallbacks"`
	ComputedAt       time.Time `json:"computed_at"`
}

// FromResult converts a service Result to an HTTP response.
func FromResult(result *service.Result) *CalculateResponse {
	fallbacks := result.NeutralFallbacks
	if fallbacks == nil {
		fallbacks = []string{}
	}
	return &CalculateResponse{
		ScoreID:              result.ID,
		CreditScoreBreakdown: result.Breakdown,
		NeutralFallbacks:     fallbacks,
		ComputedAt:           result.ComputedAt,
	}
}

// HistoryEntry is one stored score.
type HistoryEntry struct {
	ScoreID     string            `json:"score_id"`
	CreditScore int               `json:"credit_score"`
	Breakdown   scoring.Breakdown `json:"breakdown"`
	ComputedAt  time.Time         `json:"computed_at"`
}

// HistoryResponse is the HTTP response for GET /score/history.
type HistoryResponse struct {
	Scores []HistoryEntry `json:"scores"`
}

// FromRecords converts stored records to an HTTP response.
func FromRecords(records []ports.ScoreRecord) *HistoryResponse {
	resp := &HistoryResponse{Scores: make([]HistoryEntry, 0, len(records))}
	for _, rec := range records {
		resp.Scores = append(resp.Scores, HistoryEntry{
			ScoreID:     rec.ID,
			CreditScore: rec.CreditScore,
			Breakdown:   rec.Breakdown.Breakdown,
			ComputedAt:  rec.ComputedAt,
		})
	}
	return resp
}

// SummaryResponse is the HTTP response for POST /score/summary.
type SummaryResponse struct {
	Summary     string `json:"summary"`
	Model       string `json:"model"`
	CreditScore int    `json:"credit_score"`
}
