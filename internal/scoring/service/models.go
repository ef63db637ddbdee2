package service

import (
	"math"
	"time"

	"github.com/aadya-khanna/OpenScore/internal/scoring"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
)

// CalculateRequest asks for a score for one user.
type CalculateRequest struct {
	UserID string
	// EducationScore overrides scoring.DefaultEducationScore when set.
	EducationScore *float64
}

// Validate checks the request before any input is gathered.
func (r CalculateRequest) Validate() error {
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if r.EducationScore != nil {
		v := *r.EducationScore
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return dErrors.New(dErrors.CodeValidation, "education_score must be a finite number")
		}
	}
	return nil
}

// Result is a computed and persisted score.
type Result struct {
	ID               string
	UserID           string
	Breakdown        scoring.CreditScoreBreakdown
	Documents        scoring.DocumentComponentScores
	NeutralFallbacks []string
	ComputedAt       time.Time
}

// DocumentReport is the raw metric view of the uploaded statements.
type DocumentReport struct {
	Income     scoring.IncomeMetrics
	Balance    scoring.BalanceMetrics
	Components scoring.DocumentComponentScores
}

// SummaryResult is a generated explanation of a score.
type SummaryResult struct {
	Summary     string
	Model       string
	CreditScore int
}
