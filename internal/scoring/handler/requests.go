package handler

import (
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
)

// CalculateRequest is the HTTP request body for POST /score/calculate and
// POST /score/summary. An empty body is accepted.
type CalculateRequest struct {
	EducationScore *float64 `json:"education_score,omitempty"`
}

// Validate implements httputil.Validatable.
func (r *CalculateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.EducationScore != nil && (*r.EducationScore < 0 || *r.EducationScore > 100) {
		return dErrors.New(dErrors.CodeValidation, "education_score must be between 0 and 100")
	}
	return nil
}
