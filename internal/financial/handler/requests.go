package handler

import (
	"strings"

	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
)

// ExchangeRequest is the body of POST /plaid/exchange.
type ExchangeRequest struct {
	PublicToken string `json:"public_token"`
}

func (r *ExchangeRequest) Validate() error {
	r.PublicToken = strings.TrimSpace(r.PublicToken)
	if r.PublicToken == "" {
		return dErrors.New(dErrors.CodeValidation, "public_token is required")
	}
	return nil
}

// SandboxLinkRequest is the optional body of POST /plaid/sandbox/link.
type SandboxLinkRequest struct {
	InstitutionID string `json:"institution_id"`
}

func (r *SandboxLinkRequest) Validate() error {
	r.InstitutionID = strings.TrimSpace(r.InstitutionID)
	return nil
}
