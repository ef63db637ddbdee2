// Package plaid adapts the Plaid Go SDK to the records this service stores:
// link tokens, public token exchange, sandbox items, accounts, transactions,
// investment holdings and liabilities.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	plaidsdk "github.com/plaid/plaid-go/v29/plaid"

	"github.com/aadya-khanna/OpenScore/pkg/platform/sentinel"
)

var (
	// ErrNotConfigured is returned when client credentials are missing.
	ErrNotConfigured = errors.New("plaid: client not configured")

	// ErrSandboxOnly is returned for sandbox endpoints outside the sandbox environment.
	ErrSandboxOnly = errors.New("plaid: endpoint only available in sandbox")
)

// Error codes the client reacts to.
const (
	CodeProductNotReady      = "PRODUCT_NOT_READY"
	CodeProductsNotSupported = "PRODUCTS_NOT_SUPPORTED"
	CodeNoInvestmentAccounts = "NO_INVESTMENT_ACCOUNTS"
	CodeNoLiabilityAccounts  = "NO_LIABILITY_ACCOUNTS"
	CodeItemLoginRequired    = "ITEM_LOGIN_REQUIRED"
	CodeInvalidAccessToken   = "INVALID_ACCESS_TOKEN"
	CodeInvalidPublicToken   = "INVALID_PUBLIC_TOKEN"
	CodeRateLimitExceeded    = "RATE_LIMIT_EXCEEDED"
)

// APIError is an error response from Plaid.
type APIError struct {
	StatusCode     int
	ErrorType      string
	ErrorCode      string
	ErrorMessage   string
	DisplayMessage string
	RequestID      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid: %s (status=%d, type=%s, code=%s, request_id=%s)",
		e.ErrorMessage, e.StatusCode, e.ErrorType, e.ErrorCode, e.RequestID)
}

// Retryable reports whether the same request may succeed later.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests || e.ErrorCode == CodeProductNotReady
}

// Unwrap maps the response to the infrastructure sentinels services
// translate: sentinel.ErrNotReady, sentinel.ErrUnavailable or
// sentinel.ErrNotFound for invalid tokens.
func (e *APIError) Unwrap() error {
	switch {
	case e.ErrorCode == CodeProductNotReady:
		return sentinel.ErrNotReady
	case e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests || e.ErrorCode == CodeRateLimitExceeded:
		return sentinel.ErrUnavailable
	case e.ErrorCode == CodeInvalidAccessToken || e.ErrorCode == CodeInvalidPublicToken:
		return sentinel.ErrNotFound
	}
	return nil
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == code
}

// translateError turns an SDK call failure into an APIError, a context
// error or a sentinel.ErrUnavailable transport failure.
func translateError(ctx context.Context, op string, resp *http.Response, err error) error {
	if err == nil {
		return nil
	}
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	if plaidErr, convErr := plaidsdk.ToPlaidError(err); convErr == nil {
		return &APIError{
			StatusCode:     status,
			ErrorType:      string(plaidErr.GetErrorType()),
			ErrorCode:      plaidErr.GetErrorCode(),
			ErrorMessage:   plaidErr.GetErrorMessage(),
			DisplayMessage: plaidErr.GetDisplayMessage(),
			RequestID:      plaidErr.GetRequestId(),
		}
	}
	if status >= http.StatusMultipleChoices {
		return &APIError{StatusCode: status, ErrorMessage: err.Error()}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%s: %w: %v", op, sentinel.ErrUnavailable, err)
}
