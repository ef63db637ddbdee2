package testutil

import (
	"net/http"

	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

// WithUserID adds a user ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithUserID(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithAuth adds a user ID and a request ID, the state every authenticated
// handler sees after the middleware chain.
func WithAuth(req *http.Request, userID, requestID string) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRequestID(ctx, requestID)
	return req.WithContext(ctx)
}
