package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aadya-khanna/OpenScore/internal/financial"
	"github.com/aadya-khanna/OpenScore/internal/financial/plaid"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/platform/httputil"
	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/financial-mocks.go -package=mocks Service

// Service is the financial data service used by the handler.
type Service interface {
	LinkToken(ctx context.Context, userID string) (*plaid.LinkToken, error)
	Exchange(ctx context.Context, userID, publicToken string) (*financial.Item, error)
	SandboxLink(ctx context.Context, userID, institutionID string) (*financial.Item, error)
	Sync(ctx context.Context, userID string) ([]financial.SyncResult, error)
	Transactions(ctx context.Context, userID string) ([]financial.Transaction, error)
	Balances(ctx context.Context, userID string) ([]financial.Account, error)
	Liabilities(ctx context.Context, userID string) ([]financial.Liability, error)
	Summary(ctx context.Context, userID string) (*financial.Summary, error)
}

// Handler serves linking, sync and stored record endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a financial handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the financial endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/transactions", h.HandleTransactions)
	r.Get("/balances", h.HandleBalances)
	r.Get("/liabilities", h.HandleLiabilities)
	r.Get("/summary", h.HandleSummary)
	r.Post("/plaid/link-token", h.HandleLinkToken)
	r.Post("/plaid/exchange", h.HandleExchange)
	r.Post("/plaid/sandbox/link", h.HandleSandboxLink)
	r.Post("/plaid/sync", h.HandleSync)
}

// HandleTransactions handles GET /transactions: the last 100 stored
// transactions, newest first.
func (h *Handler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	txns, err := h.service.Transactions(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "failed to list transactions", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewTransactionsResponse(txns))
}

// HandleBalances handles GET /balances.
func (h *Handler) HandleBalances(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	accounts, err := h.service.Balances(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "failed to list balances", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewBalancesResponse(accounts))
}

// HandleLiabilities handles GET /liabilities.
func (h *Handler) HandleLiabilities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	liabilities, err := h.service.Liabilities(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "failed to list liabilities", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewLiabilitiesResponse(liabilities))
}

// HandleSummary handles GET /summary: balance totals, monthly spend and
// the top spending categories over every stored record.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "failed to summarize accounts", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) HandleLinkToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	token, err := h.service.LinkToken(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "failed to create link token", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &LinkTokenResponse{LinkToken: token.Token, Expiration: token.Expiration})
}

// HandleExchange handles POST /plaid/exchange {"public_token": "..."}.
func (h *Handler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ExchangeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.Exchange(ctx, userID, req.PublicToken)
	if err != nil {
		h.logFailure(ctx, "public token exchange failed", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, NewItemResponse(item))
}

// HandleSandboxLink handles POST /plaid/sandbox/link. The body is optional.
func (h *Handler) HandleSandboxLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SandboxLinkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.SandboxLink(ctx, userID, req.InstitutionID)
	if err != nil {
		h.logFailure(ctx, "sandbox link failed", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, NewItemResponse(item))
}

// HandleSync handles POST /plaid/sync.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	results, err := h.service.Sync(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "financial sync failed", userID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &SyncResponse{Items: results})
}

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return userID, true
}

func (h *Handler) logFailure(ctx context.Context, msg, userID string, err error) {
	log := h.logger.WarnContext
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		log = h.logger.ErrorContext
	}
	log(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"error", err,
	)
}
