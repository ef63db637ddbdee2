package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aadya-khanna/OpenScore/internal/scoring/metrics"
	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
	"github.com/aadya-khanna/OpenScore/internal/scoring/service"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/platform/httputil"
	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/scoring-mocks.go -package=mocks Service

// Service defines the interface for scoring operations.
type Service interface {
	Calculate(ctx context.Context, req service.CalculateRequest) (*service.Result, error)
	History(ctx context.Context, userID string, limit int) ([]ports.ScoreRecord, error)
	Summarize(ctx context.Context, req service.CalculateRequest) (*service.SummaryResult, error)
}

// Handler wires scoring endpoints to the scoring service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a scoring handler with its dependencies.
func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts scoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/score/calculate", h.HandleCalculate)
	r.Get("/score/history", h.HandleHistory)
	r.Post("/score/summary", h.HandleSummary)
}

// HandleCalculate handles POST /score/calculate requests.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CalculateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Calculate(ctx, service.CalculateRequest{
		UserID:         userID,
		EducationScore: req.EducationScore,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "score calculation failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "score calculated",
		"request_id", requestID,
		"user_id", userID,
		"credit_score", result.Breakdown.CreditScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleHistory handles GET /score/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.service.History(ctx, userID, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list score history",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRecords(records))
}

// HandleSummary handles POST /score/summary requests.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CalculateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Summarize(ctx, service.CalculateRequest{
		UserID:         userID,
		EducationScore: req.EducationScore,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "score summary failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "score summarized",
		"request_id", requestID,
		"user_id", userID,
		"model", result.Model,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, &SummaryResponse{
		Summary:     result.Summary,
		Model:       result.Model,
		CreditScore: result.CreditScore,
	})
}
