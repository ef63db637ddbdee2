package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aadya-khanna/OpenScore/internal/documents"
	"github.com/aadya-khanna/OpenScore/internal/scoring"
	scoringsvc "github.com/aadya-khanna/OpenScore/internal/scoring/service"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/platform/httputil"
	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/documents-mocks.go -package=mocks Uploader,Scorer

const multipartMemory = 32 << 20

// Uploader stores statement uploads.
type Uploader interface {
	Upload(ctx context.Context, userID string, files []documents.File) ([]documents.Document, error)
	Uploaded(ctx context.Context, userID string) ([]documents.Document, error)
	MaxUploadBytes() int64
}

// Scorer computes document scores from stored statements.
type Scorer interface {
	DocumentScores(ctx context.Context, userID string) (*scoring.DisplayValues, error)
	DocumentMetrics(ctx context.Context, userID string) (*scoringsvc.DocumentReport, error)
}

// Handler serves the document endpoints.
type Handler struct {
	uploader Uploader
	scorer   Scorer
	logger   *slog.Logger
}

// New constructs a document handler.
func New(uploader Uploader, scorer Scorer, logger *slog.Logger) *Handler {
	return &Handler{
		uploader: uploader,
		scorer:   scorer,
		logger:   logger,
	}
}

// Register mounts the document endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/documents/upload", h.HandleUpload)
	r.Get("/documents/scores", h.HandleScores)
	r.Get("/documents/metrics", h.HandleMetrics)
}

// HandleUpload handles POST /documents/upload with multipart fields
// income_pdf and balance_pdf. The response carries the document scores.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	maxBytes := h.uploader.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, 2*maxBytes+(1<<20))
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.logger.WarnContext(ctx, "invalid multipart upload",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "upload too large"))
			return
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected multipart/form-data with income_pdf and balance_pdf"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	files := make([]documents.File, 0, len(scoring.Kinds))
	for _, kind := range scoring.Kinds {
		f, ok, err := readFormFile(r, documents.FormField(kind), maxBytes)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read "+documents.FormField(kind)))
			return
		}
		if ok {
			f.Kind = kind
			files = append(files, f)
		}
	}

	stored, err := h.uploader.Upload(ctx, userID, files)
	if err != nil {
		h.logger.WarnContext(ctx, "document upload rejected",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	scores, err := h.scorer.DocumentScores(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to score uploaded documents",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "documents scored",
		"request_id", requestID,
		"user_id", userID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, NewUploadResponse(stored, scores))
}

func readFormFile(r *http.Request, field string, maxBytes int64) (documents.File, bool, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return documents.File{}, false, nil
	}
	if err != nil {
		return documents.File{}, false, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	content, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return documents.File{}, false, err
	}
	return documents.File{Filename: header.Filename, Content: content}, true, nil
}

// HandleScores handles GET /documents/scores requests. The response lists
// the stored statements the scores were computed from.
func (h *Handler) HandleScores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	scores, err := h.scorer.DocumentScores(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get document scores",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	stored, err := h.uploader.Uploaded(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to describe stored documents",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &ScoresResponse{Scores: *scores, Documents: uploadedDocuments(stored)})
}

// HandleMetrics handles GET /documents/metrics requests. ?format=csv returns
// the long-format CSV export instead of JSON.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "format must be json or csv"))
		return
	}

	report, err := h.scorer.DocumentMetrics(ctx, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to get document metrics",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="document_metrics.csv"`)
		w.WriteHeader(http.StatusOK)
		if err := scoring.WriteMetricsCSV(w, report.Income, report.Balance, report.Components); err != nil {
			h.logger.ErrorContext(ctx, "failed to write metrics csv",
				"request_id", requestID,
				"error", err,
			)
		}
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromReport(report))
}
