package handler

import (
	"time"

	"github.com/aadya-khanna/OpenScore/internal/documents"
	"github.com/aadya-khanna/OpenScore/internal/scoring"
	scoringsvc "github.com/aadya-khanna/OpenScore/internal/scoring/service"
)

// UploadedDocument describes one stored statement.
type UploadedDocument struct {
	Kind       scoring.DocumentKind `json:"kind"`
	Filename   string               `json:"original_filename"`
	Size       int64                `json:"size_bytes"`
	SHA256     string               `json:"sha256"`
	UploadedAt time.Time            `json:"uploaded_at"`
}

// UploadResponse is the HTTP response for POST /documents/upload.
type UploadResponse struct {
	Scores    scoring.DisplayValues `json:"scores"`
	Documents []UploadedDocument    `json:"documents"`
}

// NewUploadResponse combines stored documents and their scores.
func NewUploadResponse(stored []documents.Document, scores *scoring.DisplayValues) *UploadResponse {
	resp := &UploadResponse{Documents: uploadedDocuments(stored)}
	if scores != nil {
		resp.Scores = *scores
	}
	return resp
}

func uploadedDocuments(stored []documents.Document) []UploadedDocument {
	out := make([]UploadedDocument, 0, len(stored))
	for _, d := range stored {
		out = append(out, UploadedDocument{
			Kind:       d.Kind,
			Filename:   d.Filename,
			Size:       d.Size,
			SHA256:     d.SHA256,
			UploadedAt: d.UploadedAt,
		})
	}
	return out
}

// ScoresResponse is the HTTP response for GET /documents/scores.
type ScoresResponse struct {
	Scores    scoring.DisplayValues `json:"scores"`
	Documents []UploadedDocument    `json:"documents"`
}

// MetricsResponse is the JSON form of GET /documents/metrics.
type MetricsResponse struct {
	Income     scoring.IncomeMetrics           `json:"income_statement"`
	Balance    scoring.BalanceMetrics          `json:"balance_sheet"`
	Components scoring.DocumentComponentScores `json:"component_scores"`
}

// FromReport converts a document report to its response.
func FromReport(r *scoringsvc.DocumentReport) *MetricsResponse {
	return &MetricsResponse{
		Income:     r.Income,
		Balance:    r.Balance,
		Components: r.Components,
	}
}
