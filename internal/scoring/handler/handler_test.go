package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/aadya-khanna/OpenScore/internal/scoring"
	"github.com/aadya-khanna/OpenScore/internal/scoring/handler/mocks"
	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
	"github.com/aadya-khanna/OpenScore/internal/scoring/service"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

type ScoringHandlerSuite struct {
	suite.Suite
}

func TestScoringHandlerSuite(t *testing.T) {
	suite.Run(t, new(ScoringHandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, logger, nil)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if user := r.Header.Get("X-Test-User"); user != "" {
				ctx = requestcontext.WithUserID(ctx, user)
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(ctx, "req-test")))
		})
	})
	h.Register(r)
	return r, mockService
}

func do(r http.Handler, method, target, user string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// =============================================================================
// POST /score/calculate
// =============================================================================

func (s *ScoringHandlerSuite) TestCalculate() {
	s.Run("returns breakdown", func() {
		r, svc := newTestRouter(s.T())
		edu := 80.0
		breakdown := scoring.Aggregate(scoring.AggregateInput{
			FinancialAccounts: 80, AlternativeIncome: 60, EducationLicenses: edu, CashFlowVolatility: 90,
		})
		svc.EXPECT().Calculate(gomock.Any(), service.CalculateRequest{UserID: "user123", EducationScore: &edu}).
			Return(&service.Result{
				ID:         "score-1",
				UserID:     "user123",
				Breakdown:  breakdown,
				ComputedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			}, nil)

		w := do(r, http.MethodPost, "/score/calculate", "user123", []byte(`{"education_score": 80}`))
		s.Require().Equal(http.StatusOK, w.Code)

		var resp map[string]any
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("score-1", resp["score_id"])
		s.Equal(float64(breakdown.CreditScore), resp["credit_score"])
		s.Equal([]any{}, resp["neutral_fallbacks"])

		components := resp["breakdown"].(map[string]any)
		fin := components["financial_accounts"].(map[string]any)
		s.Equal(40.0, fin["weight"])
		s.Equal(32.0, fin["weighted_contribution"])
	})

	s.Run("empty body uses default education", func() {
		r, svc := newTestRouter(s.T())
		svc.EXPECT().Calculate(gomock.Any(), service.CalculateRequest{UserID: "user123"}).
			Return(&service.Result{ID: "score-2"}, nil)

		w := do(r, http.MethodPost, "/score/calculate", "user123", nil)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("requires authentication", func() {
		r, _ := newTestRouter(s.T())
		w := do(r, http.MethodPost, "/score/calculate", "", nil)
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("rejects out of range education score", func() {
		r, _ := newTestRouter(s.T())
		w := do(r, http.MethodPost, "/score/calculate", "user123", []byte(`{"education_score": 120}`))
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("missing document is 404 with hint", func() {
		r, svc := newTestRouter(s.T())
		svc.EXPECT().Calculate(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeMissingDocument, "balance_sheet not uploaded"))

		w := do(r, http.MethodPost, "/score/calculate", "user123", nil)
		s.Equal(http.StatusNotFound, w.Code)

		var resp map[string]string
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("missing_document", resp["error"])
		s.NotEmpty(resp["hint"])
	})
}

// =============================================================================
// GET /score/history
// =============================================================================

func (s *ScoringHandlerSuite) TestHistory() {
	s.Run("passes limit", func() {
		r, svc := newTestRouter(s.T())
		svc.EXPECT().History(gomock.Any(), "user123", 5).Return([]ports.ScoreRecord{
			{ID: "a", CreditScore: 70},
			{ID: "b", CreditScore: 65},
		}, nil)

		w := do(r, http.MethodGet, "/score/history?limit=5", "user123", nil)
		s.Require().Equal(http.StatusOK, w.Code)

		var resp HistoryResponse
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Require().Len(resp.Scores, 2)
		s.Equal("a", resp.Scores[0].ScoreID)
	})

	s.Run("empty history is an empty list", func() {
		r, svc := newTestRouter(s.T())
		svc.EXPECT().History(gomock.Any(), "user123", 0).Return(nil, nil)

		w := do(r, http.MethodGet, "/score/history", "user123", nil)
		s.Require().Equal(http.StatusOK, w.Code)
		s.JSONEq(`{"scores":[]}`, w.Body.String())
	})

	s.Run("rejects invalid limit", func() {
		r, _ := newTestRouter(s.T())
		w := do(r, http.MethodGet, "/score/history?limit=abc", "user123", nil)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

// =============================================================================
// POST /score/summary
// =============================================================================

func TestHandleSummary(t *testing.T) {
	r, svc := newTestRouter(t)
	svc.EXPECT().Summarize(gomock.Any(), service.CalculateRequest{UserID: "user123"}).
		Return(&service.SummaryResult{Summary: "Looks healthy.", Model: "gemini-2.5-flash", CreditScore: 71}, nil)

	req := httptest.NewRequest(http.MethodPost, "/score/summary", nil)
	req = req.WithContext(requestcontext.WithUserID(context.Background(), "user123"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Looks healthy.", resp.Summary)
	assert.Equal(t, 71, resp.CreditScore)
}
