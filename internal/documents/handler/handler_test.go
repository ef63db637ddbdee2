package handler

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/aadya-khanna/OpenScore/internal/documents"
	"github.com/aadya-khanna/OpenScore/internal/documents/handler/mocks"
	"github.com/aadya-khanna/OpenScore/internal/scoring"
	scoringsvc "github.com/aadya-khanna/OpenScore/internal/scoring/service"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/testutil"
)

type DocumentsHandlerSuite struct {
	suite.Suite
	uploader *mocks.MockUploader
	scorer   *mocks.MockScorer
	router   chi.Router
}

func TestDocumentsHandlerSuite(t *testing.T) {
	suite.Run(t, new(DocumentsHandlerSuite))
}

func (s *DocumentsHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.uploader = mocks.NewMockUploader(ctrl)
	s.scorer = mocks.NewMockScorer(ctrl)
	s.uploader.EXPECT().MaxUploadBytes().Return(int64(1024)).AnyTimes()

	h := New(s.uploader, s.scorer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

var display = scoring.DisplayValues{
	DocCashFlowVolatility:     83.33,
	DocStrengthProfitability:  71.5,
	ProfitabilityTrendScore:   68,
	BalanceSheetStrengthScore: 75,
}

func uploadFiles() []testutil.FormFile {
	return []testutil.FormFile{
		{Field: "income_pdf", Filename: "income.pdf", Content: []byte("%PDF-1.4 income")},
		{Field: "balance_pdf", Filename: "balance.pdf", Content: []byte("%PDF-1.4 balance")},
	}
}

// =============================================================================
// POST /documents/upload
// =============================================================================

func (s *DocumentsHandlerSuite) TestUpload() {
	s.Run("stores files and returns scores", func() {
		uploadedAt := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
		s.uploader.EXPECT().Upload(gomock.Any(), "user-1", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, files []documents.File) ([]documents.Document, error) {
				s.Require().Len(files, 2)
				s.Equal(scoring.IncomeStatement, files[0].Kind)
				s.Equal("income.pdf", files[0].Filename)
				s.Equal("%PDF-1.4 balance", string(files[1].Content))
				return []documents.Document{
					{Kind: scoring.IncomeStatement, Filename: "income.pdf", Size: 15, UploadedAt: uploadedAt},
					{Kind: scoring.BalanceSheet, Filename: "balance.pdf", Size: 16, UploadedAt: uploadedAt},
				}, nil
			})
		s.scorer.EXPECT().DocumentScores(gomock.Any(), "user-1").Return(&display, nil)

		req := testutil.WithAuth(testutil.NewMultipartRequest(s.T(), http.MethodPost, "/documents/upload", uploadFiles()...), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[UploadResponse](s.T(), rr)
		s.Equal(display, resp.Scores)
		s.Len(resp.Documents, 2)
		s.Equal("balance.pdf", resp.Documents[1].Filename)
	})

	s.Run("missing file is passed to the service which rejects it", func() {
		s.uploader.EXPECT().Upload(gomock.Any(), "user-1", gomock.Len(1)).
			Return(nil, dErrors.New(dErrors.CodeValidation, "missing balance_pdf file"))

		files := uploadFiles()[:1]
		req := testutil.WithAuth(testutil.NewMultipartRequest(s.T(), http.MethodPost, "/documents/upload", files...), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		body := testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
		s.Equal("missing balance_pdf file", body["error_description"])
	})

	s.Run("non multipart body", func() {
		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/documents/upload", map[string]string{"a": "b"}), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	s.Run("unauthenticated", func() {
		req := testutil.NewMultipartRequest(s.T(), http.MethodPost, "/documents/upload", uploadFiles()...)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}

// =============================================================================
// GET /documents/scores
// =============================================================================

func (s *DocumentsHandlerSuite) TestScores() {
	s.Run("returns display values and stored statements", func() {
		uploadedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		s.scorer.EXPECT().DocumentScores(gomock.Any(), "user-1").Return(&display, nil)
		s.uploader.EXPECT().Uploaded(gomock.Any(), "user-1").Return([]documents.Document{
			{Kind: scoring.IncomeStatement, Filename: "Q4 income.pdf", Size: 15, UploadedAt: uploadedAt},
			{Kind: scoring.BalanceSheet, Filename: "balance.pdf", Size: 16, UploadedAt: uploadedAt},
		}, nil)

		req := testutil.WithUserID(testutil.NewJSONRequest(s.T(), http.MethodGet, "/documents/scores", nil), "user-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[ScoresResponse](s.T(), rr)
		s.Equal(display, resp.Scores)
		s.Require().Len(resp.Documents, 2)
		s.Equal("Q4 income.pdf", resp.Documents[0].Filename)
		s.Equal(scoring.BalanceSheet, resp.Documents[1].Kind)
		s.True(uploadedAt.Equal(resp.Documents[1].UploadedAt))
	})

	s.Run("stat failure", func() {
		s.scorer.EXPECT().DocumentScores(gomock.Any(), "user-1").Return(&display, nil)
		s.uploader.EXPECT().Uploaded(gomock.Any(), "user-1").
			Return(nil, dErrors.New(dErrors.CodeInternal, "failed to describe stored documents"))

		req := testutil.WithUserID(testutil.NewJSONRequest(s.T(), http.MethodGet, "/documents/scores", nil), "user-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, string(dErrors.CodeInternal))
	})

	// Justification: clients rely on the hint to send users to the upload flow.
	s.Run("missing documents is 404 with hint", func() {
		s.scorer.EXPECT().DocumentScores(gomock.Any(), "user-1").
			Return(nil, dErrors.Wrap(scoring.MissingDocument(scoring.IncomeStatement, nil), dErrors.CodeMissingDocument, "income_statement not uploaded"))

		req := testutil.WithUserID(testutil.NewJSONRequest(s.T(), http.MethodGet, "/documents/scores", nil), "user-1")
		rr := testutil.DoRequest(s.router, req)

		body := testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeMissingDocument))
		s.Contains(body["hint"], "/documents/upload")
	})
}

// =============================================================================
// GET /documents/metrics
// =============================================================================

func (s *DocumentsHandlerSuite) TestMetrics() {
	income := scoring.AnalyzeIncomeStatement("Total Sales $100,000 $120,000\nNet Income $8,000 $9,600")
	balance := scoring.AnalyzeBalanceSheet("Total Assets $500,000\nTotal Liabilities $200,000")
	report := &scoringsvc.DocumentReport{
		Income:     income,
		Balance:    balance,
		Components: scoring.ScoreDocuments(income, balance),
	}

	s.Run("json", func() {
		s.scorer.EXPECT().DocumentMetrics(gomock.Any(), "user-1").Return(report, nil)

		req := testutil.WithUserID(testutil.NewJSONRequest(s.T(), http.MethodGet, "/documents/metrics", nil), "user-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[MetricsResponse](s.T(), rr)
		s.Require().NotNil(resp.Income.TotalSales.Latest)
		s.InDelta(120000, *resp.Income.TotalSales.Latest, 0.001)
		s.Nil(resp.Balance.TotalEquity)
	})

	s.Run("csv", func() {
		s.scorer.EXPECT().DocumentMetrics(gomock.Any(), "user-1").Return(report, nil)

		req := testutil.WithUserID(testutil.NewJSONRequest(s.T(), http.MethodGet, "/documents/metrics?format=csv", nil), "user-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		s.Equal("text/csv", rr.Header().Get("Content-Type"))
		rows, err := csv.NewReader(strings.NewReader(rr.Body.String())).ReadAll()
		s.Require().NoError(err)
		s.Equal([]string{"statement_type", "year", "metric_key", "value"}, rows[0])
		s.Contains(rows, []string{"income_statement", "2004", "total_sales", "120000"})
	})

	s.Run("unknown format", func() {
		req := testutil.WithUserID(testutil.NewJSONRequest(s.T(), http.MethodGet, "/documents/metrics?format=xml", nil), "user-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("internal errors hide their description", func() {
		s.scorer.EXPECT().DocumentMetrics(gomock.Any(), "user-1").
			Return(nil, dErrors.Wrap(errors.New("disk"), dErrors.CodeInternal, "failed to gather scoring inputs"))

		req := testutil.WithUserID(testutil.NewJSONRequest(s.T(), http.MethodGet, "/documents/metrics", nil), "user-1")
		rr := testutil.DoRequest(s.router, req)
		body := testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, string(dErrors.CodeInternal))
		s.NotContains(body, "error_description")
	})
}
