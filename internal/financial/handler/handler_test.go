package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/aadya-khanna/OpenScore/internal/financial"
	"github.com/aadya-khanna/OpenScore/internal/financial/handler/mocks"
	"github.com/aadya-khanna/OpenScore/internal/financial/plaid"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/testutil"
)

type FinancialHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestFinancialHandlerSuite(t *testing.T) {
	suite.Run(t, new(FinancialHandlerSuite))
}

func (s *FinancialHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func ptr(v float64) *float64 { return &v }

var linkedAt = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// =============================================================================
// Stored records
// =============================================================================

func (s *FinancialHandlerSuite) TestTransactions() {
	s.Run("returns stored transactions", func() {
		s.service.EXPECT().Transactions(gomock.Any(), "user-1").Return([]financial.Transaction{
			{ID: "t-2", Amount: 12.5, Name: "Lunch", Date: "2026-03-02"},
			{ID: "t-1", Amount: 9.99, Name: "Spotify", Date: "2026-03-01"},
		}, nil)

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodGet, "/transactions", nil), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[TransactionsResponse](s.T(), rr)
		s.Equal(2, resp.Count)
		s.Equal("t-2", resp.Transactions[0].ID)
	})

	s.Run("empty list is an array", func() {
		s.service.EXPECT().Transactions(gomock.Any(), "user-1").Return(nil, nil)

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodGet, "/transactions", nil), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"transactions":[],"count":0}`, rr.Body.String())
	})

	s.Run("unauthenticated", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/transactions", nil)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}

func (s *FinancialHandlerSuite) TestBalances() {
	s.service.EXPECT().Balances(gomock.Any(), "user-1").Return([]financial.Account{
		{ID: "acc-1", Name: "Checking", Type: "depository", Subtype: "checking", Current: ptr(120)},
	}, nil)

	req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodGet, "/balances", nil), "user-1", "req-1")
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[BalancesResponse](s.T(), rr)
	s.Require().Len(resp.Accounts, 1)
	s.Nil(resp.Accounts[0].Available)
	s.InDelta(120, *resp.Accounts[0].Current, 0.001)
}

func (s *FinancialHandlerSuite) TestLiabilities() {
	s.Run("returns stored liabilities", func() {
		overdue := true
		s.service.EXPECT().Liabilities(gomock.Any(), "user-1").Return([]financial.Liability{
			{AccountID: "card", Kind: plaid.LiabilityCredit, UserID: "user-1", MinimumPayment: ptr(35), IsOverdue: &overdue, Raw: []byte(`{"account_id":"card"}`), UpdatedAt: linkedAt},
		}, nil)

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodGet, "/liabilities", nil), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"liabilities":[{
			"account_id":"card","liability_type":"credit","minimum_payment":35,"is_overdue":true,
			"raw":{"account_id":"card"},"updated_at":"2026-03-01T08:00:00Z"
		}]}`, rr.Body.String())
	})

	s.Run("empty list is an array", func() {
		s.service.EXPECT().Liabilities(gomock.Any(), "user-1").Return(nil, nil)

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodGet, "/liabilities", nil), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"liabilities":[]}`, rr.Body.String())
	})
}

func (s *FinancialHandlerSuite) TestSummary() {
	s.Run("returns the summary", func() {
		food := "Food"
		s.service.EXPECT().Summary(gomock.Any(), "user-1").Return(&financial.Summary{
			Totals:        financial.Totals{CurrentBalance: 1500.5},
			MonthlySpend:  []financial.MonthlySpend{{Month: "2026-02", Spend: 70}},
			TopCategories: []financial.CategorySpend{{Category: &food, Spend: 70}, {Spend: 5}},
		}, nil)

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodGet, "/summary", nil), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{
			"totals":{"current_balance":1500.5},
			"monthly_spend":[{"month":"2026-02","spend":70}],
			"top_categories":[{"category":"Food","spend":70},{"category":null,"spend":5}]
		}`, rr.Body.String())
	})

	s.Run("store failure", func() {
		s.service.EXPECT().Summary(gomock.Any(), "user-1").
			Return(nil, dErrors.New(dErrors.CodeInternal, "failed to list accounts"))

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodGet, "/summary", nil), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, string(dErrors.CodeInternal))
	})

	s.Run("unauthenticated", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/summary", nil)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}

// =============================================================================
// Linking
// =============================================================================

func (s *FinancialHandlerSuite) TestLinkToken() {
	s.service.EXPECT().LinkToken(gomock.Any(), "user-1").
		Return(&plaid.LinkToken{Token: "link-sandbox-abc", Expiration: linkedAt}, nil)

	req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/plaid/link-token", nil), "user-1", "req-1")
	rr := testutil.DoRequest(s.router, req)

	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[LinkTokenResponse](s.T(), rr)
	s.Equal("link-sandbox-abc", resp.LinkToken)
}

func (s *FinancialHandlerSuite) TestExchange() {
	s.Run("links the item", func() {
		s.service.EXPECT().Exchange(gomock.Any(), "user-1", "public-sandbox-1").
			Return(&financial.Item{ItemID: "item-1", UserID: "user-1", SealedAccessToken: []byte("sealed"), CreatedAt: linkedAt}, nil)

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/plaid/exchange",
			map[string]string{"public_token": " public-sandbox-1 "}), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusCreated, rr.Code)
		s.NotContains(rr.Body.String(), "sealed")
		resp := testutil.UnmarshalResponse[ItemResponse](s.T(), rr)
		s.Equal("item-1", resp.ItemID)
		s.True(linkedAt.Equal(resp.LinkedAt))
	})

	s.Run("missing public token", func() {
		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/plaid/exchange", map[string]string{}), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("provider not configured", func() {
		s.service.EXPECT().Exchange(gomock.Any(), "user-1", "tok").
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "financial data provider is not configured"))

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/plaid/exchange",
			map[string]string{"public_token": "tok"}), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
	})
}

func (s *FinancialHandlerSuite) TestSandboxLink() {
	s.Run("empty body uses the default institution", func() {
		s.service.EXPECT().SandboxLink(gomock.Any(), "user-1", "").
			Return(&financial.Item{ItemID: "item-1", InstitutionID: plaid.DefaultSandboxInstitution, CreatedAt: linkedAt}, nil)

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/plaid/sandbox/link", nil), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.UnmarshalResponse[ItemResponse](s.T(), rr)
		s.Equal(plaid.DefaultSandboxInstitution, resp.InstitutionID)
	})

	s.Run("forbidden outside sandbox", func() {
		s.service.EXPECT().SandboxLink(gomock.Any(), "user-1", "ins_3").
			Return(nil, dErrors.New(dErrors.CodeForbidden, "sandbox linking is only available in the sandbox environment"))

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/plaid/sandbox/link",
			map[string]string{"institution_id": "ins_3"}), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})
}

// =============================================================================
// Sync
// =============================================================================

func (s *FinancialHandlerSuite) TestSync() {
	s.Run("reports synced counts", func() {
		s.service.EXPECT().Sync(gomock.Any(), "user-1").Return([]financial.SyncResult{
			{ItemID: "item-1", Accounts: 2, Transactions: 40, Holdings: 1, Liabilities: 1},
		}, nil)

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/plaid/sync", nil), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)

		s.Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"items":[{"item_id":"item-1","accounts":2,"transactions":40,"holdings":1,"liabilities":1}]}`, rr.Body.String())
	})

	s.Run("data not ready yet", func() {
		s.service.EXPECT().Sync(gomock.Any(), "user-1").
			Return(nil, dErrors.New(dErrors.CodeUnavailable, "financial data is still being prepared, retry shortly"))

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/plaid/sync", nil), "user-1", "req-1")
		rr := testutil.DoRequest(s.router, req)
		body := testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, string(dErrors.CodeUnavailable))
		s.Contains(body["error_description"], "retry")
	})
}
