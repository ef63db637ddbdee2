package plaid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/aadya-khanna/OpenScore/pkg/platform/sentinel"
)

type fakePlaid struct {
	mu       sync.Mutex
	calls    []string
	bodies   []map[string]any
	headers  []http.Header
	handlers map[string]func(body map[string]any) (int, any)
}

func newFakePlaid() *fakePlaid {
	return &fakePlaid{handlers: map[string]func(map[string]any) (int, any){}}
}

func (f *fakePlaid) on(path string, h func(body map[string]any) (int, any)) {
	f.handlers[path] = h
}

func (f *fakePlaid) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.calls = append(f.calls, r.URL.Path)
	f.bodies = append(f.bodies, body)
	f.headers = append(f.headers, r.Header.Clone())
	h := f.handlers[r.URL.Path]
	f.mu.Unlock()

	if h == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	status, resp := h(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakePlaid) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == path {
			n++
		}
	}
	return n
}

func plaidError(code string) map[string]any {
	return map[string]any{
		"error_type":    "ITEM_ERROR",
		"error_code":    code,
		"error_message": "the requested product is not yet ready",
		"request_id":    "req-1",
	}
}

func account(id, name, typ, subtype string, available any, current float64) map[string]any {
	return map[string]any{
		"account_id":    id,
		"name":          name,
		"official_name": nil,
		"mask":          "0000",
		"type":          typ,
		"subtype":       subtype,
		"balances": map[string]any{
			"available":                available,
			"current":                  current,
			"limit":                    nil,
			"iso_currency_code":        "USD",
			"unofficial_currency_code": nil,
		},
	}
}

func transaction(id string, amount float64, date string, category []string) map[string]any {
	var cat any
	if category != nil {
		cat = category
	}
	return map[string]any{
		"transaction_id":           id,
		"account_id":               "acc-1",
		"amount":                   amount,
		"iso_currency_code":        "USD",
		"unofficial_currency_code": nil,
		"date":                     date,
		"name":                     "Purchase " + id,
		"merchant_name":            "Merchant " + id,
		"pending":                  false,
		"pending_transaction_id":   nil,
		"category":                 cat,
		"category_id":              nil,
		"payment_channel":          "online",
	}
}

type PlaidClientSuite struct {
	suite.Suite
	fake   *fakePlaid
	server *httptest.Server
	client *Client
}

func TestPlaidClientSuite(t *testing.T) {
	suite.Run(t, new(PlaidClientSuite))
}

func (s *PlaidClientSuite) SetupTest() {
	s.fake = newFakePlaid()
	s.server = httptest.NewServer(s.fake)
	client, err := NewClient(Config{
		ClientID:   "client",
		Secret:     "secret",
		BaseURL:    s.server.URL,
		RetryDelay: time.Millisecond,
	})
	s.Require().NoError(err)
	s.client = client
}

func (s *PlaidClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *PlaidClientSuite) TestCredentialsAreSent() {
	s.fake.on("/accounts/get", func(map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"accounts": []any{}}
	})

	_, err := s.client.GetAccounts(context.Background(), "access-1")
	s.Require().NoError(err)
	s.Equal("client", s.fake.headers[0].Get("PLAID-CLIENT-ID"))
	s.Equal("secret", s.fake.headers[0].Get("PLAID-SECRET"))
	s.Equal("access-1", s.fake.bodies[0]["access_token"])
	s.NotContains(s.fake.bodies[0], "secret")
}

func (s *PlaidClientSuite) TestGetAccounts() {
	s.fake.on("/accounts/get", func(map[string]any) (int, any) {
		return http.StatusOK, map[string]any{
			"accounts": []map[string]any{
				account("acc-1", "Checking", "depository", "checking", 100.5, 110.0),
				account("acc-2", "Card", "credit", "credit card", nil, 410.0),
			},
			"request_id": "req-1",
		}
	})

	accounts, err := s.client.GetAccounts(context.Background(), "access-1")
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.Equal("depository", accounts[0].Type)
	s.Equal("checking", accounts[0].Subtype)
	s.InDelta(100.5, *accounts[0].Balances.Available, 0.001)
	s.InDelta(110.0, *accounts[0].Balances.Current, 0.001)
	s.Nil(accounts[1].Balances.Available)
}

func (s *PlaidClientSuite) TestGetTransactionsPaginates() {
	s.fake.on("/transactions/get", func(body map[string]any) (int, any) {
		offset := int(body["options"].(map[string]any)["offset"].(float64))
		page := []map[string]any{}
		if offset == 0 {
			page = append(page, transaction("t1", 12.5, "2026-01-02", []string{"Service", "Utilities"}))
			page = append(page, transaction("t2", 3, "2026-01-03", []string{}))
		} else {
			page = append(page, transaction("t3", 8, "2026-01-04", nil))
		}
		return http.StatusOK, map[string]any{"transactions": page, "total_transactions": 3}
	})

	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	txns, err := s.client.GetTransactions(context.Background(), "access-1", end.AddDate(0, 0, -90), end)
	s.Require().NoError(err)
	s.Require().Len(txns, 3)
	s.Equal([]string{"Service", "Utilities"}, txns[0].Category)
	s.Nil(txns[1].Category)
	s.Nil(txns[2].Category)
	s.Equal("Merchant t1", txns[0].MerchantName)
	s.Equal(2, s.fake.callCount("/transactions/get"))
	s.Equal("2025-11-02", s.fake.bodies[0]["start_date"])
	s.Equal("2026-01-31", s.fake.bodies[0]["end_date"])
}

func (s *PlaidClientSuite) TestProductNotReadyRefreshesAndRetries() {
	attempts := 0
	s.fake.on("/transactions/get", func(map[string]any) (int, any) {
		attempts++
		if attempts == 1 {
			return http.StatusBadRequest, plaidError(CodeProductNotReady)
		}
		return http.StatusOK, map[string]any{
			"transactions":       []map[string]any{transaction("t1", 1, "2026-01-05", nil)},
			"total_transactions": 1,
		}
	})
	s.fake.on("/transactions/refresh", func(map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"request_id": "r"}
	})

	txns, err := s.client.GetTransactions(context.Background(), "access-1", time.Now().AddDate(0, 0, -90), time.Now())
	s.Require().NoError(err)
	s.Len(txns, 1)
	s.Equal(1, s.fake.callCount("/transactions/refresh"))
}

func (s *PlaidClientSuite) TestProductStillNotReadyIsNotReady() {
	s.fake.on("/transactions/get", func(map[string]any) (int, any) {
		return http.StatusBadRequest, plaidError(CodeProductNotReady)
	})
	s.fake.on("/transactions/refresh", func(map[string]any) (int, any) {
		return http.StatusOK, map[string]any{}
	})

	_, err := s.client.GetTransactions(context.Background(), "access-1", time.Now().AddDate(0, 0, -90), time.Now())
	s.ErrorIs(err, sentinel.ErrNotReady)
	s.Equal(2, s.fake.callCount("/transactions/get"))
}

func (s *PlaidClientSuite) TestHoldingsWithoutInvestmentsAreEmpty() {
	s.fake.on("/investments/holdings/get", func(map[string]any) (int, any) {
		return http.StatusBadRequest, plaidError(CodeProductsNotSupported)
	})

	holdings, err := s.client.GetHoldings(context.Background(), "access-1")
	s.Require().NoError(err)
	s.Empty(holdings.Holdings)
	s.Empty(holdings.Accounts)
}

func (s *PlaidClientSuite) TestGetHoldings() {
	s.fake.on("/investments/holdings/get", func(map[string]any) (int, any) {
		return http.StatusOK, map[string]any{
			"accounts": []map[string]any{account("inv-1", "Brokerage", "investment", "brokerage", nil, 1500.25)},
			"holdings": []map[string]any{{
				"account_id": "inv-1", "security_id": "sec-1", "quantity": 10,
				"institution_value": 1500.25, "institution_price": 150.025, "cost_basis": nil,
				"iso_currency_code": "USD", "unofficial_currency_code": nil,
			}},
			"securities": []any{},
			"request_id": "req-1",
		}
	})

	holdings, err := s.client.GetHoldings(context.Background(), "access-1")
	s.Require().NoError(err)
	s.Require().Len(holdings.Holdings, 1)
	s.InDelta(1500.25, *holdings.Holdings[0].InstitutionValue, 0.001)
	s.Nil(holdings.Holdings[0].CostBasis)
	s.Require().Len(holdings.Accounts, 1)
	s.Equal("investment", holdings.Accounts[0].Type)
}

func (s *PlaidClientSuite) TestServerErrorsAreUnavailable() {
	s.fake.on("/accounts/get", func(map[string]any) (int, any) {
		return http.StatusInternalServerError, map[string]any{"error_type": "API_ERROR", "error_code": "INTERNAL_SERVER_ERROR", "request_id": "req-9"}
	})

	_, err := s.client.GetAccounts(context.Background(), "access-1")
	s.ErrorIs(err, sentinel.ErrUnavailable)
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.True(apiErr.Retryable())
	s.Equal(http.StatusInternalServerError, apiErr.StatusCode)
	s.Equal("API_ERROR", apiErr.ErrorType)
	s.Equal("req-9", apiErr.RequestID)
}

func (s *PlaidClientSuite) TestInvalidPublicTokenIsNotFound() {
	s.fake.on("/item/public_token/exchange", func(map[string]any) (int, any) {
		return http.StatusBadRequest, map[string]any{"error_type": "INVALID_INPUT", "error_code": CodeInvalidPublicToken}
	})

	_, err := s.client.ExchangePublicToken(context.Background(), "public-bad")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PlaidClientSuite) TestSandboxPublicToken() {
	s.fake.on("/sandbox/public_token/create", func(body map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"public_token": "public-sandbox-1", "request_id": "req-1"}
	})

	token, err := s.client.CreateSandboxPublicToken(context.Background(), "")
	s.Require().NoError(err)
	s.Equal("public-sandbox-1", token)
	s.Equal(DefaultSandboxInstitution, s.fake.bodies[0]["institution_id"])
	s.Equal([]any{"auth", "transactions"}, s.fake.bodies[0]["initial_products"])
}

func (s *PlaidClientSuite) TestCreateLinkToken() {
	s.fake.on("/link/token/create", func(body map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"link_token": "link-sandbox-1", "expiration": "2026-01-01T04:00:00Z", "request_id": "req-1"}
	})

	token, err := s.client.CreateLinkToken(context.Background(), "user-1")
	s.Require().NoError(err)
	s.Equal("link-sandbox-1", token.Token)
	s.True(token.Expiration.Equal(time.Date(2026, 1, 1, 4, 0, 0, 0, time.UTC)))
	s.Equal("user-1", s.fake.bodies[0]["user"].(map[string]any)["client_user_id"])
	s.Equal("OpenScore", s.fake.bodies[0]["client_name"])
	s.Equal([]any{"US"}, s.fake.bodies[0]["country_codes"])
	s.Equal([]any{"auth", "transactions"}, s.fake.bodies[0]["products"])
}

func (s *PlaidClientSuite) TestExchangePublicToken() {
	s.fake.on("/item/public_token/exchange", func(body map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"access_token": "access-sandbox-1", "item_id": "item-1", "request_id": "req-1"}
	})

	res, err := s.client.ExchangePublicToken(context.Background(), "public-1")
	s.Require().NoError(err)
	s.Equal(&ExchangeResult{AccessToken: "access-sandbox-1", ItemID: "item-1"}, res)
	s.Equal("public-1", s.fake.bodies[0]["public_token"])
}

func (s *PlaidClientSuite) TestGetLiabilities() {
	s.fake.on("/liabilities/get", func(map[string]any) (int, any) {
		return http.StatusOK, map[string]any{
			"accounts": []map[string]any{account("card-1", "Card", "credit", "credit card", nil, 410)},
			"liabilities": map[string]any{
				"credit": []map[string]any{{
					"account_id": "card-1", "is_overdue": true, "minimum_payment_amount": 20,
					"last_statement_balance": 410, "aprs": []any{},
				}},
				"mortgage": []map[string]any{{
					"account_id": "mort-1", "next_monthly_payment": 3141.54, "past_due_amount": 0,
					"loan_term": "30 year",
				}},
				"student": []map[string]any{{
					"account_id": nil, "is_overdue": false, "minimum_payment_amount": 25,
				}},
			},
			"request_id": "req-1",
		}
	})

	liabilities, err := s.client.GetLiabilities(context.Background(), "access-1")
	s.Require().NoError(err)
	s.Require().Len(liabilities, 2, "records without an account id are skipped")

	card := liabilities[0]
	s.Equal(LiabilityCredit, card.Kind)
	s.Equal("card-1", card.AccountID)
	s.InDelta(20, *card.MinimumPayment, 0.001)
	s.True(*card.IsOverdue)
	s.Contains(string(card.Raw), `"last_statement_balance"`)

	mortgage := liabilities[1]
	s.Equal(LiabilityMortgage, mortgage.Kind)
	s.InDelta(3141.54, *mortgage.MinimumPayment, 0.001)
	s.False(*mortgage.IsOverdue)
}

func (s *PlaidClientSuite) TestLiabilitiesWithoutAccountsAreEmpty() {
	s.fake.on("/liabilities/get", func(map[string]any) (int, any) {
		return http.StatusBadRequest, plaidError(CodeNoLiabilityAccounts)
	})

	liabilities, err := s.client.GetLiabilities(context.Background(), "access-1")
	s.Require().NoError(err)
	s.Empty(liabilities)
}

func (s *PlaidClientSuite) TestNonJSONErrorKeepsStatus() {
	s.server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := s.client.GetAccounts(context.Background(), "access-1")
	s.ErrorIs(err, sentinel.ErrUnavailable)
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusBadGateway, apiErr.StatusCode)
}

func (s *PlaidClientSuite) TestTransportFailureIsUnavailable() {
	s.server.Close()

	_, err := s.client.GetAccounts(context.Background(), "access-1")
	s.ErrorIs(err, sentinel.ErrUnavailable)
	var apiErr *APIError
	s.False(errors.As(err, &apiErr))
}

func (s *PlaidClientSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.client.GetAccounts(ctx, "access-1")
	s.ErrorIs(err, context.Canceled)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{ClientID: "id"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	c, err := NewClient(Config{ClientID: "id", Secret: "s", Environment: "Production"})
	require.NoError(t, err)
	assert.False(t, c.IsSandbox())
	_, err = c.CreateSandboxPublicToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrSandboxOnly)

	c, err = NewClient(Config{ClientID: "id", Secret: "s"})
	require.NoError(t, err)
	assert.True(t, c.IsSandbox())
}
