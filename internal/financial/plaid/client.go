package plaid

import (
	"context"
	"net/http"
	"strings"
	"time"

	plaidsdk "github.com/plaid/plaid-go/v29/plaid"
)

const (
	sandboxBaseURL     = "https://sandbox.plaid.com"
	developmentBaseURL = "https://development.plaid.com"
	productionBaseURL  = "https://production.plaid.com"

	clientName = "OpenScore"

	// DefaultSandboxInstitution is First Platypus Bank.
	DefaultSandboxInstitution = "ins_109508"

	transactionsPageSize = 500
	maxTransactions      = 2000
	defaultRetryDelay    = 2 * time.Second
	defaultTimeout       = 30 * time.Second
)

// Config configures the client.
type Config struct {
	// Environment is "sandbox", "development" or "production".
	Environment  string
	ClientID     string
	Secret       string
	Products     []string
	CountryCodes []string

	// BaseURL overrides the environment URL.
	BaseURL    string
	HTTPClient *http.Client
	// RetryDelay is the wait between a transactions refresh and the retry.
	RetryDelay time.Duration
}

// Client calls the Plaid API through the SDK. Credentials travel as SDK
// default headers and are never logged.
type Client struct {
	api          *plaidsdk.PlaidApiService
	environment  string
	products     []plaidsdk.Products
	countryCodes []plaidsdk.CountryCode
	retryDelay   time.Duration
}

// NewClient creates a client for cfg.Environment, defaulting to sandbox.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.Secret == "" {
		return nil, ErrNotConfigured
	}

	env := strings.ToLower(cfg.Environment)
	baseURL := cfg.BaseURL
	switch env {
	case "production":
		if baseURL == "" {
			baseURL = productionBaseURL
		}
	case "development":
		if baseURL == "" {
			baseURL = developmentBaseURL
		}
	default:
		env = "sandbox"
		if baseURL == "" {
			baseURL = sandboxBaseURL
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	conf := plaidsdk.NewConfiguration()
	conf.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	conf.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	conf.UseEnvironment(plaidsdk.Environment(strings.TrimRight(baseURL, "/")))
	conf.HTTPClient = httpClient

	products := cfg.Products
	if len(products) == 0 {
		products = []string{"auth", "transactions"}
	}
	countryCodes := cfg.CountryCodes
	if len(countryCodes) == 0 {
		countryCodes = []string{"US"}
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	c := &Client{
		api:         plaidsdk.NewAPIClient(conf).PlaidApi,
		environment: env,
		retryDelay:  retryDelay,
	}
	for _, p := range products {
		c.products = append(c.products, plaidsdk.Products(strings.ToLower(p)))
	}
	for _, cc := range countryCodes {
		c.countryCodes = append(c.countryCodes, plaidsdk.CountryCode(strings.ToUpper(cc)))
	}
	return c, nil
}

// IsSandbox reports whether the client talks to the sandbox environment.
func (c *Client) IsSandbox() bool {
	return c.environment == "sandbox"
}

// CreateLinkToken creates a Link token for userID.
func (c *Client) CreateLinkToken(ctx context.Context, userID string) (*LinkToken, error) {
	req := plaidsdk.NewLinkTokenCreateRequest(clientName, "en", c.countryCodes,
		plaidsdk.LinkTokenCreateRequestUser{ClientUserId: userID})
	req.SetProducts(c.products)

	resp, httpResp, err := c.api.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return nil, translateError(ctx, "/link/token/create", httpResp, err)
	}
	return &LinkToken{Token: resp.GetLinkToken(), Expiration: resp.GetExpiration()}, nil
}

// ExchangePublicToken exchanges a Link public token for an access token.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	req := plaidsdk.NewItemPublicTokenExchangeRequest(publicToken)
	resp, httpResp, err := c.api.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return nil, translateError(ctx, "/item/public_token/exchange", httpResp, err)
	}
	return &ExchangeResult{AccessToken: resp.GetAccessToken(), ItemID: resp.GetItemId()}, nil
}

// CreateSandboxPublicToken creates a test item at institutionID and returns
// its public token. Only available in sandbox.
func (c *Client) CreateSandboxPublicToken(ctx context.Context, institutionID string) (string, error) {
	if !c.IsSandbox() {
		return "", ErrSandboxOnly
	}
	if institutionID == "" {
		institutionID = DefaultSandboxInstitution
	}
	req := plaidsdk.NewSandboxPublicTokenCreateRequest(institutionID, c.products)
	resp, httpResp, err := c.api.SandboxPublicTokenCreate(ctx).SandboxPublicTokenCreateRequest(*req).Execute()
	if err != nil {
		return "", translateError(ctx, "/sandbox/public_token/create", httpResp, err)
	}
	return resp.GetPublicToken(), nil
}

// GetAccounts returns the item's accounts with cached balances.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	req := plaidsdk.NewAccountsGetRequest(accessToken)
	resp, httpResp, err := c.api.AccountsGet(ctx).AccountsGetRequest(*req).Execute()
	if err != nil {
		return nil, translateError(ctx, "/accounts/get", httpResp, err)
	}
	return fromAccounts(resp.GetAccounts()), nil
}

// RefreshTransactions asks Plaid to fetch new transactions for the item.
func (c *Client) RefreshTransactions(ctx context.Context, accessToken string) error {
	req := plaidsdk.NewTransactionsRefreshRequest(accessToken)
	_, httpResp, err := c.api.TransactionsRefresh(ctx).TransactionsRefreshRequest(*req).Execute()
	return translateError(ctx, "/transactions/refresh", httpResp, err)
}

// GetTransactions returns transactions dated between start and end. When
// the product is not ready yet the client requests a refresh, waits
// RetryDelay and retries once.
func (c *Client) GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]Transaction, error) {
	txns, err := c.getTransactions(ctx, accessToken, start, end)
	if !IsCode(err, CodeProductNotReady) {
		return txns, err
	}

	if err := c.RefreshTransactions(ctx, accessToken); err != nil && !IsCode(err, CodeProductNotReady) {
		return nil, err
	}
	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}
	return c.getTransactions(ctx, accessToken, start, end)
}

func (c *Client) getTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]Transaction, error) {
	var all []Transaction
	for offset := 0; offset < maxTransactions; {
		opts := plaidsdk.TransactionsGetRequestOptions{}
		opts.SetCount(transactionsPageSize)
		opts.SetOffset(int32(offset))
		req := plaidsdk.NewTransactionsGetRequest(accessToken, FormatDate(start), FormatDate(end))
		req.SetOptions(opts)

		resp, httpResp, err := c.api.TransactionsGet(ctx).TransactionsGetRequest(*req).Execute()
		if err != nil {
			return nil, translateError(ctx, "/transactions/get", httpResp, err)
		}
		page := resp.GetTransactions()
		for _, t := range page {
			all = append(all, fromTransaction(t))
		}
		offset += len(page)
		if len(page) == 0 || offset >= int(resp.GetTotalTransactions()) {
			break
		}
	}
	return all, nil
}

// GetHoldings returns investment holdings. Items without investment
// accounts yield an empty snapshot, not an error.
func (c *Client) GetHoldings(ctx context.Context, accessToken string) (*Holdings, error) {
	req := plaidsdk.NewInvestmentsHoldingsGetRequest(accessToken)
	resp, httpResp, err := c.api.InvestmentsHoldingsGet(ctx).InvestmentsHoldingsGetRequest(*req).Execute()
	if err != nil {
		err = translateError(ctx, "/investments/holdings/get", httpResp, err)
		if IsCode(err, CodeProductsNotSupported) || IsCode(err, CodeNoInvestmentAccounts) {
			return &Holdings{}, nil
		}
		return nil, err
	}

	out := &Holdings{Accounts: fromAccounts(resp.GetAccounts())}
	for _, h := range resp.GetHoldings() {
		out.Holdings = append(out.Holdings, fromHolding(h))
	}
	return out, nil
}

// GetLiabilities returns the item's credit card, mortgage and student loan
// liabilities. Items without liability accounts yield none, not an error.
func (c *Client) GetLiabilities(ctx context.Context, accessToken string) ([]Liability, error) {
	req := plaidsdk.NewLiabilitiesGetRequest(accessToken)
	resp, httpResp, err := c.api.LiabilitiesGet(ctx).LiabilitiesGetRequest(*req).Execute()
	if err != nil {
		err = translateError(ctx, "/liabilities/get", httpResp, err)
		if IsCode(err, CodeProductsNotSupported) || IsCode(err, CodeNoLiabilityAccounts) {
			return nil, nil
		}
		return nil, err
	}

	obj := resp.GetLiabilities()
	var out []Liability
	add := func(kind string, record any) error {
		l, err := fromLiability(kind, record)
		if err != nil {
			return err
		}
		if l.AccountID != "" {
			out = append(out, l)
		}
		return nil
	}
	for _, l := range obj.GetCredit() {
		if err := add(LiabilityCredit, l); err != nil {
			return nil, err
		}
	}
	for _, l := range obj.GetMortgage() {
		if err := add(LiabilityMortgage, l); err != nil {
			return nil, err
		}
	}
	for _, l := range obj.GetStudent() {
		if err := add(LiabilityStudent, l); err != nil {
			return nil, err
		}
	}
	return out, nil
}
