// Package service links aggregation-provider items, syncs their records into
// the store and serves the stored records to the HTTP layer and the scoring
// service.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aadya-khanna/OpenScore/internal/financial"
	"github.com/aadya-khanna/OpenScore/internal/financial/metrics"
	"github.com/aadya-khanna/OpenScore/internal/financial/plaid"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/platform/sentinel"
	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

const (
	// RecentTransactionsLimit bounds the transactions listing.
	RecentTransactionsLimit = 100

	defaultSyncWindow = 90 * 24 * time.Hour
)

// Store persists linked items and their synced records.
type Store interface {
	SaveItem(ctx context.Context, item financial.Item) error
	ListItems(ctx context.Context, userID string) ([]financial.Item, error)
	ListAllItems(ctx context.Context) ([]financial.Item, error)
	SaveSnapshot(ctx context.Context, item financial.Item, snap financial.Snapshot, syncedAt time.Time) error
	ListAccounts(ctx context.Context, userID string) ([]financial.Account, error)
	// ListTransactions returns the newest first; limit <= 0 returns all.
	ListTransactions(ctx context.Context, userID string, limit int) ([]financial.Transaction, error)
	ListHoldings(ctx context.Context, userID string) ([]financial.Holding, error)
	ListLiabilities(ctx context.Context, userID string) ([]financial.Liability, error)
}

// Provider is the aggregation-provider API.
type Provider interface {
	IsSandbox() bool
	CreateLinkToken(ctx context.Context, userID string) (*plaid.LinkToken, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*plaid.ExchangeResult, error)
	CreateSandboxPublicToken(ctx context.Context, institutionID string) (string, error)
	GetAccounts(ctx context.Context, accessToken string) ([]plaid.Account, error)
	GetTransactions(ctx context.Context, accessToken string, start, end time.Time) ([]plaid.Transaction, error)
	GetHoldings(ctx context.Context, accessToken string) (*plaid.Holdings, error)
	GetLiabilities(ctx context.Context, accessToken string) ([]plaid.Liability, error)
}

// Sealer encrypts access tokens at rest.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// Service manages linked items and synced financial records.
type Service struct {
	store      Store
	provider   Provider
	sealer     Sealer
	logger     *slog.Logger
	metrics    *metrics.Metrics
	syncWindow time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithProvider enables linking and syncing. Without it only stored records
// are served.
func WithProvider(p Provider, sealer Sealer) Option {
	return func(s *Service) {
		s.provider = p
		s.sealer = sealer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithSyncWindow sets how far back transactions are pulled.
func WithSyncWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.syncWindow = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a financial service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	s := &Service{
		store:      store,
		logger:     slog.Default(),
		syncWindow: defaultSyncWindow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.provider != nil && s.sealer == nil {
		return nil, fmt.Errorf("sealer is required with a provider")
	}
	return s, nil
}

// LinkToken creates a token the client uses to start the Link flow.
func (s *Service) LinkToken(ctx context.Context, userID string) (*plaid.LinkToken, error) {
	if err := s.requireProvider(userID); err != nil {
		return nil, err
	}
	token, err := s.provider.CreateLinkToken(ctx, userID)
	if err != nil {
		return nil, s.translateProviderError(ctx, userID, err, "failed to create link token")
	}
	return token, nil
}

// Exchange trades a public token for an access token and stores the item
// with the token sealed.
func (s *Service) Exchange(ctx context.Context, userID, publicToken string) (*financial.Item, error) {
	if err := s.requireProvider(userID); err != nil {
		return nil, err
	}
	publicToken = strings.TrimSpace(publicToken)
	if publicToken == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "public_token is required")
	}

	res, err := s.provider.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, s.translateProviderError(ctx, userID, err, "failed to exchange public token")
	}
	return s.saveItem(ctx, userID, res, "")
}

// SandboxLink creates a sandbox item at institutionID and links it. Only
// available against the sandbox environment.
func (s *Service) SandboxLink(ctx context.Context, userID, institutionID string) (*financial.Item, error) {
	if err := s.requireProvider(userID); err != nil {
		return nil, err
	}
	if !s.provider.IsSandbox() {
		return nil, dErrors.New(dErrors.CodeForbidden, "sandbox linking is only available in the sandbox environment")
	}
	if institutionID == "" {
		institutionID = plaid.DefaultSandboxInstitution
	}

	publicToken, err := s.provider.CreateSandboxPublicToken(ctx, institutionID)
	if err != nil {
		return nil, s.translateProviderError(ctx, userID, err, "failed to create sandbox public token")
	}
	res, err := s.provider.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, s.translateProviderError(ctx, userID, err, "failed to exchange public token")
	}
	return s.saveItem(ctx, userID, res, institutionID)
}

func (s *Service) saveItem(ctx context.Context, userID string, res *plaid.ExchangeResult, institutionID string) (*financial.Item, error) {
	sealed, err := s.sealer.Seal([]byte(res.AccessToken))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to seal access token")
	}
	now := s.now()
	item := financial.Item{
		ItemID:            res.ItemID,
		UserID:            userID,
		SealedAccessToken: sealed,
		InstitutionID:     institutionID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.SaveItem(ctx, item); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save item")
	}
	s.metrics.IncrementItemsLinked()

	s.logger.InfoContext(ctx, "item linked",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"item_id", item.ItemID,
		"institution_id", institutionID,
	)
	return &item, nil
}

// Transactions returns the user's most recent stored transactions, newest
// first.
func (s *Service) Transactions(ctx context.Context, userID string) ([]financial.Transaction, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	txns, err := s.store.ListTransactions(ctx, userID, RecentTransactionsLimit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transactions")
	}
	return txns, nil
}

// Balances returns the user's stored accounts.
func (s *Service) Balances(ctx context.Context, userID string) ([]financial.Account, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return accounts, nil
}

// Liabilities returns the user's stored credit, mortgage and student loan
// records.
func (s *Service) Liabilities(ctx context.Context, userID string) ([]financial.Liability, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	liabilities, err := s.store.ListLiabilities(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list liabilities")
	}
	return liabilities, nil
}

// Summary aggregates every stored account and transaction of the user.
func (s *Service) Summary(ctx context.Context, userID string) (*financial.Summary, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	txns, err := s.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transactions")
	}
	summary := financial.Summarize(accounts, txns)
	return &summary, nil
}

func (s *Service) requireProvider(userID string) error {
	if userID == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if s.provider == nil {
		return dErrors.New(dErrors.CodeUnavailable, "financial data provider is not configured")
	}
	return nil
}

// translateProviderError maps provider failures to domain errors.
func (s *Service) translateProviderError(ctx context.Context, userID string, err error, msg string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	case errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "request cancelled")
	case errors.Is(err, sentinel.ErrNotReady):
		s.metrics.IncrementProviderNotReady()
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "financial data is still being prepared, retry shortly")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid or expired token")
	case plaid.IsCode(err, plaid.CodeItemLoginRequired):
		return dErrors.Wrap(err, dErrors.CodeConflict, "institution login required, relink the item")
	case errors.Is(err, sentinel.ErrUnavailable):
		s.logger.WarnContext(ctx, "financial data provider unavailable",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
	}

	s.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
