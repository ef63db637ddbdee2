package service

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aadya-khanna/OpenScore/internal/financial"
	"github.com/aadya-khanna/OpenScore/internal/financial/metrics"
	"github.com/aadya-khanna/OpenScore/internal/financial/plaid"
	dErrors "github.com/aadya-khanna/OpenScore/pkg/domain-errors"
	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

// Sync pulls accounts, transactions, holdings and liabilities of every item the user
// linked and stores them.
func (s *Service) Sync(ctx context.Context, userID string) ([]financial.SyncResult, error) {
	if err := s.requireProvider(userID); err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}
	if len(items) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no linked institutions, link one via POST /plaid/exchange first")
	}

	results := make([]financial.SyncResult, 0, len(items))
	for _, item := range items {
		res, err := s.syncItem(ctx, item, metrics.TriggerManual)
		if err != nil {
			return nil, s.translateProviderError(ctx, userID, err, "failed to sync financial data")
		}
		results = append(results, *res)
	}
	return results, nil
}

// SyncAll syncs every stored item. Failures are logged and do not stop the
// run; the returned error joins them.
func (s *Service) SyncAll(ctx context.Context) (int, error) {
	if s.provider == nil {
		return 0, dErrors.New(dErrors.CodeUnavailable, "financial data provider is not configured")
	}
	items, err := s.store.ListAllItems(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list items")
	}

	var errs []error
	synced := 0
	for _, item := range items {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if _, err := s.syncItem(ctx, item, metrics.TriggerScheduled); err != nil {
			s.logger.WarnContext(ctx, "scheduled item sync failed",
				"user_id", item.UserID,
				"item_id", item.ItemID,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}
		synced++
	}
	return synced, errors.Join(errs...)
}

func (s *Service) syncItem(ctx context.Context, item financial.Item, trigger string) (*financial.SyncResult, error) {
	s.metrics.IncrementSyncRun(trigger)
	start := time.Now()
	defer func() {
		s.metrics.ObserveSync(time.Since(start))
	}()

	snap, err := s.fetch(ctx, item)
	if err != nil {
		s.metrics.IncrementSyncFailure(trigger)
		return nil, err
	}
	if err := s.store.SaveSnapshot(ctx, item, *snap, s.now()); err != nil {
		s.metrics.IncrementSyncFailure(trigger)
		return nil, err
	}

	res := &financial.SyncResult{
		ItemID:       item.ItemID,
		Accounts:     len(snap.Accounts),
		Transactions: len(snap.Transactions),
		Holdings:     len(snap.Holdings),
		Liabilities:  len(snap.Liabilities),
	}
	s.metrics.AddSynced(res.Accounts, res.Transactions, res.Holdings, res.Liabilities)
	s.logger.InfoContext(ctx, "item synced",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", item.UserID,
		"item_id", item.ItemID,
		"trigger", trigger,
		"accounts", res.Accounts,
		"transactions", res.Transactions,
		"holdings", res.Holdings,
		"liabilities", res.Liabilities,
	)
	return res, nil
}

// fetch pulls the four record sets of one item concurrently.
func (s *Service) fetch(ctx context.Context, item financial.Item) (*financial.Snapshot, error) {
	token, err := s.sealer.Open(item.SealedAccessToken)
	if err != nil {
		return nil, err
	}
	accessToken := string(token)
	end := s.now()
	start := end.Add(-s.syncWindow)

	var (
		accounts    []plaid.Account
		txns        []plaid.Transaction
		holdings    *plaid.Holdings
		liabilities []plaid.Liability
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = s.provider.GetAccounts(gctx, accessToken)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = s.provider.GetTransactions(gctx, accessToken, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		holdings, err = s.provider.GetHoldings(gctx, accessToken)
		return err
	})
	g.Go(func() error {
		var err error
		liabilities, err = s.provider.GetLiabilities(gctx, accessToken)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return buildSnapshot(item, accounts, txns, holdings, liabilities, end), nil
}

func buildSnapshot(item financial.Item, accounts []plaid.Account, txns []plaid.Transaction, holdings *plaid.Holdings, liabilities []plaid.Liability, now time.Time) *financial.Snapshot {
	snap := &financial.Snapshot{}
	seen := make(map[string]bool, len(accounts))
	addAccount := func(a plaid.Account) {
		if a.AccountID == "" || seen[a.AccountID] {
			return
		}
		seen[a.AccountID] = true
		snap.Accounts = append(snap.Accounts, financial.Account{
			ID:        a.AccountID,
			UserID:    item.UserID,
			ItemID:    item.ItemID,
			Name:      a.Name,
			Type:      a.Type,
			Subtype:   a.Subtype,
			Available: a.Balances.Available,
			Current:   a.Balances.Current,
			UpdatedAt: now,
		})
	}
	for _, a := range accounts {
		addAccount(a)
	}

	for _, t := range txns {
		id := t.TransactionID
		if id == "" {
			id = financial.TransactionID(item.UserID, t.AccountID, t.Date, t.Name, t.Amount)
		}
		snap.Transactions = append(snap.Transactions, financial.Transaction{
			ID:           id,
			UserID:       item.UserID,
			AccountID:    t.AccountID,
			Amount:       t.Amount,
			Name:         t.Name,
			MerchantName: t.MerchantName,
			Category:     t.Category,
			Date:         t.Date,
			UpdatedAt:    now,
		})
	}

	if holdings != nil {
		for _, a := range holdings.Accounts {
			addAccount(a)
		}
		for _, h := range holdings.Holdings {
			snap.Holdings = append(snap.Holdings, financial.Holding{
				AccountID:        h.AccountID,
				SecurityID:       h.SecurityID,
				UserID:           item.UserID,
				Quantity:         h.Quantity,
				InstitutionValue: h.InstitutionValue,
				UpdatedAt:        now,
			})
		}
	}

	for _, l := range liabilities {
		snap.Liabilities = append(snap.Liabilities, financial.Liability{
			AccountID:      l.AccountID,
			Kind:           l.Kind,
			UserID:         item.UserID,
			MinimumPayment: l.MinimumPayment,
			IsOverdue:      l.IsOverdue,
			Raw:            l.Raw,
			UpdatedAt:      now,
		})
	}
	return snap
}
