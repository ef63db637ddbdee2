package service

import (
	"context"

	"github.com/aadya-khanna/OpenScore/internal/financial"
	"github.com/aadya-khanna/OpenScore/internal/scoring"
)

// investmentAccountType is the provider account type of brokerage accounts.
const investmentAccountType = "investment"

// ScoringSource adapts stored records to the scoring service.
type ScoringSource struct {
	store Store
}

// NewScoringSource creates a scoring adapter over store.
func NewScoringSource(store Store) *ScoringSource {
	return &ScoringSource{store: store}
}

// Transactions returns every stored transaction of the user.
func (a *ScoringSource) Transactions(ctx context.Context, userID string) ([]scoring.Transaction, error) {
	txns, err := a.store.ListTransactions(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	out := make([]scoring.Transaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, scoring.Transaction{
			Amount:       t.Amount,
			Name:         t.Name,
			MerchantName: t.MerchantName,
			Category:     t.Category,
			Date:         t.Date,
		})
	}
	return out, nil
}

func (a *ScoringSource) Accounts(ctx context.Context, userID string) ([]scoring.Account, error) {
	accounts, err := a.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]scoring.Account, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, toScoringAccount(acc))
	}
	return out, nil
}

// Investments returns nil when the user has neither holdings nor investment
// accounts.
func (a *ScoringSource) Investments(ctx context.Context, userID string) (*scoring.Investments, error) {
	holdings, err := a.store.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts, err := a.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	inv := &scoring.Investments{}
	for _, acc := range accounts {
		if acc.Type == investmentAccountType {
			inv.Accounts = append(inv.Accounts, toScoringAccount(acc))
		}
	}
	for _, h := range holdings {
		inv.Holdings = append(inv.Holdings, scoring.Holding{
			AccountID:  h.AccountID,
			SecurityID: h.SecurityID,
			Quantity:   h.Quantity,
			Value:      h.InstitutionValue,
		})
	}
	if len(inv.Accounts) == 0 && len(inv.Holdings) == 0 {
		return nil, nil
	}
	return inv, nil
}

func toScoringAccount(acc financial.Account) scoring.Account {
	return scoring.Account{
		ID:      acc.ID,
		Name:    acc.Name,
		Type:    acc.Type,
		Subtype: acc.Subtype,
		Balances: scoring.Balances{
			Available: acc.Available,
			Current:   acc.Current,
		},
	}
}
