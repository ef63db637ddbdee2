package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aadya-khanna/OpenScore/internal/scoring"
)

// Input sources as reported in latency metrics.
const (
	sourceTransactions = "transactions"
	sourceAccounts     = "accounts"
	sourceInvestments  = "investments"
)

// gathered holds every input of one score calculation.
type gathered struct {
	Transactions []scoring.Transaction
	Accounts     []scoring.Account
	Investments  *scoring.Investments

	IncomeStatementText string
	BalanceSheetText    string
}

// gatherInputs fetches financial data and both statements in parallel with
// shared cancellation. The first failure cancels the rest.
func (s *Service) gatherInputs(ctx context.Context, userID string) (*gathered, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	in := &gathered{}

	s.gatherFinancialData(ctx, g, in, userID)
	s.gatherDocuments(ctx, g, in, userID)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// gatherDocumentsOnly fetches the two statements without financial data.
func (s *Service) gatherDocumentsOnly(ctx context.Context, userID string) (*gathered, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	in := &gathered{}

	s.gatherDocuments(ctx, g, in, userID)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *Service) gatherFinancialData(ctx context.Context, g *errgroup.Group, in *gathered, userID string) {
	g.Go(func() error {
		start := time.Now()
		txns, err := s.financial.Transactions(ctx, userID)
		s.metrics.ObserveInputLatency(sourceTransactions, time.Since(start))
		if err != nil {
			return err
		}
		in.Transactions = txns
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		accounts, err := s.financial.Accounts(ctx, userID)
		s.metrics.ObserveInputLatency(sourceAccounts, time.Since(start))
		if err != nil {
			return err
		}
		in.Accounts = accounts
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		inv, err := s.financial.Investments(ctx, userID)
		s.metrics.ObserveInputLatency(sourceInvestments, time.Since(start))
		if err != nil {
			return err
		}
		in.Investments = inv
		return nil
	})
}

func (s *Service) gatherDocuments(ctx context.Context, g *errgroup.Group, in *gathered, userID string) {
	g.Go(func() error {
		start := time.Now()
		text, err := s.documents.Text(ctx, userID, scoring.IncomeStatement)
		s.metrics.ObserveInputLatency(string(scoring.IncomeStatement), time.Since(start))
		if err != nil {
			return err
		}
		in.IncomeStatementText = text
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		text, err := s.documents.Text(ctx, userID, scoring.BalanceSheet)
		s.metrics.ObserveInputLatency(string(scoring.BalanceSheet), time.Since(start))
		if err != nil {
			return err
		}
		in.BalanceSheetText = text
		return nil
	})
}
