//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aadya-khanna/OpenScore/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *PostgresStore
	ctx      context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "plaid_items", "accounts", "transactions", "holdings", "liabilities"))
}

func (s *PostgresStoreSuite) TestItemRoundTrip() {
	item := fixtureItem("user-1", "item-1")
	s.Require().NoError(s.store.SaveItem(s.ctx, item))

	items, err := s.store.ListItems(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal(item.SealedAccessToken, items[0].SealedAccessToken)
	s.Nil(items[0].LastSyncedAt)
}

func (s *PostgresStoreSuite) TestSnapshotRoundTrip() {
	item := fixtureItem("user-1", "item-1")
	s.Require().NoError(s.store.SaveItem(s.ctx, item))
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, item, fixtureSnapshot("user-1", "item-1"), fixtureTime))

	accounts, err := s.store.ListAccounts(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.Nil(accounts[1].Available)
	s.InDelta(5000, *accounts[1].Current, 0.001)

	txns, err := s.store.ListTransactions(s.ctx, "user-1", 2)
	s.Require().NoError(err)
	s.Require().Len(txns, 2)
	s.Equal("2026-02-03", txns[0].Date)
	s.Nil(txns[0].Category)
	s.Equal([]string{"Service", "Subscription"}, txns[1].Category)

	holdings, err := s.store.ListHoldings(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(holdings, 1)
	s.InDelta(1500, *holdings[0].InstitutionValue, 0.001)

	liabilities, err := s.store.ListLiabilities(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(liabilities, 2)
	s.Equal("credit", liabilities[0].Kind)
	s.InDelta(35, *liabilities[0].MinimumPayment, 0.001)
	s.False(*liabilities[0].IsOverdue)
	s.JSONEq(`{"account_id":"item-1-card","minimum_payment_amount":35}`, string(liabilities[0].Raw))
	s.Nil(liabilities[1].MinimumPayment)
	s.Nil(liabilities[1].IsOverdue)
	s.JSONEq(`{}`, string(liabilities[1].Raw))

	items, err := s.store.ListAllItems(s.ctx)
	s.Require().NoError(err)
	s.Require().NotNil(items[0].LastSyncedAt)
}

func (s *PostgresStoreSuite) TestSnapshotUpserts() {
	item := fixtureItem("user-1", "item-1")
	s.Require().NoError(s.store.SaveItem(s.ctx, item))
	snap := fixtureSnapshot("user-1", "item-1")
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, item, snap, fixtureTime))
	snap.Transactions[0].Amount = 17.99
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, item, snap, fixtureTime))

	txns, err := s.store.ListTransactions(s.ctx, "user-1", 0)
	s.Require().NoError(err)
	s.Len(txns, 3)
	for _, t := range txns {
		if t.Name == "Netflix" {
			s.InDelta(17.99, t.Amount, 0.001)
		}
	}
}
