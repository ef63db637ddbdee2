package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/aadya-khanna/OpenScore/internal/financial"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestItems() {
	s.Require().NoError(s.store.SaveItem(s.ctx, fixtureItem("user-1", "item-1")))
	s.Require().NoError(s.store.SaveItem(s.ctx, fixtureItem("user-2", "item-2")))

	items, err := s.store.ListItems(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(items, 1)
	s.Equal("item-1", items[0].ItemID)

	all, err := s.store.ListAllItems(s.ctx)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *InMemoryStoreSuite) TestSnapshotMarksItemSynced() {
	item := fixtureItem("user-1", "item-1")
	s.Require().NoError(s.store.SaveItem(s.ctx, item))
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, item, fixtureSnapshot("user-1", "item-1"), fixtureTime))

	items, err := s.store.ListItems(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().NotNil(items[0].LastSyncedAt)
	s.True(fixtureTime.Equal(*items[0].LastSyncedAt))

	// relinking keeps the sync state
	s.Require().NoError(s.store.SaveItem(s.ctx, item))
	items, _ = s.store.ListItems(s.ctx, "user-1")
	s.NotNil(items[0].LastSyncedAt)
}

func (s *InMemoryStoreSuite) TestTransactionsNewestFirstWithLimit() {
	item := fixtureItem("user-1", "item-1")
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, item, fixtureSnapshot("user-1", "item-1"), fixtureTime))

	txns, err := s.store.ListTransactions(s.ctx, "user-1", 0)
	s.Require().NoError(err)
	s.Require().Len(txns, 3)
	s.Equal("2026-02-03", txns[0].Date)
	s.Equal("2026-01-15", txns[2].Date)

	limited, err := s.store.ListTransactions(s.ctx, "user-1", 2)
	s.Require().NoError(err)
	s.Len(limited, 2)
}

func (s *InMemoryStoreSuite) TestUpsertIsIdempotent() {
	item := fixtureItem("user-1", "item-1")
	snap := fixtureSnapshot("user-1", "item-1")
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, item, snap, fixtureTime))
	snap.Accounts[0].Current = ptr(999)
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, item, snap, fixtureTime))

	accounts, err := s.store.ListAccounts(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(accounts, 2)
	s.InDelta(999, *accounts[0].Current, 0.001)

	txns, _ := s.store.ListTransactions(s.ctx, "user-1", 0)
	s.Len(txns, 3)
	holdings, _ := s.store.ListHoldings(s.ctx, "user-1")
	s.Len(holdings, 1)
	liabilities, _ := s.store.ListLiabilities(s.ctx, "user-1")
	s.Len(liabilities, 2)
}

func (s *InMemoryStoreSuite) TestUsersAreIsolated() {
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, fixtureItem("user-1", "item-1"), fixtureSnapshot("user-1", "item-1"), fixtureTime))

	accounts, err := s.store.ListAccounts(s.ctx, "user-2")
	s.Require().NoError(err)
	s.Empty(accounts)
	txns, _ := s.store.ListTransactions(s.ctx, "user-2", 0)
	s.Empty(txns)
	holdings, _ := s.store.ListHoldings(s.ctx, "user-2")
	s.Empty(holdings)
	liabilities, _ := s.store.ListLiabilities(s.ctx, "user-2")
	s.Empty(liabilities)
}

func (s *InMemoryStoreSuite) TestLiabilitiesKeyedByAccountAndKind() {
	item := fixtureItem("user-1", "item-1")
	snap := fixtureSnapshot("user-1", "item-1")
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, item, snap, fixtureTime))

	snap.Liabilities[0].IsOverdue = flag(true)
	snap.Liabilities = append(snap.Liabilities, financial.Liability{
		AccountID: "item-1-card", Kind: "mortgage", UserID: "user-1", UpdatedAt: fixtureTime,
	})
	s.Require().NoError(s.store.SaveSnapshot(s.ctx, item, snap, fixtureTime))

	liabilities, err := s.store.ListLiabilities(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(liabilities, 3)
	s.Equal("credit", liabilities[0].Kind)
	s.True(*liabilities[0].IsOverdue)
	s.Equal("mortgage", liabilities[1].Kind)
	s.Equal("item-1-loan", liabilities[2].AccountID)
}
