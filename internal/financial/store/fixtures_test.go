package store

import (
	"time"

	"github.com/aadya-khanna/OpenScore/internal/financial"
)

var fixtureTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

func flag(v bool) *bool { return &v }

func fixtureItem(userID, itemID string) financial.Item {
	return financial.Item{
		ItemID:            itemID,
		UserID:            userID,
		SealedAccessToken: []byte("sealed-" + itemID),
		InstitutionID:     "ins_109508",
		CreatedAt:         fixtureTime,
		UpdatedAt:         fixtureTime,
	}
}

func fixtureSnapshot(userID, itemID string) financial.Snapshot {
	return financial.Snapshot{
		Accounts: []financial.Account{
			{ID: itemID + "-chk", UserID: userID, ItemID: itemID, Name: "Checking", Type: "depository", Subtype: "checking", Available: ptr(100), Current: ptr(110), UpdatedAt: fixtureTime},
			{ID: itemID + "-inv", UserID: userID, ItemID: itemID, Name: "Brokerage", Type: "investment", Subtype: "brokerage", Current: ptr(5000), UpdatedAt: fixtureTime},
		},
		Transactions: []financial.Transaction{
			{ID: itemID + "-t1", UserID: userID, AccountID: itemID + "-chk", Amount: 15.99, Name: "Netflix", Category: []string{"Service", "Subscription"}, Date: "2026-02-01", UpdatedAt: fixtureTime},
			{ID: itemID + "-t2", UserID: userID, AccountID: itemID + "-chk", Amount: 1200, Name: "Rent", Date: "2026-02-03", UpdatedAt: fixtureTime},
			{ID: itemID + "-t3", UserID: userID, AccountID: itemID + "-chk", Amount: 4.5, Name: "Coffee", MerchantName: "Starbucks", Date: "2026-01-15", UpdatedAt: fixtureTime},
		},
		Holdings: []financial.Holding{
			{AccountID: itemID + "-inv", SecurityID: "sec-1", UserID: userID, Quantity: 10, InstitutionValue: ptr(1500), UpdatedAt: fixtureTime},
		},
		Liabilities: []financial.Liability{
			{AccountID: itemID + "-card", Kind: "credit", UserID: userID, MinimumPayment: ptr(35), IsOverdue: flag(false), Raw: []byte(`{"account_id":"` + itemID + `-card","minimum_payment_amount":35}`), UpdatedAt: fixtureTime},
			{AccountID: itemID + "-loan", Kind: "student", UserID: userID, UpdatedAt: fixtureTime},
		},
	}
}
