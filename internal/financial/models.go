// Package financial holds the aggregation-provider records of a user:
// linked items, accounts, transactions, investment holdings and liabilities.
package financial

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"
)

// Item is a linked institution. The access token is stored sealed.
type Item struct {
	ItemID            string
	UserID            string
	SealedAccessToken []byte
	InstitutionID     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	LastSyncedAt      *time.Time
}

// Account is a stored bank, credit or investment account.
type Account struct {
	ID        string   `json:"account_id"`
	UserID    string   `json:"-"`
	ItemID    string   `json:"item_id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Subtype   string   `json:"subtype"`
	Available *float64 `json:"available"`
	Current   *float64 `json:"current"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Transaction is a stored bank transaction. Date is YYYY-MM-DD.
type Transaction struct {
	ID           string   `json:"transaction_id"`
	UserID       string   `json:"-"`
	AccountID    string   `json:"account_id"`
	Amount       float64  `json:"amount"`
	Name         string   `json:"name"`
	MerchantName string   `json:"merchant_name"`
	Category     []string `json:"category"`
	Date         string   `json:"date"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Holding is a stored investment position.
type Holding struct {
	AccountID        string   `json:"account_id"`
	SecurityID       string   `json:"security_id"`
	UserID           string   `json:"-"`
	Quantity         float64  `json:"quantity"`
	InstitutionValue *float64 `json:"institution_value"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Liability is a stored credit card, mortgage or student loan record, one
// per account and kind. Raw is the provider's full record.
type Liability struct {
	AccountID      string          `json:"account_id"`
	Kind           string          `json:"liability_type"`
	UserID         string          `json:"-"`
	MinimumPayment *float64        `json:"minimum_payment"`
	IsOverdue      *bool           `json:"is_overdue"`
	Raw            json.RawMessage `json:"raw"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot is everything one sync pulled for an item.
type Snapshot struct {
	Accounts     []Account
	Transactions []Transaction
	Holdings     []Holding
	Liabilities  []Liability
}

// SyncResult counts the records a sync stored.
type SyncResult struct {
	ItemID       string `json:"item_id"`
	Accounts     int    `json:"accounts"`
	Transactions int    `json:"transactions"`
	Holdings     int    `json:"holdings"`
	Liabilities  int    `json:"liabilities"`
}

// TransactionID derives a stable ID for transactions the provider sent
// without one, so repeated syncs upsert instead of duplicating.
func TransactionID(userID, accountID, date, name string, amount float64) string {
	sum := sha256.Sum256([]byte(userID + accountID + date + name + strconv.FormatFloat(amount, 'f', -1, 64)))
	return hex.EncodeToString(sum[:])
}
