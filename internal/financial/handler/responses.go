package handler

import (
	"time"

	"github.com/aadya-khanna/OpenScore/internal/financial"
)

type TransactionsResponse struct {
	Transactions []financial.Transaction `json:"transactions"`
	Count        int                     `json:"count"`
}

func NewTransactionsResponse(txns []financial.Transaction) *TransactionsResponse {
	if txns == nil {
		txns = []financial.Transaction{}
	}
	return &TransactionsResponse{Transactions: txns, Count: len(txns)}
}

type BalancesResponse struct {
	Accounts []financial.Account `json:"accounts"`
}

func NewBalancesResponse(accounts []financial.Account) *BalancesResponse {
	if accounts == nil {
		accounts = []financial.Account{}
	}
	return &BalancesResponse{Accounts: accounts}
}

type LiabilitiesResponse struct {
	Liabilities []financial.Liability `json:"liabilities"`
}

func NewLiabilitiesResponse(liabilities []financial.Liability) *LiabilitiesResponse {
	if liabilities == nil {
		liabilities = []financial.Liability{}
	}
	return &LiabilitiesResponse{Liabilities: liabilities}
}

type LinkTokenResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

// ItemResponse describes a linked item. The access token is never returned.
type ItemResponse struct {
	ItemID        string    `json:"item_id"`
	InstitutionID string    `json:"institution_id,omitempty"`
	LinkedAt      time.Time `json:"linked_at"`
}

func NewItemResponse(item *financial.Item) *ItemResponse {
	return &ItemResponse{
		ItemID:        item.ItemID,
		InstitutionID: item.InstitutionID,
		LinkedAt:      item.CreatedAt,
	}
}

type SyncResponse struct {
	Items []financial.SyncResult `json:"items"`
}
