// Package ports defines the collaborators the scoring service depends on.
// Adapters for documents, financial data, storage, events and summaries live
// in their own modules and are wired in main.
package ports

import (
	"context"
	"time"

	"github.com/aadya-khanna/OpenScore/internal/scoring"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// DocumentSource supplies the extracted text of a user's statement, pages in
// order and newline-joined. Returns a *scoring.MissingDocumentError when the
// document is absent or unreadable.
type DocumentSource interface {
	Text(ctx context.Context, userID string, kind scoring.DocumentKind) (string, error)
}

// FinancialData supplies stored aggregation-provider records for a user.
type FinancialData interface {
	Transactions(ctx context.Context, userID string) ([]scoring.Transaction, error)
	Accounts(ctx context.Context, userID string) ([]scoring.Account, error)
	// Investments returns nil when the user has no investment data.
	Investments(ctx context.Context, userID string) (*scoring.Investments, error)
}

// SummaryInput is what a summarizer sees of a computed score.
type SummaryInput struct {
	Breakdown scoring.CreditScoreBreakdown
	Documents scoring.DocumentComponentScores
	Income    scoring.IncomeMetrics
	Balance   scoring.BalanceMetrics
}

// Summarizer turns a score into a short natural-language explanation.
type Summarizer interface {
	Summarize(ctx context.Context, in SummaryInput) (string, error)
	Model() string
}

// ScoreRecord is one persisted score computation.
type ScoreRecord struct {
	ID          string
	UserID      string
	CreditScore int
	Breakdown   scoring.CreditScoreBreakdown
	ComputedAt  time.Time
}

// ScoreStore persists score history.
type ScoreStore interface {
	Save(ctx context.Context, record ScoreRecord) error
	// ListByUser returns the newest records first, at most limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]ScoreRecord, error)
}

// ScoreEvent is emitted after a score has been computed.
type ScoreEvent struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	UserID           string    `json:"user_id"`
	RequestID        string    `json:"request_id,omitempty"`
	CreditScore      int       `json:"credit_score"`
	NeutralFallbacks []string  `json:"neutral_fallbacks,omitempty"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// EventScoreCalculated is the type of events published by Calculate.
const EventScoreCalculated = "score_calculated"

// EventPublisher delivers score events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, event ScoreEvent) error
}
