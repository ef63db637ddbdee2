package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aadya-khanna/OpenScore/internal/scoring"
	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
	txcontext "github.com/aadya-khanna/OpenScore/pkg/platform/tx"
)

// PostgresStore persists score history in the score_history table. The
// breakdown is kept as JSONB.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a PostgreSQL score store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Save inserts one record. Saving the same ID twice is a no-op.
func (s *PostgresStore) Save(ctx context.Context, record ports.ScoreRecord) error {
	breakdown, err := json.Marshal(record.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	query := `
		INSERT INTO score_history (id, user_id, credit_score, breakdown, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.CreditScore,
		breakdown,
		record.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("insert score record: %w", err)
	}
	return nil
}

// ListByUser returns up to limit records, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]ports.ScoreRecord, error) {
	query := `
		SELECT id, user_id, credit_score, breakdown, computed_at
		FROM score_history
		WHERE user_id = $1
		ORDER BY computed_at DESC
		LIMIT $2
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	var out []ports.ScoreRecord
	for rows.Next() {
		var (
			rec       ports.ScoreRecord
			breakdown []byte
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CreditScore, &breakdown, &rec.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan score record: %w", err)
		}
		var b scoring.CreditScoreBreakdown
		if err := json.Unmarshal(breakdown, &b); err != nil {
			return nil, fmt.Errorf("unmarshal breakdown: %w", err)
		}
		rec.Breakdown = b
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score history: %w", err)
	}
	return out, nil
}
