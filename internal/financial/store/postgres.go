package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/aadya-khanna/OpenScore/internal/financial"
	txcontext "github.com/aadya-khanna/OpenScore/pkg/platform/tx"
)

// PostgresStore persists financial records in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a PostgreSQL financial store.
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

func (s *PostgresStore) SaveItem(ctx context.Context, item financial.Item) error {
	query := `
		INSERT INTO plaid_items (item_id, user_id, access_token, institution_id, created_at, updated_at, last_synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (item_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			institution_id = EXCLUDED.institution_id,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		item.ItemID,
		item.UserID,
		item.SealedAccessToken,
		item.InstitutionID,
		item.CreatedAt,
		item.UpdatedAt,
		item.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert plaid item: %w", err)
	}
	return nil
}

const itemColumns = `item_id, user_id, access_token, institution_id, created_at, updated_at, last_synced_at`

func (s *PostgresStore) ListItems(ctx context.Context, userID string) ([]financial.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM plaid_items WHERE user_id = $1 ORDER BY created_at, item_id`, userID)
}

func (s *PostgresStore) ListAllItems(ctx context.Context) ([]financial.Item, error) {
	return s.queryItems(ctx, `SELECT `+itemColumns+` FROM plaid_items ORDER BY created_at, item_id`)
}

func (s *PostgresStore) queryItems(ctx context.Context, query string, args ...any) ([]financial.Item, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query plaid items: %w", err)
	}
	defer rows.Close()

	var out []financial.Item
	for rows.Next() {
		var (
			it       financial.Item
			syncedAt sql.NullTime
		)
		if err := rows.Scan(&it.ItemID, &it.UserID, &it.SealedAccessToken, &it.InstitutionID, &it.CreatedAt, &it.UpdatedAt, &syncedAt); err != nil {
			return nil, fmt.Errorf("scan plaid item: %w", err)
		}
		if syncedAt.Valid {
			t := syncedAt.Time
			it.LastSyncedAt = &t
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plaid items: %w", err)
	}
	return out, nil
}

// SaveSnapshot upserts every record of one sync and marks the item synced,
// in a single transaction.
func (s *PostgresStore) SaveSnapshot(ctx context.Context, item financial.Item, snap financial.Snapshot, syncedAt time.Time) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := s.execer(ctx)

		for _, a := range snap.Accounts {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO accounts (account_id, user_id, item_id, name, type, subtype, available, current, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (account_id) DO UPDATE SET
					name = EXCLUDED.name,
					type = EXCLUDED.type,
					subtype = EXCLUDED.subtype,
					available = EXCLUDED.available,
					current = EXCLUDED.current,
					updated_at = EXCLUDED.updated_at
			`, a.ID, a.UserID, a.ItemID, a.Name, a.Type, a.Subtype, a.Available, a.Current, a.UpdatedAt)
			if err != nil {
				return fmt.Errorf("upsert account %s: %w", a.ID, err)
			}
		}

		for _, t := range snap.Transactions {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO transactions (transaction_id, user_id, account_id, amount, name, merchant_name, category, date, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (transaction_id) DO UPDATE SET
					amount = EXCLUDED.amount,
					name = EXCLUDED.name,
					merchant_name = EXCLUDED.merchant_name,
					category = EXCLUDED.category,
					date = EXCLUDED.date,
					updated_at = EXCLUDED.updated_at
			`, t.ID, t.UserID, t.AccountID, t.Amount, t.Name, t.MerchantName, pq.Array(nonNil(t.Category)), t.Date, t.UpdatedAt)
			if err != nil {
				return fmt.Errorf("upsert transaction %s: %w", t.ID, err)
			}
		}

		for _, h := range snap.Holdings {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO holdings (account_id, security_id, user_id, quantity, institution_value, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (account_id, security_id) DO UPDATE SET
					quantity = EXCLUDED.quantity,
					institution_value = EXCLUDED.institution_value,
					updated_at = EXCLUDED.updated_at
			`, h.AccountID, h.SecurityID, h.UserID, h.Quantity, h.InstitutionValue, h.UpdatedAt)
			if err != nil {
				return fmt.Errorf("upsert holding %s/%s: %w", h.AccountID, h.SecurityID, err)
			}
		}

		for _, l := range snap.Liabilities {
			_, err := exec.ExecContext(ctx, `
				INSERT INTO liabilities (account_id, liability_type, user_id, minimum_payment, is_overdue, raw, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (account_id, liability_type) DO UPDATE SET
					minimum_payment = EXCLUDED.minimum_payment,
					is_overdue = EXCLUDED.is_overdue,
					raw = EXCLUDED.raw,
					updated_at = EXCLUDED.updated_at
			`, l.AccountID, l.Kind, l.UserID, l.MinimumPayment, l.IsOverdue, rawJSON(l.Raw), l.UpdatedAt)
			if err != nil {
				return fmt.Errorf("upsert liability %s/%s: %w", l.AccountID, l.Kind, err)
			}
		}

		_, err := exec.ExecContext(ctx,
			`UPDATE plaid_items SET last_synced_at = $2, updated_at = $2 WHERE item_id = $1`,
			item.ItemID, syncedAt,
		)
		if err != nil {
			return fmt.Errorf("mark item synced: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) ListAccounts(ctx context.Context, userID string) ([]financial.Account, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT account_id, user_id, item_id, name, type, subtype, available, current, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY account_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []financial.Account
	for rows.Next() {
		var (
			a                  financial.Account
			available, current sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.ItemID, &a.Name, &a.Type, &a.Subtype, &available, &current, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Available = nullFloat(available)
		a.Current = nullFloat(current)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

// ListTransactions returns the user's transactions, newest date first. A
// limit of zero or less returns all of them.
func (s *PostgresStore) ListTransactions(ctx context.Context, userID string, limit int) ([]financial.Transaction, error) {
	query := `
		SELECT transaction_id, user_id, account_id, amount, name, merchant_name, category, date, updated_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, transaction_id DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []financial.Transaction
	for rows.Next() {
		var (
			t        financial.Transaction
			category pq.StringArray
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Amount, &t.Name, &t.MerchantName, &category, &t.Date, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if len(category) > 0 {
			t.Category = []string(category)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListHoldings(ctx context.Context, userID string) ([]financial.Holding, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT account_id, security_id, user_id, quantity, institution_value, updated_at
		FROM holdings
		WHERE user_id = $1
		ORDER BY account_id, security_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query holdings: %w", err)
	}
	defer rows.Close()

	var out []financial.Holding
	for rows.Next() {
		var (
			h     financial.Holding
			value sql.NullFloat64
		)
		if err := rows.Scan(&h.AccountID, &h.SecurityID, &h.UserID, &h.Quantity, &value, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan holding: %w", err)
		}
		h.InstitutionValue = nullFloat(value)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holdings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListLiabilities(ctx context.Context, userID string) ([]financial.Liability, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT account_id, liability_type, user_id, minimum_payment, is_overdue, raw, updated_at
		FROM liabilities
		WHERE user_id = $1
		ORDER BY account_id, liability_type
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query liabilities: %w", err)
	}
	defer rows.Close()

	var out []financial.Liability
	for rows.Next() {
		var (
			l       financial.Liability
			payment sql.NullFloat64
			overdue sql.NullBool
			raw     []byte
		)
		if err := rows.Scan(&l.AccountID, &l.Kind, &l.UserID, &payment, &overdue, &raw, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan liability: %w", err)
		}
		l.MinimumPayment = nullFloat(payment)
		if overdue.Valid {
			b := overdue.Bool
			l.IsOverdue = &b
		}
		l.Raw = json.RawMessage(raw)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liabilities: %w", err)
	}
	return out, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// rawJSON is passed as text; lib/pq would send []byte as bytea.
func rawJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
