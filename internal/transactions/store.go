package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"agent-orchestrator/internal/common/logger"
)

const createTableStmt = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	description TEXT NOT NULL,
	amount DOUBLE PRECISION NOT NULL,
	category TEXT NOT NULL,
	merchant TEXT NOT NULL DEFAULT '',
	method TEXT NOT NULL DEFAULT 'card',
	currency TEXT NOT NULL DEFAULT 'CAD',
	running_balance DOUBLE PRECISION NOT NULL DEFAULT 0
)`

const createIndexStmt = `
CREATE INDEX IF NOT EXISTS idx_transactions_user_date
ON transactions (user_id, occurred_at DESC)`

// Store persists ledger entries in Postgres.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// EnsureSchema creates the transactions table and its user/date index.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableStmt); err != nil {
		return fmt.Errorf("create transactions table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createIndexStmt); err != nil {
		return fmt.Errorf("create transactions index: %w", err)
	}
	return nil
}

// InsertBatch writes a batch of transactions inside a single transaction.
func (s *Store) InsertBatch(ctx context.Context, records []Transaction) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions
			(id, user_id, occurred_at, description, amount, category, merchant, method, currency, running_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.ID, r.UserID, r.Date, r.Description,
			r.Amount, r.Category, r.Merchant, r.Method, r.Currency, r.RunningBalance); err != nil {
			return fmt.Errorf("insert transaction %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert batch: %w", err)
	}

	s.logger.Info("Inserted transaction batch", map[string]interface{}{
		"count":  len(records),
		"userId": records[0].UserID,
	})
	return nil
}

// Recent returns the user's transactions from the last `days` days, newest
// first.
func (s *Store) Recent(ctx context.Context, userID string, days int) ([]Transaction, error) {
	since := time.Now().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, occurred_at, description, amount, category, merchant, method, currency, running_balance
		FROM transactions
		WHERE user_id = $1 AND occurred_at >= $2
		ORDER BY occurred_at DESC`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("query recent transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Description, &t.Amount,
			&t.Category, &t.Merchant, &t.Method, &t.Currency, &t.RunningBalance); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// List returns up to limit of the user's transactions, newest first.
func (s *Store) List(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, occurred_at, description, amount, category, merchant, method, currency, running_balance
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Description, &t.Amount,
			&t.Category, &t.Merchant, &t.Method, &t.Currency, &t.RunningBalance); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteForUser removes all of a user's transactions, returning the count.
func (s *Store) DeleteForUser(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	return res.RowsAffected()
}
