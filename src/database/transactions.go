package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// TxManager runs functions inside transactions with timeouts and retries
type TxManager struct {
	db *sql.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// TxOptions defines options for transaction execution
type TxOptions struct {
	Timeout    time.Duration
	MaxRetries int
}

// DefaultTxOptions returns the options used for quiz history writes
func DefaultTxOptions() *TxOptions {
	return &TxOptions{
		Timeout:    10 * time.Second,
		MaxRetries: 3,
	}
}

// ExecuteInTransaction executes fn within a transaction, rolling back on
// error or panic
func (tm *TxManager) ExecuteInTransaction(ctx context.Context, opts *TxOptions, fn func(*sql.Tx) error) error {
	if opts == nil {
		opts = DefaultTxOptions()
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %v, rollback failed: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithRetry executes a transaction, retrying on SQLite lock conflicts
func (tm *TxManager) WithRetry(ctx context.Context, opts *TxOptions, fn func(*sql.Tx) error) error {
	if opts == nil {
		opts = DefaultTxOptions()
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	baseDelay := 50 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		err := tm.ExecuteInTransaction(ctx, opts, fn)
		if err == nil {
			return nil
		}

		if !isLockError(err) {
			return err
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if i == maxRetries-1 {
			return fmt.Errorf("transaction failed after %d retries: %w", maxRetries, err)
		}

		delay := baseDelay * time.Duration(1<<uint(i))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("transaction retry loop ended unexpectedly")
}

// isLockError checks if an error is a SQLite locking error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked") ||
		strings.Contains(errStr, "database schema is locked") ||
		strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "SQLITE_LOCKED")
}
