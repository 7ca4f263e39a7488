package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Fixed-width so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store for SQLite databases.
type SQLiteStore struct {
	db            *sql.DB
	retentionDays int
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// NewSQLiteStore creates the txs table if needed and starts the retention
// loop when retentionDays > 0.
func NewSQLiteStore(db *sql.DB, retentionDays int) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS txs (
			id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			request_id TEXT,
			contract TEXT NOT NULL,
			signer TEXT,
			sender TEXT,
			msg TEXT,
			txhash TEXT,
			height INTEGER DEFAULT 0,
			code INTEGER DEFAULT 0,
			codespace TEXT,
			gas_used INTEGER DEFAULT 0,
			error_type TEXT,
			error TEXT
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create txs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_txs_timestamp ON txs(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_txs_signer ON txs(signer)",
		"CREATE INDEX IF NOT EXISTS idx_txs_txhash ON txs(txhash)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	store := &SQLiteStore{
		db:            db,
		retentionDays: retentionDays,
		stopCleanup:   make(chan struct{}),
	}
	if retentionDays > 0 {
		go runCleanupLoop(store.stopCleanup, store.cleanup)
	}
	return store, nil
}

// Write inserts e. Re-writing an existing id is ignored.
func (s *SQLiteStore) Write(ctx context.Context, e *Entry) error {
	var msg interface{}
	if len(e.Msg) > 0 {
		msg = string(e.Msg)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO txs (id, timestamp, request_id, contract, signer, sender, msg,
			txhash, height, code, codespace, gas_used, error_type, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.Timestamp.UTC().Format(sqliteTimeLayout),
		e.RequestID,
		e.Contract,
		e.Signer,
		e.Sender,
		msg,
		e.TxHash,
		e.Height,
		e.Code,
		e.Codespace,
		e.GasUsed,
		e.ErrorType,
		e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *SQLiteStore) List(ctx context.Context, f Filter) ([]*Entry, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Signer != "" {
		where = append(where, "signer = ?")
		args = append(args, f.Signer)
	}

	query := `SELECT id, timestamp, request_id, contract, signer, sender, msg,
		txhash, height, code, codespace, gas_used, error_type, error FROM txs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, rowid DESC LIMIT ?"
	args = append(args, f.limit())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var (
			e  Entry
			ts string

			requestID, signer, sender, msg sql.NullString
			txhash, codespace              sql.NullString
			errorType, errMsg              sql.NullString
		)
		if err := rows.Scan(&e.ID, &ts, &requestID, &e.Contract, &signer, &sender, &msg,
			&txhash, &e.Height, &e.Code, &codespace, &e.GasUsed, &errorType, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Timestamp, err = time.Parse(sqliteTimeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("invalid journal timestamp %q: %w", ts, err)
		}
		e.RequestID = requestID.String
		e.Signer = signer.String
		e.Sender = sender.String
		if msg.Valid {
			e.Msg = []byte(msg.String)
		}
		e.TxHash = txhash.String
		e.Codespace = codespace.String
		e.ErrorType = errorType.String
		e.Error = errMsg.String
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}

// Close stops the cleanup goroutine. The connection belongs to the storage
// layer. Safe to call multiple times.
func (s *SQLiteStore) Close() error {
	if s.retentionDays > 0 && s.stopCleanup != nil {
		s.closeOnce.Do(func() {
			close(s.stopCleanup)
		})
	}
	return nil
}

func (s *SQLiteStore) cleanup() {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays).UTC().Format(sqliteTimeLayout)

	result, err := s.db.Exec("DELETE FROM txs WHERE timestamp < ?", cutoff)
	if err != nil {
		slog.Error("failed to cleanup old journal entries", "error", err)
		return
	}
	if rowsAffected, err := result.RowsAffected(); err == nil && rowsAffected > 0 {
		slog.Info("cleaned up old journal entries", "deleted", rowsAffected)
	}
}
