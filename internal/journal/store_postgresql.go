package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQLStore implements Store for PostgreSQL databases.
type PostgreSQLStore struct {
	pool          *pgxpool.Pool
	retentionDays int
	stopCleanup   chan struct{}
	closeOnce     sync.Once
}

// NewPostgreSQLStore creates the clicker_txs table if needed and starts the
// retention loop when retentionDays > 0.
func NewPostgreSQLStore(ctx context.Context, pool *pgxpool.Pool, retentionDays int) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS clicker_txs (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			request_id TEXT,
			contract TEXT NOT NULL,
			signer TEXT,
			sender TEXT,
			msg JSONB,
			txhash TEXT,
			height BIGINT DEFAULT 0,
			code BIGINT DEFAULT 0,
			codespace TEXT,
			gas_used BIGINT DEFAULT 0,
			error_type TEXT,
			error TEXT
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create clicker_txs table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_clicker_txs_timestamp ON clicker_txs(timestamp)",
		"CREATE INDEX IF NOT EXISTS idx_clicker_txs_signer ON clicker_txs(signer)",
		"CREATE INDEX IF NOT EXISTS idx_clicker_txs_txhash ON clicker_txs(txhash)",
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	store := &PostgreSQLStore{
		pool:          pool,
		retentionDays: retentionDays,
		stopCleanup:   make(chan struct{}),
	}
	if retentionDays > 0 {
		go runCleanupLoop(store.stopCleanup, store.cleanup)
	}
	return store, nil
}

// Write inserts e. Re-writing an existing id is ignored.
func (s *PostgreSQLStore) Write(ctx context.Context, e *Entry) error {
	var msg any
	if len(e.Msg) > 0 {
		msg = string(e.Msg)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO clicker_txs (id, timestamp, request_id, contract, signer, sender, msg,
			txhash, height, code, codespace, gas_used, error_type, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, e.Timestamp, e.RequestID, e.Contract, e.Signer, e.Sender, msg,
		e.TxHash, e.Height, int64(e.Code), e.Codespace, e.GasUsed, e.ErrorType, e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *PostgreSQLStore) List(ctx context.Context, f Filter) ([]*Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, timestamp, COALESCE(request_id, ''), contract, COALESCE(signer, ''),
			COALESCE(sender, ''), msg, COALESCE(txhash, ''), height, code, COALESCE(codespace, ''),
			gas_used, COALESCE(error_type, ''), COALESCE(error, '')
		FROM clicker_txs
		WHERE ($1::text = '' OR signer = $1)
		ORDER BY timestamp DESC
		LIMIT $2`, f.Signer, f.limit())
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		var (
			e    Entry
			msg  []byte
			code int64
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.RequestID, &e.Contract, &e.Signer, &e.Sender, &msg,
			&e.TxHash, &e.Height, &code, &e.Codespace, &e.GasUsed, &e.ErrorType, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		e.Msg = msg
		e.Code = uint32(code)
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return entries, nil
}

// Close stops the cleanup goroutine. The pool belongs to the storage layer.
func (s *PostgreSQLStore) Close() error {
	if s.retentionDays > 0 && s.stopCleanup != nil {
		s.closeOnce.Do(func() {
			close(s.stopCleanup)
		})
	}
	return nil
}

func (s *PostgreSQLStore) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	tag, err := s.pool.Exec(ctx, "DELETE FROM clicker_txs WHERE timestamp < $1", cutoff)
	if err != nil {
		slog.Error("failed to cleanup old journal entries", "error", err)
		return
	}
	if n := tag.RowsAffected(); n > 0 {
		slog.Info("cleaned up old journal entries", "deleted", n)
	}
}
