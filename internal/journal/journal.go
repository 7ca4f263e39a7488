// Package journal records every executed contract call, successful or not,
// so operators can see which identity sent what and with which outcome.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"clicker/internal/core"
	"clicker/internal/storage"
)

const (
	// DefaultListLimit applies when Filter.Limit is zero.
	DefaultListLimit = 50
	// MaxListLimit caps Filter.Limit.
	MaxListLimit = 500

	// CleanupInterval is how often expired entries are purged.
	CleanupInterval = 1 * time.Hour
)

// Entry is one Execute call.
type Entry struct {
	ID        string          `json:"id" bson:"_id"`
	Timestamp time.Time       `json:"timestamp" bson:"timestamp"`
	RequestID string          `json:"request_id,omitempty" bson:"request_id,omitempty"`
	Contract  string          `json:"contract" bson:"contract"`
	Signer    string          `json:"signer" bson:"signer"`
	Sender    string          `json:"sender" bson:"sender"`
	Msg       json.RawMessage `json:"msg" bson:"msg"`

	TxHash    string `json:"txhash,omitempty" bson:"txhash,omitempty"`
	Height    int64  `json:"height" bson:"height"`
	Code      uint32 `json:"code" bson:"code"`
	Codespace string `json:"codespace,omitempty" bson:"codespace,omitempty"`
	GasUsed   int64  `json:"gas_used" bson:"gas_used"`

	ErrorType string `json:"error_type,omitempty" bson:"error_type,omitempty"`
	Error     string `json:"error,omitempty" bson:"error,omitempty"`
}

// Filter narrows List results.
type Filter struct {
	Signer string
	Limit  int
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultListLimit
	case f.Limit > MaxListLimit:
		return MaxListLimit
	default:
		return f.Limit
	}
}

// Store persists entries. Implementations must be safe for concurrent use.
type Store interface {
	Write(ctx context.Context, e *Entry) error
	// List returns the newest entries first.
	List(ctx context.Context, f Filter) ([]*Entry, error)
	Close() error
}

// Result holds the opened store and the connection behind it.
// The caller is responsible for calling Close() to release resources.
type Result struct {
	Store   Store
	Storage storage.Storage
}

// Close releases the store and its connection.
func (r *Result) Close() error {
	var errs []error
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("journal close: %w", err))
		}
	}
	if r.Storage != nil {
		if err := r.Storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage close: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %w", errors.Join(errs...))
	}
	return nil
}

// Open connects to cfg and prepares the journal schema. retentionDays > 0
// purges older entries.
func Open(ctx context.Context, cfg storage.Config, retentionDays int) (*Result, error) {
	conn, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	store, err := newStore(ctx, conn, retentionDays)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	return &Result{Store: store, Storage: conn}, nil
}

func newStore(ctx context.Context, conn storage.Storage, retentionDays int) (Store, error) {
	switch conn.Type() {
	case storage.TypeSQLite:
		return NewSQLiteStore(conn.SQLiteDB(), retentionDays)
	case storage.TypePostgreSQL:
		return NewPostgreSQLStore(ctx, conn.PostgreSQLPool(), retentionDays)
	case storage.TypeMongoDB:
		return NewMongoDBStore(ctx, conn.MongoDatabase(), retentionDays)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", conn.Type())
	}
}

// Client records every Execute passing through it. Journal write failures
// are logged and never change the call's outcome.
type Client struct {
	inner core.Client
	store Store
}

var _ core.Client = (*Client)(nil)

// Wrap decorates inner with store.
func Wrap(inner core.Client, store Store) *Client {
	return &Client{inner: inner, store: store}
}

// Query is not journaled.
func (c *Client) Query(ctx context.Context, contract string, msg any) (json.RawMessage, error) {
	return c.inner.Query(ctx, contract, msg)
}

// Execute forwards to the wrapped client and records the outcome.
func (c *Client) Execute(ctx context.Context, signer core.Signer, contract string, msg any) (*core.TxResult, error) {
	result, err := c.inner.Execute(ctx, signer, contract, msg)

	entry := newEntry(ctx, signer, contract, msg, result, err)
	if writeErr := c.store.Write(context.WithoutCancel(ctx), entry); writeErr != nil {
		slog.Warn("failed to journal execute", "error", writeErr, "txhash", entry.TxHash)
	}

	return result, err
}

func newEntry(ctx context.Context, signer core.Signer, contract string, msg any, result *core.TxResult, err error) *Entry {
	e := &Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		RequestID: core.GetRequestID(ctx),
		Contract:  contract,
	}
	if signer != nil {
		e.Signer = signer.Name()
		e.Sender = signer.Address()
	}
	if raw, marshalErr := json.Marshal(msg); marshalErr == nil {
		e.Msg = raw
	}
	if result != nil {
		e.TxHash = result.TxHash
		e.Height = result.Height
		e.Code = result.Code
		e.Codespace = result.Codespace
		e.GasUsed = result.GasUsed
	}
	if err != nil {
		e.Error = err.Error()
		var chainErr *core.ChainError
		if errors.As(err, &chainErr) {
			e.ErrorType = string(chainErr.Type)
			if e.TxHash == "" {
				e.TxHash = chainErr.TxHash
			}
			if e.Code == 0 {
				e.Code = chainErr.Code
				e.Codespace = chainErr.Codespace
			}
		}
	}
	return e
}

// runCleanupLoop runs cleanupFn now and then every CleanupInterval until
// stop is closed.
func runCleanupLoop(stop <-chan struct{}, cleanupFn func()) {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	cleanupFn()

	for {
		select {
		case <-ticker.C:
			cleanupFn()
		case <-stop:
			return
		}
	}
}
