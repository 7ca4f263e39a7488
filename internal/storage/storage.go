// Package storage opens the database backing the transaction journal.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Backend names accepted in Config.Type.
const (
	TypeSQLite     = "sqlite"
	TypePostgreSQL = "postgresql"
	TypeMongoDB    = "mongodb"
)

// Config selects and locates a backend.
type Config struct {
	Type string

	SQLitePath string

	PostgresURL      string
	PostgresMaxConns int

	MongoURL      string
	MongoDatabase string
}

// DefaultConfig returns a local SQLite configuration.
func DefaultConfig() Config {
	return Config{
		Type:             TypeSQLite,
		SQLitePath:       "data/clicker.db",
		PostgresMaxConns: 10,
		MongoDatabase:    "clicker",
	}
}

// Storage is one open database connection. Exactly one accessor returns a
// non-nil handle, matching Type.
type Storage interface {
	Type() string

	SQLiteDB() *sql.DB
	PostgreSQLPool() *pgxpool.Pool
	MongoDatabase() *mongo.Database

	Close() error
}

// New connects to the backend named by cfg.Type.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", TypeSQLite:
		return NewSQLite(cfg.SQLitePath)
	case TypePostgreSQL:
		return NewPostgreSQL(ctx, cfg.PostgresURL, cfg.PostgresMaxConns)
	case TypeMongoDB:
		return NewMongoDB(ctx, cfg.MongoURL, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (valid: sqlite, postgresql, mongodb)", cfg.Type)
	}
}

// handles is embedded by each backend so only the live accessor is overridden.
type handles struct{}

func (handles) SQLiteDB() *sql.DB              { return nil }
func (handles) PostgreSQLPool() *pgxpool.Pool  { return nil }
func (handles) MongoDatabase() *mongo.Database { return nil }
