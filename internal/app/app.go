// Package app provides the main application struct for centralized dependency management.
// It wires together identities, wallets, the refs book, the chain client,
// the contract wrapper and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"clicker/config"
	"clicker/internal/chain"
	"clicker/internal/clicker"
	"clicker/internal/core"
	"clicker/internal/journal"
	"clicker/internal/lcdclient"
	"clicker/internal/observability"
	"clicker/internal/refs"
	"clicker/internal/server"
	"clicker/internal/storage"
	"clicker/internal/wallet"
)

// App represents the main application with all its dependencies.
type App struct {
	config  *config.Config
	wallets core.Wallets
	store   refs.Store
	book    refs.Book
	chain   *chain.Client
	journal *journal.Result
	clicker *clicker.Clicker
	server  *server.Server

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the configuration options for creating an App.
type Config struct {
	AppConfig *config.LoadResult

	// RefsStore replaces the store selected by the refs configuration.
	// The app takes ownership and closes it on Shutdown.
	RefsStore refs.Store
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.AppConfig == nil || cfg.AppConfig.Config == nil {
		return nil, fmt.Errorf("app config is required")
	}
	appCfg := cfg.AppConfig.Config

	app := &App{
		config: appCfg,
	}

	wallets, err := wallet.FromSet(cfg.AppConfig.Identities, wallet.Params{
		Bech32Prefix: appCfg.Network.Bech32Prefix,
		CoinType:     appCfg.Network.CoinType,
	}, appCfg.Wallets.DefaultSigner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wallets: %w", err)
	}
	app.wallets = wallets

	store := cfg.RefsStore
	if store == nil {
		store, err = openRefsStore(ctx, appCfg.Refs)
		if err != nil {
			return nil, fmt.Errorf("failed to open refs store: %w", err)
		}
	}
	app.store = store

	book, err := store.Get(ctx)
	if err != nil {
		closeErr := store.Close()
		return nil, errors.Join(fmt.Errorf("failed to load refs: %w", err), closeErr)
	}
	if book == nil {
		book = refs.Book{}
	}
	app.book = book

	lcdCfg := lcdclient.DefaultConfig(appCfg.Network.Name, appCfg.Network.LCDURL)
	if appCfg.Metrics.Enabled {
		lcdCfg.Hooks = observability.NewPrometheusHooks()
	}

	chainClient, err := chain.New(lcdclient.New(lcdCfg), refs.NewResolver(book, appCfg.Network.Name), chain.Config{
		ChainID:          appCfg.Network.ChainID,
		Bech32Prefix:     appCfg.Network.Bech32Prefix,
		GasPrice:         appCfg.Network.GasPrice,
		GasLimit:         appCfg.Network.GasLimit,
		GasAdjustment:    appCfg.Network.GasAdjustment,
		BroadcastTimeout: appCfg.Network.BroadcastTimeout,
	})
	if err != nil {
		closeErr := store.Close()
		return nil, errors.Join(fmt.Errorf("failed to create chain client: %w", err), closeErr)
	}
	app.chain = chainClient

	bodyLimit, err := config.ParseBodySizeLimit(appCfg.Server.BodySizeLimit)
	if err != nil {
		closeErr := store.Close()
		return nil, errors.Join(fmt.Errorf("invalid body size limit: %w", err), closeErr)
	}

	serverCfg := &server.Config{
		MasterKey:       appCfg.Server.MasterKey,
		MetricsEnabled:  appCfg.Metrics.Enabled,
		MetricsEndpoint: appCfg.Metrics.Endpoint,
		BodySizeLimit:   bodyLimit,
		SwaggerEnabled:  appCfg.Server.SwaggerEnabled,
	}

	var client core.Client = chainClient
	if appCfg.Journal.Enabled {
		journalResult, err := journal.Open(ctx, storageConfig(appCfg.Journal.Storage), appCfg.Journal.RetentionDays)
		if err != nil {
			closeErr := store.Close()
			return nil, errors.Join(fmt.Errorf("failed to open journal: %w", err), closeErr)
		}
		app.journal = journalResult
		client = journal.Wrap(chainClient, journalResult.Store)
		serverCfg.Journal = journalResult.Store
	}

	app.clicker = clicker.New(clicker.Env{
		Wallets: wallets,
		Refs:    book,
		Config:  appCfg,
		Client:  client,
	})

	app.server = server.New(app.clicker, wallets, serverCfg)

	app.logStartupInfo()

	return app, nil
}

func openRefsStore(ctx context.Context, cfg config.RefsConfig) (refs.Store, error) {
	if cfg.RedisURL != "" {
		return refs.NewRedisStore(ctx, refs.RedisConfig{
			URL: cfg.RedisURL,
			Key: cfg.RedisKey,
		})
	}
	return refs.NewLocalStore(cfg.Path), nil
}

func storageConfig(cfg config.StorageConfig) storage.Config {
	return storage.Config{
		Type:             cfg.Type,
		SQLitePath:       cfg.SQLitePath,
		PostgresURL:      cfg.PostgresURL,
		PostgresMaxConns: cfg.PostgresMaxConns,
		MongoURL:         cfg.MongoURL,
		MongoDatabase:    cfg.MongoDatabase,
	}
}

// Clicker returns the contract wrapper.
func (a *App) Clicker() *clicker.Clicker {
	return a.clicker
}

// Wallets returns the derived wallets, including the validator alias.
func (a *App) Wallets() core.Wallets {
	return a.wallets
}

// Book returns the refs book loaded at startup.
func (a *App) Book() refs.Book {
	return a.book
}

// Journal returns the transaction journal, or nil when it is disabled.
func (a *App) Journal() journal.Store {
	if a.journal == nil {
		return nil
	}
	return a.journal.Store
}

// RefsStore returns the store the book was loaded from.
func (a *App) RefsStore() refs.Store {
	return a.store
}

// Network returns the configured network name.
func (a *App) Network() string {
	return a.config.Network.Name
}

// ListenAddr returns the configured HTTP listen address.
func (a *App) ListenAddr() string {
	return ":" + a.config.Server.Port
}

// Handler returns the HTTP handler of the API server.
func (a *App) Handler() http.Handler {
	return a.server
}

// Start starts the HTTP server on the given address.
// This is a blocking call that returns when the server stops.
func (a *App) Start(addr string) error {
	if a.server == nil {
		return fmt.Errorf("server is not initialized")
	}
	slog.Info("starting server", "address", addr)
	if err := a.server.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server, honoring ctx, then closes the journal and
// the refs store.
// Shutdown is idempotent; every step runs and failures are joined.
func (a *App) Shutdown(ctx context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	slog.Info("shutting down application...")

	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
			errs = append(errs, fmt.Errorf("server shutdown: %w", err))
		}
	}

	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			slog.Error("journal close error", "error", err)
			errs = append(errs, fmt.Errorf("journal close: %w", err))
		}
	}

	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Error("refs store close error", "error", err)
			errs = append(errs, fmt.Errorf("refs close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}

	slog.Info("application shutdown complete")
	return nil
}

// logStartupInfo logs the application configuration on startup.
func (a *App) logStartupInfo() {
	cfg := a.config

	slog.Info("network configured",
		"network", cfg.Network.Name,
		"lcd_url", cfg.Network.LCDURL,
		"chain_id", cfg.Network.ChainID,
	)

	if validator := a.wallets.Validator(); validator != nil {
		slog.Info("default signer", "identity", cfg.Wallets.DefaultSigner, "address", validator.Address())
	}

	if addr, ok := a.book.Address(cfg.Network.Name, clicker.ContractName); ok {
		slog.Info("contract resolved", "contract", clicker.ContractName, "address", addr)
	} else {
		slog.Warn("contract has no address on this network", "contract", clicker.ContractName, "network", cfg.Network.Name)
	}

	if cfg.Server.MasterKey == "" {
		slog.Warn("SECURITY WARNING: CLICKER_MASTER_KEY not set - execute endpoints are unauthenticated",
			"security_risk", "anyone reaching the API can sign with the configured wallets",
			"recommendation", "set CLICKER_MASTER_KEY environment variable")
	} else {
		slog.Info("authentication enabled", "mode", "master_key")
	}

	if cfg.Metrics.Enabled {
		slog.Info("prometheus metrics enabled", "endpoint", cfg.Metrics.Endpoint)
	} else {
		slog.Info("prometheus metrics disabled")
	}

	if cfg.Server.SwaggerEnabled {
		slog.Info("swagger UI enabled", "path", "/swagger/index.html")
	}

	if cfg.Journal.Enabled {
		slog.Info("transaction journal enabled",
			"storage_type", cfg.Journal.Storage.Type,
			"retention_days", cfg.Journal.RetentionDays,
		)
	} else {
		slog.Info("transaction journal disabled")
	}
}
