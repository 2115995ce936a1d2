// Package main is the entry point for the posledger API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"posledger/internal/core/apperror"
	"posledger/internal/core/sequence"
	"posledger/internal/core/tx"
	"posledger/internal/domain/closing"
	"posledger/internal/domain/item"
	"posledger/internal/domain/movement"
	"posledger/internal/domain/reconciliation"
	"posledger/internal/domain/returns"
	"posledger/internal/domain/sales"
	"posledger/internal/domain/wallet"
	v1 "posledger/internal/infrastructure/http/v1"
	"posledger/internal/infrastructure/metrics"
	"posledger/internal/infrastructure/storage/memory"
	"posledger/internal/infrastructure/storage/postgres"
	"posledger/pkg/logger"
)

// backend bundles the storage-specific pieces so the rest of main does
// not care which store is running underneath.
type backend struct {
	pool      *pgxpool.Pool
	txManager tx.Manager

	items     item.Repository
	movements movement.Repository
	returnRep returns.Repository
	wallets   wallet.Repository
	salesRep  sales.Repository
	recon     reconciliation.Repository
	seq       sequence.Generator

	close func()
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	metrics.Init()

	storageKind := getEnv("STORAGE", "postgres")
	log.Infow("starting posledger server", "storage", storageKind)

	var be *backend
	switch storageKind {
	case "postgres":
		be, err = newPostgresBackend(ctx)
	case "memory":
		be = newMemoryBackend()
	default:
		log.Fatalw("unknown STORAGE value", "storage", storageKind)
	}
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	defer be.close()

	if be.pool != nil {
		go logPoolStats(ctx, be.pool)
	}

	if err := seedWalletAccounts(ctx, be.txManager, be.wallets); err != nil {
		log.Fatalw("failed to seed wallet accounts", "error", err)
	}

	itemService := item.NewService(be.items, be.txManager)
	movementService := movement.NewService(be.items, be.movements, be.seq, be.txManager)
	returnService := returns.NewService(be.returnRep, be.items, be.wallets, be.salesRep, be.seq, be.txManager)
	reconService := reconciliation.NewService(be.recon, be.movements, be.salesRep, be.txManager)
	closingService := closing.NewService(be.items, be.txManager, getEnvInt("CLOSE_BATCH_SIZE", 0))

	router := v1.NewRouter(v1.RouterConfig{
		Logger:                log,
		Pool:                  be.pool,
		TxManager:             be.txManager,
		ItemService:           itemService,
		MovementService:       movementService,
		ReturnService:         returnService,
		ReconciliationService: reconService,
		ClosingService:        closingService,
		WalletRepo:            be.wallets,
		SalesRepo:             be.salesRep,
	})

	addr := ":" + getEnv("PORT", "8080")
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("http server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}

	log.Info("server stopped")
}

func newPostgresBackend(ctx context.Context) (*backend, error) {
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		return nil, err
	}

	txm := postgres.NewTxManager(pool)
	return &backend{
		pool:      pool.Unwrap(),
		txManager: txm,
		items:     postgres.NewItemRepo(txm),
		movements: postgres.NewMovementRepo(txm),
		returnRep: postgres.NewReturnRepo(txm),
		wallets:   postgres.NewWalletRepo(txm),
		salesRep:  postgres.NewSalesRepo(txm),
		recon:     postgres.NewReconciliationRepo(txm),
		seq:       postgres.NewSequenceGenerator(txm),
		close:     pool.Close,
	}, nil
}

func newMemoryBackend() *backend {
	store := memory.NewStore()
	return &backend{
		txManager: store,
		items:     memory.NewItemRepo(store),
		movements: memory.NewMovementRepo(store),
		returnRep: memory.NewReturnRepo(store),
		wallets:   memory.NewWalletRepo(store),
		salesRep:  memory.NewSalesRepo(store),
		recon:     memory.NewReconciliationRepo(store),
		seq:       memory.NewSequenceGenerator(store),
		close:     func() {},
	}
}

// logPoolStats periodically reports connection pool health.
func logPoolStats(ctx context.Context, pool *pgxpool.Pool) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			postgres.LogPoolStats(ctx, pool)
		}
	}
}

// seedWalletAccounts makes sure every payment method has an account, so
// refunds never fail on a missing wallet.
func seedWalletAccounts(ctx context.Context, txm tx.Manager, wallets wallet.Repository) error {
	methods := []wallet.Method{wallet.MethodCash, wallet.MethodCard, wallet.MethodOnline}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, m := range methods {
			_, err := wallets.GetByMethod(ctx, m)
			if err == nil {
				continue
			}
			if !apperror.IsNotFound(err) {
				return err
			}
			if err := wallets.Create(ctx, wallet.NewAccount(m, decimal.Zero)); err != nil {
				return err
			}
		}
		return nil
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
