package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/config"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/database"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/handler"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/money"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/repository"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/service"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/transfer"
	"github.com/ryanwdavies/final-project-ThamesBoats/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the marketplace HTTP API",
	RunE:  runServe,
}

var (
	ownerFlag string
	portFlag  int
)

func init() {
	serveCmd.Flags().StringVar(&ownerFlag, "owner", "", "override market.owner")
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 0, "override server.port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(func(c *config.Config) {
		if ownerFlag != "" {
			c.Market.Owner = ownerFlag
		}
		if portFlag != 0 {
			c.Server.Port = portFlag
		}
	}, (*config.Config).Validate)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log)
	logger.Info("starting thamesboats", "version", version.String())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Open the store ────────────────────────────────────────────────
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	owner := model.NormalizeAccount(cfg.Market.Owner)
	if err := store.Bootstrap(ctx, owner); err != nil {
		return fmt.Errorf("bootstrap market: %w", err)
	}
	logger.Info("market ready", "owner", owner, "store", cfg.Store.Driver)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	market := service.New(store, newSender(cfg.Transfer, logger),
		service.WithLogger(logger),
		service.WithSuspendPolicy(service.SuspendPolicy(cfg.Market.Suspend)),
	)
	units := money.NewUnits(cfg.Market.Decimals())
	logger.Info("currency units",
		"decimals", units.Decimals(),
		"max_amount", units.Ceiling().String(),
	)
	h := handler.New(market, units, logger)

	// ── 3. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.NewRouter(h, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openStore returns the configured store. The postgres schema is migrated
// before use.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	if cfg.Store.Driver != config.StorePostgres {
		return repository.NewMemoryStore(), nil
	}

	logger.Info("connecting to database",
		"host", cfg.Database.Host,
		"port", cfg.Database.Port,
		"database", cfg.Database.Name,
	)
	pool, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	from, err := database.Migrate(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if from != database.SchemaVersion {
		logger.Info("schema migrated", "from", from, "to", database.SchemaVersion)
	}
	return repository.NewPostgresStore(pool), nil
}

func newSender(cfg config.TransferConfig, logger *slog.Logger) service.Sender {
	if cfg.Driver == config.TransferHTTP {
		logger.Info("using payout provider", "url", cfg.URL)
		return transfer.NewHTTPSender(cfg.URL, cfg.APIKey,
			transfer.WithLogger(logger),
			transfer.WithTimeout(cfg.Timeout),
		)
	}
	logger.Warn("using in-process transfer ledger, no funds leave the market")
	return transfer.NewLedger(logger)
}
