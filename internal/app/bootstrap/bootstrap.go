package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	assetregistry "mystic/contexts/asset-core/asset-registry"
	registrypostgres "mystic/contexts/asset-core/asset-registry/adapters/postgres"
	dailycheckin "mystic/contexts/community-experience/daily-checkin"
	checkinpostgres "mystic/contexts/community-experience/daily-checkin/adapters/postgres"
	balanceledger "mystic/contexts/finance-core/balance-ledger"
	balancepostgres "mystic/contexts/finance-core/balance-ledger/adapters/postgres"
	paymentledger "mystic/contexts/finance-core/payment-ledger"
	paymentpostgres "mystic/contexts/finance-core/payment-ledger/adapters/postgres"
	accesscontrol "mystic/contexts/identity-access/access-control"
	accesspostgres "mystic/contexts/identity-access/access-control/adapters/postgres"
	roleentities "mystic/contexts/identity-access/access-control/domain/entities"
	marketplaceengine "mystic/contexts/trading/marketplace-engine"
	marketpostgres "mystic/contexts/trading/marketplace-engine/adapters/postgres"
	marketapp "mystic/contexts/trading/marketplace-engine/application"
	"mystic/internal/platform/config"
	"mystic/internal/platform/db"
	"mystic/internal/platform/httpserver"
	"mystic/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const orderEventsTopic = "marketplace.orders"

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	relay    marketapp.Relay
	enabled  bool
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)

	accessModule := accesscontrol.NewModule(accesscontrol.Dependencies{
		Repository: accesspostgres.NewRepository(pg.DB, logger),
		Clock:      accesspostgres.SystemClock{},
		Logger:     logger,
	})

	balanceModule := balanceledger.NewModule(balanceledger.Dependencies{
		Repository: balancepostgres.NewRepository(pg.DB, logger),
		Logger:     logger,
	})

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	registryModule := assetregistry.NewModule(assetregistry.Dependencies{
		Repository: registryRepo,
		Access:     accessModule.Service,
		Events:     messaging.TopicPublisher{Bus: bus, Topic: "asset.lifecycle"},
		IDGen:      registrypostgres.UUIDGenerator{},
		Clock:      registrypostgres.SystemClock{},
		Logger:     logger,
	})

	paymentModule := paymentledger.NewModule(paymentledger.Dependencies{
		Ledger:  balanceModule.Service,
		Nonces:  paymentpostgres.NewRepository(pg.DB, logger),
		Access:  accessModule.Service,
		Events:  messaging.TopicPublisher{Bus: bus, Topic: "payment.lifecycle"},
		IDGen:   paymentpostgres.UUIDGenerator{},
		Clock:   paymentpostgres.SystemClock{},
		Logger:  logger,
		Custody: cfg.CustodyAccount,
	})

	marketRepo := marketpostgres.NewRepository(pg.DB, logger)
	marketModule := marketplaceengine.NewModule(marketplaceengine.Dependencies{
		Repository: marketRepo,
		Registry:   registryModule.Service,
		Ledger:     balanceModule.Service,
		Access:     accessModule.Service,
		Outbox:     marketpostgres.NewOutbox(pg.DB),
		IDGen:      marketpostgres.UUIDGenerator{},
		Clock:      marketpostgres.SystemClock{},
		Logger:     logger,
		Engine:     cfg.EngineAccount,
	})

	checkinModule := dailycheckin.NewModule(dailycheckin.Dependencies{
		Repository: checkinpostgres.NewRepository(pg.DB, logger),
		Clock:      checkinpostgres.SystemClock{},
		Logger:     logger,
	})

	if err := seed(cfg, accessModule, registryRepo, marketRepo); err != nil {
		_ = pg.Close()
		return nil, err
	}

	server := httpserver.New(
		accessModule,
		registryModule,
		paymentModule,
		marketModule,
		checkinModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

// seed installs the operational accounts that every deployment needs before
// the first request: the initial admin grant and the engine account's
// allowlist entry.
func seed(cfg config.Config, access accesscontrol.Module, registryRepo *registrypostgres.Repository, marketRepo *marketpostgres.Repository) error {
	ctx := context.Background()
	if strings.TrimSpace(cfg.AdminAccount) != "" {
		if err := access.Service.Bootstrap(ctx, roleentities.RoleAdmin, cfg.AdminAccount); err != nil {
			return err
		}
	}
	if strings.TrimSpace(cfg.OperatorAccount) != "" {
		if err := access.Service.Bootstrap(ctx, roleentities.RoleOperator, cfg.OperatorAccount); err != nil {
			return err
		}
	}
	if err := registryRepo.SetMarketplaceAllowed(ctx, cfg.EngineAccount, true); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.BaseTokenURI) != "" {
		if err := registryRepo.SetBaseURI(ctx, cfg.BaseTokenURI); err != nil {
			return err
		}
	}
	// Only write fee defaults on first boot; later changes come through the
	// admin endpoints and must survive restarts.
	feeConfig, err := marketRepo.FeeConfig(ctx)
	if err != nil {
		return err
	}
	if feeConfig.FeeRate == 0 && feeConfig.FeeHolder == "" {
		if err := marketRepo.SetFeeRate(ctx, cfg.FeeRate); err != nil {
			return err
		}
		if err := marketRepo.SetFeeHolder(ctx, cfg.FeeHolder); err != nil {
			return err
		}
	}
	return nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	return &WorkerApp{
		postgres: pg,
		relay: marketapp.Relay{
			Outbox:    marketpostgres.NewOutbox(pg.DB),
			Publisher: messaging.TopicPublisher{Bus: bus, Topic: orderEventsTopic},
			Clock:     marketpostgres.SystemClock{},
			Logger:    logger,
			Interval:  2 * time.Second,
		},
		enabled: cfg.EnableOutboxRelay,
		logger:  logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"outbox_relay_enabled", w.enabled,
	)
	if !w.enabled {
		<-ctx.Done()
		return nil
	}
	return w.relay.Run(ctx)
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
