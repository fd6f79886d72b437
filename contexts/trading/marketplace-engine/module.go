package marketplaceengine

import (
	"log/slog"

	httpadapter "mystic/contexts/trading/marketplace-engine/adapters/http"
	"mystic/contexts/trading/marketplace-engine/adapters/memory"
	"mystic/contexts/trading/marketplace-engine/application"
	"mystic/contexts/trading/marketplace-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service *application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Registry   ports.AssetRegistry
	Ledger     ports.TokenLedger
	Access     ports.AccessControl
	Outbox     ports.Outbox
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
	Engine     string
}

func NewModule(deps Dependencies) Module {
	service := &application.Service{
		Repo:     deps.Repository,
		Registry: deps.Registry,
		Ledger:   deps.Ledger,
		Access:   deps.Access,
		Outbox:   deps.Outbox,
		IDGen:    deps.IDGen,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
		Engine:   deps.Engine,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

type InMemoryConfig struct {
	Registry  ports.AssetRegistry
	Ledger    ports.TokenLedger
	Access    ports.AccessControl
	Engine    string
	FeeRate   int64
	FeeHolder string
	Logger    *slog.Logger
}

func NewInMemoryModule(cfg InMemoryConfig) Module {
	store := memory.NewStore(cfg.FeeRate, cfg.FeeHolder)
	module := NewModule(Dependencies{
		Repository: store,
		Registry:   cfg.Registry,
		Ledger:     cfg.Ledger,
		Access:     cfg.Access,
		Outbox:     store,
		IDGen:      store,
		Clock:      store,
		Logger:     cfg.Logger,
		Engine:     cfg.Engine,
	})
	module.Store = store
	return module
}
