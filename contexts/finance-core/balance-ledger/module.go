package balanceledger

import (
	"log/slog"

	"mystic/contexts/finance-core/balance-ledger/adapters/memory"
	"mystic/contexts/finance-core/balance-ledger/application"
	"mystic/contexts/finance-core/balance-ledger/ports"
)

type Module struct {
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Service: application.Service{
			Repo:   deps.Repository,
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{Repository: store, Logger: logger})
	module.Store = store
	return module
}
