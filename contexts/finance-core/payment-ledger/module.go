package paymentledger

import (
	"log/slog"

	httpadapter "mystic/contexts/finance-core/payment-ledger/adapters/http"
	"mystic/contexts/finance-core/payment-ledger/adapters/memory"
	"mystic/contexts/finance-core/payment-ledger/application"
	"mystic/contexts/finance-core/payment-ledger/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service *application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Ledger  ports.TokenLedger
	Nonces  ports.NonceRepository
	Access  ports.AccessControl
	Events  ports.EventPublisher
	IDGen   ports.IDGenerator
	Clock   ports.Clock
	Logger  *slog.Logger
	Custody string
}

func NewModule(deps Dependencies) Module {
	service := &application.Service{
		Ledger:  deps.Ledger,
		Nonces:  deps.Nonces,
		Access:  deps.Access,
		Events:  deps.Events,
		IDGen:   deps.IDGen,
		Clock:   deps.Clock,
		Logger:  deps.Logger,
		Custody: deps.Custody,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

func NewInMemoryModule(ledger ports.TokenLedger, access ports.AccessControl, custody string, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Ledger:  ledger,
		Nonces:  store,
		Access:  access,
		IDGen:   store,
		Clock:   store,
		Logger:  logger,
		Custody: custody,
	})
	module.Store = store
	return module
}
