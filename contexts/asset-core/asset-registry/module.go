package assetregistry

import (
	"log/slog"

	httpadapter "mystic/contexts/asset-core/asset-registry/adapters/http"
	"mystic/contexts/asset-core/asset-registry/adapters/memory"
	"mystic/contexts/asset-core/asset-registry/application"
	"mystic/contexts/asset-core/asset-registry/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service *application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Access     ports.AccessControl
	Events     ports.EventPublisher
	IDGen      ports.IDGenerator
	Clock      ports.Clock
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := &application.Service{
		Repo:   deps.Repository,
		Access: deps.Access,
		Events: deps.Events,
		IDGen:  deps.IDGen,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

func NewInMemoryModule(access ports.AccessControl, baseURI string, logger *slog.Logger) Module {
	store := memory.NewStore(baseURI)
	module := NewModule(Dependencies{
		Repository: store,
		Access:     access,
		IDGen:      store,
		Clock:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
