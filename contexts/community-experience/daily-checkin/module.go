package dailycheckin

import (
	"log/slog"

	httpadapter "mystic/contexts/community-experience/daily-checkin/adapters/http"
	"mystic/contexts/community-experience/daily-checkin/adapters/memory"
	"mystic/contexts/community-experience/daily-checkin/application"
	"mystic/contexts/community-experience/daily-checkin/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:   deps.Repository,
		Clock:  deps.Clock,
		Logger: deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Service: service,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{Repository: store, Clock: store, Logger: logger})
	module.Store = store
	return module
}
