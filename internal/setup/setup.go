package setup

import (
	"github.com/threadview-dev/threadview/internal/config"
	"github.com/threadview-dev/threadview/internal/handler"
	"github.com/threadview-dev/threadview/internal/identity"
	"github.com/threadview-dev/threadview/internal/middleware"
	"github.com/threadview-dev/threadview/internal/notify"
	"github.com/threadview-dev/threadview/internal/persistence"
	"github.com/threadview-dev/threadview/internal/persistence/memory"
	"github.com/threadview-dev/threadview/internal/persistence/pg"
	"github.com/threadview-dev/threadview/internal/persistence/rest"
	"github.com/threadview-dev/threadview/internal/viewmark"
)

// Dependencies holds all initialized collaborators.
type Dependencies struct {
	Handler *handler.Handler
	Auth    *middleware.Auth
	Marks   *viewmark.Store
	cleanup func() error
}

// SetupDependencies wires persistence (hosted table API when configured,
// postgres otherwise, in-memory as the dev fallback), the durable view
// markers, identity and the handler.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	var (
		p       *persistence.Persistence
		cleanup = func() error { return nil }
	)
	switch {
	case cfg.Public.TableAPI != "":
		p = rest.NewPersistence(rest.New(cfg.Public.TableAPI, cfg.TableAPIKey()))
	case cfg.Public.Pg.Host != "":
		storage, err := pg.New(cfg)
		if err != nil {
			return nil, err
		}
		if err := storage.EnsureSchema(); err != nil {
			storage.Cleanup()
			return nil, err
		}
		p = storage.Persistence()
		cleanup = storage.Cleanup
	default:
		p = memory.New().Persistence()
	}

	marks, err := viewmark.Open(cfg.Public.ViewMarkPath)
	if err != nil {
		cleanup()
		return nil, err
	}

	h := handler.New(p, marks, notify.Log{}, cfg.Public.MaxPostLen)
	auth := middleware.NewAuth(identity.New(cfg.JwtKey()))

	return &Dependencies{
		Handler: h,
		Auth:    auth,
		Marks:   marks,
		cleanup: cleanup,
	}, nil
}

func (d *Dependencies) Cleanup() {
	d.Marks.Close()
	d.cleanup()
}
