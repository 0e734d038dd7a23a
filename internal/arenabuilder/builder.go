package arenabuilder

import (
	"context"
	"fmt"

	"github.com/park285/xo-arena/internal/adapter/arenapresenter"
	"github.com/park285/xo-arena/internal/arena"
	"github.com/park285/xo-arena/internal/config"
	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/internal/guard"
	"github.com/park285/xo-arena/internal/monitor"
	"github.com/park285/xo-arena/internal/msgcat"
	"github.com/park285/xo-arena/internal/obslog"
	"github.com/park285/xo-arena/internal/remote"
	"github.com/park285/xo-arena/internal/render"
	"github.com/park285/xo-arena/internal/store"
	"github.com/park285/xo-arena/pkg/arenadto"
	"go.uber.org/zap"
)

// Deps is the wired object graph of the client.
type Deps struct {
	Config    *config.AppConfig
	Store     store.Store
	Client    *remote.Client
	Guard     *guard.Guard
	Arena     *arena.Arena
	Teardown  *guard.Teardown
	Catalog   *msgcat.Catalog
	Formatter *arenapresenter.Formatter
	Presenter *arenapresenter.Presenter
}

// New opens storage and builds every component. The teardown hook that ends
// the live session is already registered.
func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}

	st, err := store.Open(ctx, cfg.StoreURL)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client := remote.NewClient(cfg.APIURL,
		remote.WithHeaderProvider(remote.DefaultHeaders()),
		remote.WithTimeout(cfg.HTTPTimeout),
		remote.WithRetry(cfg.HTTPRetry),
	)

	g := guard.New(st, client)
	td := guard.NewTeardown()
	g.Register(td)

	renderer := render.NewBoardRenderer(0)
	presenter := arenapresenter.NewPresenter(
		func(v arenadto.GameView) ([]byte, error) { return renderer.RenderPNG(context.Background(), v) },
		render.DirSaver(cfg.SnapshotDir),
	)

	logger.Info("arena_wired",
		zap.String("api_url", cfg.APIURL),
		zap.String("store", store.Scheme(cfg.StoreURL)),
	)

	return &Deps{
		Config:    cfg,
		Store:     st,
		Client:    client,
		Guard:     g,
		Arena:     arena.New(client, g, arena.WithLogger(logger)),
		Teardown:  td,
		Catalog:   cat,
		Formatter: arenapresenter.NewFormatter(cat),
		Presenter: presenter,
	}, nil
}

// Monitor builds the background poller with the configured intervals.
func (d *Deps) Monitor(onStatus func(arenadto.DBStatus), onSessions func([]domain.Session, error)) *monitor.Monitor {
	return monitor.New(d.Client, monitor.Config{
		HealthInterval:   d.Config.HealthInterval,
		SessionsInterval: d.Config.SessionsInterval,
		CallTimeout:      d.Config.HTTPTimeout,
		OnStatus:         onStatus,
		OnSessions:       onSessions,
	})
}

// Shutdown fires the teardown hooks, waits up to BEACON_GRACE for the
// end-of-session notice and releases the store and the HTTP client.
func (d *Deps) Shutdown() {
	d.Teardown.Fire()
	if !d.Client.Drain(d.Config.BeaconGrace) {
		obslog.L().Debug("beacon_drain_timeout")
	}
	_ = d.Client.Close()
	_ = d.Store.Close()
}
