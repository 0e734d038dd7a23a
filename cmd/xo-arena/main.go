package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/park285/xo-arena/internal/arenabuilder"
	"github.com/park285/xo-arena/internal/config"
	"github.com/park285/xo-arena/internal/domain"
	"github.com/park285/xo-arena/internal/obslog"
	"github.com/park285/xo-arena/internal/tui"
	"github.com/park285/xo-arena/pkg/arenadto"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.Init(cfg.LogOptions()); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer obslog.Sync()

	ctx, stop := notifyShutdown(context.Background())
	defer stop()

	deps, err := arenabuilder.New(ctx, cfg, obslog.L())
	if err != nil {
		obslog.L().Error("init_error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "xo-arena: %v\n", err)
		obslog.Sync()
		os.Exit(1)
	}
	defer deps.Shutdown()

	if deps.Arena.Boot(ctx) {
		obslog.L().Info("recovery_pending")
	}

	// The monitor starts after p is assigned, so the callbacks never see nil.
	var p *tea.Program
	mon := deps.Monitor(
		func(s arenadto.DBStatus) { p.Send(tui.StatusMsg(s)) },
		func(sessions []domain.Session, err error) { p.Send(tui.SessionsMsg{Sessions: sessions, Err: err}) },
	)

	model := tui.New(tui.Options{
		Ctx:       ctx,
		Game:      deps.Arena,
		Archive:   deps.Client,
		Refresher: mon,
		Formatter: deps.Formatter,
		Snapshot:  deps.Presenter.Snapshot,
	})
	p = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	go mon.Run(ctx)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		obslog.L().Error("tui_error", zap.Error(err))
	}
	obslog.L().Info("shutdown")
}
