package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/xo-arena/internal/adapter/arenapresenter"
	"github.com/park285/xo-arena/internal/config"
	"github.com/park285/xo-arena/internal/remote"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	client := remote.NewClient(cfg.APIURL,
		remote.WithHeaderProvider(remote.DefaultHeaders()),
		remote.WithTimeout(cfg.HTTPTimeout),
	)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		log.Printf("health error: %v", err)
		os.Exit(1)
	}
	log.Printf("health ok: %s", cfg.APIURL)

	sessions, err := client.ListSessions(ctx)
	if err != nil {
		log.Printf("list sessions error: %v", err)
		os.Exit(1)
	}
	rows := arenapresenter.ToSessionRows(sessions)
	f := arenapresenter.NewFormatter(nil)
	for _, row := range rows {
		state := "ended"
		if row.Active {
			state = "active"
		}
		fmt.Printf("%s  %-6s  %s\n", row.Tag, state, f.RowLine(row))
	}
	log.Print(f.Total(len(rows)))
}
