// SPDX-License-Identifier: MIT

// Command quiver-tui is a terminal sheet of complex numbers that hold each
// other in place. Drag a variable and every arrow built from it follows.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/katalvlaran/mathtoys/config"
	"github.com/katalvlaran/mathtoys/quiver"
	"github.com/katalvlaran/mathtoys/store"
	"github.com/katalvlaran/mathtoys/store/redis"
	"github.com/katalvlaran/mathtoys/store/sqlite"
)

const frameRate = 33 * time.Millisecond

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("config: %v", err)
	}

	var st store.Store
	switch cfg.Store {
	case config.StoreSQLite:
		st, err = sqlite.Open(cfg.DBPath)
	case config.StoreRedis:
		st, err = redis.Dial(context.Background(), cfg.RedisAddr)
	}
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	if st != nil {
		defer st.Close()
	}

	sheet := quiver.New(append(cfg.QuiverOptions(), quiver.WithUnitArrows())...)
	p := tea.NewProgram(newModel(sheet, st), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
